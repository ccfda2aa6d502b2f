package server

import (
	"net/http"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"
	"teamcollab/internal/service"

	"github.com/gin-gonic/gin"
)

const loginFailedMessage = "invalid username or password"

func (api *API) login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody(loginFailedMessage))
		return
	}

	user, err := api.users.Authenticate(ctx.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			failJSON(ctx, err, http.StatusBadRequest)
			return
		}
		ctx.JSON(http.StatusBadRequest, errorBody(loginFailedMessage))
		return
	}
	api.respondWithToken(ctx, user)
}

func (api *API) register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		ctx.JSON(http.StatusBadRequest, errorBody("registration failed: "+err.Error()))
		return
	}

	user, err := api.users.Create(ctx.Request.Context(), &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     models.RoleMember,
	})
	if err != nil {
		if errors.KindOf(err) == errors.KindInternal {
			failJSON(ctx, err, http.StatusBadRequest)
			return
		}
		ctx.JSON(http.StatusBadRequest, errorBody("registration failed: "+err.Error()))
		return
	}
	api.respondWithToken(ctx, user)
}

func (api *API) respondWithToken(ctx *gin.Context, user *models.User) {
	token, err := api.tokens.Issue(user.Username)
	if err != nil {
		failJSON(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, models.AuthResponse{Token: token, User: user})
}

func (api *API) me(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, currentUser(ctx))
}

func (api *API) getUsers(ctx *gin.Context) {
	users, err := api.users.GetAll(ctx.Request.Context())
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (api *API) checkUsername(ctx *gin.Context) {
	username, ok := ctx.GetQuery("username")
	if !ok {
		ctx.Status(http.StatusBadRequest)
		return
	}
	exists, err := api.users.ExistsByUsername(ctx.Request.Context(), username)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, exists)
}

func (api *API) checkEmail(ctx *gin.Context) {
	email, ok := ctx.GetQuery("email")
	if !ok {
		ctx.Status(http.StatusBadRequest)
		return
	}
	exists, err := api.users.ExistsByEmail(ctx.Request.Context(), email)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, exists)
}

func (api *API) getUser(ctx *gin.Context) {
	user, err := api.users.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (api *API) updateUser(ctx *gin.Context) {
	var req models.UpdateUserRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}

	user, err := api.users.Update(ctx.Request.Context(), ctx.Param("id"), service.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  models.Role(req.Role),
	})
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (api *API) deleteUser(ctx *gin.Context) {
	if err := api.users.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.Status(http.StatusOK)
}

package server

import (
	"net/http"

	"teamcollab/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *API) getProjects(ctx *gin.Context) {
	projects, err := api.projects.GetAll(ctx.Request.Context())
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, projects)
}

// getMyProjects lists the projects the caller is a member of.
func (api *API) getMyProjects(ctx *gin.Context) {
	projects, err := api.projects.GetByMember(ctx.Request.Context(), currentUser(ctx).ID)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, projects)
}

func (api *API) searchProjects(ctx *gin.Context) {
	projects, err := api.projects.SearchByName(ctx.Request.Context(), ctx.Query("name"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, projects)
}

func (api *API) createProject(ctx *gin.Context) {
	var req models.ProjectRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}

	project, err := api.projects.Create(ctx.Request.Context(), &models.Project{
		Name:  req.Name,
		Color: req.Color,
	}, currentUser(ctx).ID)
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, project)
}

func (api *API) getProject(ctx *gin.Context) {
	project, err := api.projects.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, project)
}

func (api *API) updateProject(ctx *gin.Context) {
	var req models.ProjectRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}

	project, err := api.projects.Update(ctx.Request.Context(), ctx.Param("id"), &models.Project{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, project)
}

func (api *API) deleteProject(ctx *gin.Context) {
	if err := api.projects.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.Status(http.StatusOK)
}

func (api *API) addProjectMember(ctx *gin.Context) {
	project, err := api.projects.AddMember(ctx.Request.Context(), ctx.Param("id"), ctx.Param("userId"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, project)
}

func (api *API) removeProjectMember(ctx *gin.Context) {
	project, err := api.projects.RemoveMember(ctx.Request.Context(), ctx.Param("id"), ctx.Param("userId"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, project)
}

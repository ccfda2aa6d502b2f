package server

import (
	stderrors "errors"
	"net/http"

	"teamcollab/internal/domain/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
	"github.com/rs/zerolog/log"
)

func errorBody(message string) gin.H {
	return gin.H{"error": true, "message": message}
}

// statusOf maps a domain error kind to a status. notFound is the status the
// endpoint uses for NotFound: 404 for addressed resources, 400 for
// relationship operations whose referenced ids are request input.
func statusOf(err error, notFound int) int {
	switch errors.KindOf(err) {
	case errors.KindNotFound:
		return notFound
	case errors.KindValidation:
		return http.StatusBadRequest
	case errors.KindAuth:
		return http.StatusUnauthorized
	case errors.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail ends the request with an empty body.
func fail(ctx *gin.Context, err error, notFound int) {
	status := statusOf(err, notFound)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
	}
	_ = ctx.Error(err)
	ctx.AbortWithStatus(status)
}

// failJSON ends the request with {error: true, message}.
func failJSON(ctx *gin.Context, err error, notFound int) {
	status := statusOf(err, notFound)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg("request failed")
		message = errors.ErrInternalServer.Error()
	}
	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(status, errorBody(message))
}

// bindJSON decodes and validates the body into req.
func (api *API) bindJSON(ctx *gin.Context, req any) error {
	if err := ctx.ShouldBindJSON(req); err != nil {
		var dateErr *errors.Error
		if stderrors.As(err, &dateErr) {
			return dateErr
		}
		return errors.ErrInvalidInput
	}
	if err := api.validate.Struct(req); err != nil {
		return validationErrorToErrorResponse(err)
	}
	return nil
}

func validationErrorToErrorResponse(err error) error {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			switch verr.Field() {
			case "Username":
				return errors.ErrInvalidUsername
			case "Email":
				return errors.ErrInvalidEmail
			case "Password":
				return errors.ErrInvalidPassword
			case "Name":
				return errors.ErrInvalidName
			case "Role":
				return errors.ErrInvalidRole
			case "Status":
				return errors.ErrInvalidStatus
			case "Title":
				return errors.ErrInvalidTitle
			case "Color":
				return errors.ErrInvalidColor
			case "Content":
				return errors.ErrEmptyComment
			case "FileName", "FileURL", "ContentType", "Size":
				return errors.ErrInvalidAttachment
			}
		}
	}
	return errors.ErrInvalidInput
}

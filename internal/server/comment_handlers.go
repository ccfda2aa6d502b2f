package server

import (
	"net/http"

	"teamcollab/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *API) getComments(ctx *gin.Context) {
	comments, err := api.tasks.ListComments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, comments)
}

func (api *API) createComment(ctx *gin.Context) {
	var req models.CommentRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		failJSON(ctx, err, http.StatusNotFound)
		return
	}
	comment, err := api.tasks.AddComment(ctx.Request.Context(), ctx.Param("id"), currentUser(ctx).ID, req.Content)
	if err != nil {
		failJSON(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, comment)
}

func (api *API) deleteComment(ctx *gin.Context) {
	if err := api.tasks.DeleteComment(ctx.Request.Context(), ctx.Param("id"), currentUser(ctx)); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.Status(http.StatusOK)
}

func (api *API) getAttachments(ctx *gin.Context) {
	attachments, err := api.tasks.ListAttachments(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, attachments)
}

func (api *API) createAttachment(ctx *gin.Context) {
	var req models.AttachmentRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		failJSON(ctx, err, http.StatusNotFound)
		return
	}
	attachment, err := api.tasks.AddAttachment(ctx.Request.Context(), ctx.Param("id"), currentUser(ctx).ID, &models.Attachment{
		FileName:    req.FileName,
		FileURL:     req.FileURL,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		failJSON(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, attachment)
}

func (api *API) deleteAttachment(ctx *gin.Context) {
	if err := api.tasks.DeleteAttachment(ctx.Request.Context(), ctx.Param("id"), currentUser(ctx)); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.Status(http.StatusOK)
}

package server

import (
	"net/http"

	"teamcollab/internal/domain/models"

	"github.com/gin-gonic/gin"
)

func (api *API) getTasks(ctx *gin.Context) {
	tasks, err := api.tasks.GetAll(ctx.Request.Context())
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

// getMyTasks lists the tasks assigned to the caller.
func (api *API) getMyTasks(ctx *gin.Context) {
	tasks, err := api.tasks.GetByAssignee(ctx.Request.Context(), currentUser(ctx).ID)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

func (api *API) getTasksDue(ctx *gin.Context) {
	date, err := models.ParseDate(ctx.Query("dueDate"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	tasks, err := api.tasks.GetDueBy(ctx.Request.Context(), date)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

func (api *API) getProjectTasks(ctx *gin.Context) {
	tasks, err := api.tasks.GetByProject(ctx.Request.Context(), ctx.Param("projectId"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

func (api *API) getProjectTasksByStatus(ctx *gin.Context) {
	status, err := models.ParseStatus(ctx.Param("status"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	tasks, err := api.tasks.GetByProjectAndStatus(ctx.Request.Context(), ctx.Param("projectId"), status)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

func (api *API) getProjectTasksByPriority(ctx *gin.Context) {
	priority, err := models.ParsePriority(ctx.Param("priority"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	tasks, err := api.tasks.GetByProjectAndPriority(ctx.Request.Context(), ctx.Param("projectId"), priority)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, tasks)
}

// taskFields converts the optional enum strings of a payload. Empty strings
// stay empty so the service can apply defaults or keep current values.
func taskFields(title, description, status, priority string, start, due *models.Date) (*models.Task, error) {
	task := &models.Task{
		Title:       title,
		Description: description,
		StartDate:   start.OrNil(),
		DueDate:     due.OrNil(),
	}
	if status != "" {
		s, err := models.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		task.Status = s
	}
	if priority != "" {
		p, err := models.ParsePriority(priority)
		if err != nil {
			return nil, err
		}
		task.Priority = p
	}
	return task, nil
}

func (api *API) createTask(ctx *gin.Context) {
	var req models.CreateTaskRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	task, err := taskFields(req.Title, req.Description, req.Status, req.Priority, req.StartDate, req.DueDate)
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}

	created, err := api.tasks.Create(ctx.Request.Context(), task, currentUser(ctx).ID, req.ProjectID)
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, created)
}

func (api *API) getTask(ctx *gin.Context) {
	task, err := api.tasks.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *API) updateTask(ctx *gin.Context) {
	var req models.UpdateTaskRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	fields, err := taskFields(req.Title, req.Description, req.Status, req.Priority, req.StartDate, req.DueDate)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}

	task, err := api.tasks.Update(ctx.Request.Context(), ctx.Param("id"), fields)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *API) updateTaskStatus(ctx *gin.Context) {
	var req models.StatusRequest
	if err := api.bindJSON(ctx, &req); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}

	task, err := api.tasks.UpdateStatus(ctx.Request.Context(), ctx.Param("id"), status)
	if err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *API) deleteTask(ctx *gin.Context) {
	if err := api.tasks.Delete(ctx.Request.Context(), ctx.Param("id")); err != nil {
		fail(ctx, err, http.StatusNotFound)
		return
	}
	ctx.Status(http.StatusOK)
}

func (api *API) addTaskAssignee(ctx *gin.Context) {
	task, err := api.tasks.AddAssignee(ctx.Request.Context(), ctx.Param("id"), ctx.Param("userId"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

func (api *API) removeTaskAssignee(ctx *gin.Context) {
	task, err := api.tasks.RemoveAssignee(ctx.Request.Context(), ctx.Param("id"), ctx.Param("userId"))
	if err != nil {
		fail(ctx, err, http.StatusBadRequest)
		return
	}
	ctx.JSON(http.StatusOK, task)
}

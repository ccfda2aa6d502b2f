package service

import (
	"context"
	"strings"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type TaskService struct {
	tasks       TaskRepository
	projects    ProjectRepository
	users       UserRepository
	comments    CommentRepository
	attachments AttachmentRepository
}

func NewTaskService(store Store) *TaskService {
	return &TaskService{
		tasks:       store,
		projects:    store,
		users:       store,
		comments:    store,
		attachments: store,
	}
}

func (s *TaskService) GetAll(ctx context.Context) ([]models.Task, error) {
	return s.tasks.ListTasks(ctx)
}

func (s *TaskService) GetByID(ctx context.Context, id string) (*models.Task, error) {
	return s.tasks.GetTaskByID(ctx, id)
}

func (s *TaskService) GetByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.tasks.ListTasksByProject(ctx, projectID)
}

func (s *TaskService) GetByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	return s.tasks.ListTasksByAssignee(ctx, userID)
}

func (s *TaskService) GetByProjectAndStatus(ctx context.Context, projectID string, status models.Status) ([]models.Task, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	return s.tasks.ListTasksByProjectAndStatus(ctx, projectID, status)
}

func (s *TaskService) GetByProjectAndPriority(ctx context.Context, projectID string, priority models.Priority) ([]models.Task, error) {
	if !priority.Valid() {
		return nil, errors.ErrInvalidPriority
	}
	return s.tasks.ListTasksByProjectAndPriority(ctx, projectID, priority)
}

// GetDueBy returns tasks whose due date is on or before date.
func (s *TaskService) GetDueBy(ctx context.Context, date models.Date) ([]models.Task, error) {
	return s.tasks.ListTasksDueBy(ctx, date)
}

// Create binds task to the project and the creator. Unset status and priority
// fall back to TODO and MEDIUM. Assignees in the payload are ignored.
func (s *TaskService) Create(ctx context.Context, task *models.Task, creatorID, projectID string) (*models.Task, error) {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return nil, errors.ErrInvalidTitle
	}
	task.ApplyDefaults()
	if err := validateEnums(task.Status, task.Priority); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.users.GetUserByID(gctx, creatorID)
		return err
	})
	g.Go(func() error {
		_, err := s.projects.GetProjectByID(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	task.ProjectID = projectID
	task.CreatedByID = creatorID
	task.Assignees = nil

	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	log.Info().Str("task_id", task.ID).Str("project_id", projectID).Msg("task created")
	return task, nil
}

// Update overwrites title, description, status, priority and both dates.
// An empty status or priority keeps the current value.
func (s *TaskService) Update(ctx context.Context, id string, fields *models.Task) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(fields.Title)
	if title == "" {
		return nil, errors.ErrInvalidTitle
	}
	task.Title = title
	task.Description = fields.Description
	if fields.Status != "" {
		task.Status = fields.Status
	}
	if fields.Priority != "" {
		task.Priority = fields.Priority
	}
	task.StartDate = fields.StartDate
	task.DueDate = fields.DueDate
	if err := validateEnums(task.Status, task.Priority); err != nil {
		return nil, err
	}

	if err := s.tasks.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// UpdateStatus sets the status only. Any status may follow any other.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}
	if err := s.tasks.UpdateTaskStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.tasks.GetTaskByID(ctx, id)
}

// Delete removes the task with its comments and attachments.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	if err := s.tasks.DeleteTask(ctx, id); err != nil {
		return err
	}
	log.Info().Str("task_id", id).Msg("task deleted")
	return nil
}

func (s *TaskService) AddAssignee(ctx context.Context, taskID, userID string) (*models.Task, error) {
	if err := s.requireTaskAndUser(ctx, taskID, userID); err != nil {
		return nil, err
	}
	if err := s.tasks.AddTaskAssignee(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.tasks.GetTaskByID(ctx, taskID)
}

func (s *TaskService) RemoveAssignee(ctx context.Context, taskID, userID string) (*models.Task, error) {
	if err := s.requireTaskAndUser(ctx, taskID, userID); err != nil {
		return nil, err
	}
	if err := s.tasks.RemoveTaskAssignee(ctx, taskID, userID); err != nil {
		return nil, err
	}
	return s.tasks.GetTaskByID(ctx, taskID)
}

// ListComments returns the comments of a task, oldest first.
func (s *TaskService) ListComments(ctx context.Context, taskID string) ([]models.Comment, error) {
	if _, err := s.tasks.GetTaskByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.comments.ListComments(ctx, taskID)
}

func (s *TaskService) AddComment(ctx context.Context, taskID, authorID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ErrEmptyComment
	}
	if err := s.requireTaskAndUser(ctx, taskID, authorID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		TaskID:   taskID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// DeleteComment removes a comment on behalf of requester, who must be its
// author or an admin.
func (s *TaskService) DeleteComment(ctx context.Context, id string, requester *models.User) error {
	comment, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return err
	}
	if !mayModify(requester, comment.AuthorID) {
		return errors.ErrForbidden
	}
	return s.comments.DeleteComment(ctx, id)
}

func (s *TaskService) ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error) {
	if _, err := s.tasks.GetTaskByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.attachments.ListAttachments(ctx, taskID)
}

func (s *TaskService) AddAttachment(ctx context.Context, taskID, uploaderID string, attachment *models.Attachment) (*models.Attachment, error) {
	attachment.FileName = strings.TrimSpace(attachment.FileName)
	if attachment.FileName == "" || attachment.FileURL == "" || attachment.Size < 0 {
		return nil, errors.ErrInvalidAttachment
	}
	if err := s.requireTaskAndUser(ctx, taskID, uploaderID); err != nil {
		return nil, err
	}

	attachment.TaskID = taskID
	attachment.UploadedByID = uploaderID
	if err := s.attachments.CreateAttachment(ctx, attachment); err != nil {
		return nil, err
	}
	return attachment, nil
}

func (s *TaskService) DeleteAttachment(ctx context.Context, id string, requester *models.User) error {
	attachment, err := s.attachments.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if !mayModify(requester, attachment.UploadedByID) {
		return errors.ErrForbidden
	}
	return s.attachments.DeleteAttachment(ctx, id)
}

// mayModify reports whether requester owns the record or is an admin.
// Records whose owner was deleted are left to admins.
func mayModify(requester *models.User, ownerID string) bool {
	if requester == nil {
		return false
	}
	return requester.Role == models.RoleAdmin || (ownerID != "" && requester.ID == ownerID)
}

func (s *TaskService) requireTaskAndUser(ctx context.Context, taskID, userID string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.tasks.GetTaskByID(gctx, taskID)
		return err
	})
	g.Go(func() error {
		_, err := s.users.GetUserByID(gctx, userID)
		return err
	})
	return g.Wait()
}

func validateEnums(status models.Status, priority models.Priority) error {
	if !status.Valid() {
		return errors.ErrInvalidStatus
	}
	if !priority.Valid() {
		return errors.ErrInvalidPriority
	}
	return nil
}

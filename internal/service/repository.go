package service

import (
	"context"

	"teamcollab/internal/domain/models"
)

// UserRepository lookups return errors.ErrUserNotFound for unknown ids.
// CreateUser and UpdateUser return errors.ErrUsernameTaken or
// errors.ErrEmailTaken when a uniqueness constraint is violated.
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error
	UserExistsByUsername(ctx context.Context, username string) (bool, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
}

// ProjectRepository returns projects with their members loaded. Member
// add/remove are single statements so concurrent calls never overwrite each
// other's membership changes.
type ProjectRepository interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByMember(ctx context.Context, userID string) ([]models.Project, error)
	ListProjectsByCreator(ctx context.Context, userID string) ([]models.Project, error)
	SearchProjectsByName(ctx context.Context, name string) ([]models.Project, error)
	CreateProject(ctx context.Context, project *models.Project) error
	UpdateProject(ctx context.Context, project *models.Project) error
	// DeleteProject removes the project together with its tasks.
	DeleteProject(ctx context.Context, id string) error
	AddProjectMember(ctx context.Context, projectID, userID string) error
	RemoveProjectMember(ctx context.Context, projectID, userID string) error
}

type TaskRepository interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error)
	ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error)
	ListTasksByProjectAndStatus(ctx context.Context, projectID string, status models.Status) ([]models.Task, error)
	ListTasksByProjectAndPriority(ctx context.Context, projectID string, priority models.Priority) ([]models.Task, error)
	ListTasksDueBy(ctx context.Context, date models.Date) ([]models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	UpdateTaskStatus(ctx context.Context, id string, status models.Status) error
	// DeleteTask removes the task together with its comments and attachments.
	DeleteTask(ctx context.Context, id string) error
	AddTaskAssignee(ctx context.Context, taskID, userID string) error
	RemoveTaskAssignee(ctx context.Context, taskID, userID string) error
}

type CommentRepository interface {
	ListComments(ctx context.Context, taskID string) ([]models.Comment, error)
	GetComment(ctx context.Context, id string) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, id string) error
}

type AttachmentRepository interface {
	ListAttachments(ctx context.Context, taskID string) ([]models.Attachment, error)
	GetAttachment(ctx context.Context, id string) (*models.Attachment, error)
	CreateAttachment(ctx context.Context, attachment *models.Attachment) error
	DeleteAttachment(ctx context.Context, id string) error
}

// Store is implemented by both the Postgres and the in-memory repositories.
type Store interface {
	UserRepository
	ProjectRepository
	TaskRepository
	CommentRepository
	AttachmentRepository
}

package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addUser(t *testing.T, s *Storage, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "hash", Role: models.RoleMember}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func addProject(t *testing.T, s *Storage, name string, creator *models.User) *models.Project {
	t.Helper()
	p := &models.Project{Name: name, CreatedByID: creator.ID}
	p.AddMember(*creator)
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func addTask(t *testing.T, s *Storage, title string, projectID string) *models.Task {
	t.Helper()
	task := models.NewTask(title, "")
	task.ProjectID = projectID
	require.NoError(t, s.CreateTask(context.Background(), task))
	return task
}

func TestNewStorage(t *testing.T) {
	storage := NewStorage()

	assert.NotNil(t, storage.users)
	assert.NotNil(t, storage.projects)
	assert.NotNil(t, storage.tasks)
	assert.NotNil(t, storage.comments)
	assert.NotNil(t, storage.attachments)
	assert.Empty(t, storage.users)
}

func TestStorageCreateUser(t *testing.T) {
	tests := []struct {
		name  string
		user  *models.User
		setup func(*Storage)
		want  struct {
			err error
		}
	}{
		{
			name: "successful user creation",
			user: &models.User{Username: "alice", Email: "alice@example.com", Role: models.RoleMember},
			want: struct{ err error }{},
		},
		{
			name: "duplicate username",
			user: &models.User{Username: "alice", Email: "other@example.com", Role: models.RoleMember},
			setup: func(s *Storage) {
				s.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
			},
			want: struct{ err error }{err: errors.ErrUsernameTaken},
		},
		{
			name: "duplicate email",
			user: &models.User{Username: "bob", Email: "alice@example.com", Role: models.RoleMember},
			setup: func(s *Storage) {
				s.users["u1"] = models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
			},
			want: struct{ err error }{err: errors.ErrEmailTaken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewStorage()
			if tt.setup != nil {
				tt.setup(storage)
			}

			err := storage.CreateUser(context.Background(), tt.user)
			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.user.ID)
			assert.False(t, tt.user.CreatedAt.IsZero())
		})
	}
}

func TestStorageUpdateUser(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()
	alice := addUser(t, storage, "alice")
	addUser(t, storage, "bob")

	changed := *alice
	changed.Name = "Alice"
	require.NoError(t, storage.UpdateUser(ctx, &changed))
	got, err := storage.GetUserByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, alice.CreatedAt, got.CreatedAt)

	clash := *alice
	clash.Email = "bob@example.com"
	assert.ErrorIs(t, storage.UpdateUser(ctx, &clash), errors.ErrEmailTaken)

	missing := models.User{ID: "missing", Username: "x", Email: "x@example.com"}
	assert.ErrorIs(t, storage.UpdateUser(ctx, &missing), errors.ErrUserNotFound)
}

func TestStorageListsInInsertionOrder(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()

	var want []string
	for i := 0; i < 5; i++ {
		want = append(want, addUser(t, storage, fmt.Sprintf("user%d", i)).ID)
	}

	users, err := storage.ListUsers(ctx)
	require.NoError(t, err)
	got := make([]string, 0, len(users))
	for _, u := range users {
		got = append(got, u.ID)
	}
	assert.Equal(t, want, got)
}

func TestStorageProjectMembers(t *testing.T) {
	tests := []struct {
		name   string
		action func(ctx context.Context, s *Storage, projectID, userID string) error
		want   struct {
			members int
			err     error
		}
	}{
		{
			name: "add new member",
			action: func(ctx context.Context, s *Storage, projectID, userID string) error {
				return s.AddProjectMember(ctx, projectID, userID)
			},
			want: struct {
				members int
				err     error
			}{members: 2},
		},
		{
			name: "add member twice",
			action: func(ctx context.Context, s *Storage, projectID, userID string) error {
				if err := s.AddProjectMember(ctx, projectID, userID); err != nil {
					return err
				}
				return s.AddProjectMember(ctx, projectID, userID)
			},
			want: struct {
				members int
				err     error
			}{members: 2},
		},
		{
			name: "remove non-member",
			action: func(ctx context.Context, s *Storage, projectID, userID string) error {
				return s.RemoveProjectMember(ctx, projectID, userID)
			},
			want: struct {
				members int
				err     error
			}{members: 1},
		},
		{
			name: "unknown user",
			action: func(ctx context.Context, s *Storage, projectID, _ string) error {
				return s.AddProjectMember(ctx, projectID, "missing")
			},
			want: struct {
				members int
				err     error
			}{members: 1, err: errors.ErrUserNotFound},
		},
		{
			name: "unknown project",
			action: func(ctx context.Context, s *Storage, _, userID string) error {
				return s.AddProjectMember(ctx, "missing", userID)
			},
			want: struct {
				members int
				err     error
			}{members: 1, err: errors.ErrProjectNotFound},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storage := NewStorage()
			ctx := context.Background()
			alice := addUser(t, storage, "alice")
			bob := addUser(t, storage, "bob")
			project := addProject(t, storage, "Launch", alice)
			before := project.UpdatedAt

			err := tt.action(ctx, storage, project.ID, bob.ID)
			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
			} else {
				assert.NoError(t, err)
			}

			got, err := storage.GetProjectByID(ctx, project.ID)
			require.NoError(t, err)
			assert.Len(t, got.Members, tt.want.members)
			assert.Equal(t, before, got.UpdatedAt)
		})
	}
}

func TestStorageProjectQueries(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()
	alice := addUser(t, storage, "alice")
	bob := addUser(t, storage, "bob")
	launch := addProject(t, storage, "Launch", alice)
	addProject(t, storage, "Backlog", bob)
	require.NoError(t, storage.AddProjectMember(ctx, launch.ID, bob.ID))

	byMember, err := storage.ListProjectsByMember(ctx, bob.ID)
	require.NoError(t, err)
	assert.Len(t, byMember, 2)

	byCreator, err := storage.ListProjectsByCreator(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, byCreator, 1)
	assert.Equal(t, "Launch", byCreator[0].Name)

	found, err := storage.SearchProjectsByName(ctx, "LAUN")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, launch.ID, found[0].ID)
	assert.Equal(t, "alice", found[0].Members[0].Username)
}

func TestStorageTaskQueries(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()
	alice := addUser(t, storage, "alice")
	project := addProject(t, storage, "Launch", alice)

	early := addTask(t, storage, "early", project.ID)
	due := models.NewDate(2025, 1, 10)
	early.DueDate = &due
	early.Priority = models.PriorityHigh
	require.NoError(t, storage.UpdateTask(ctx, early))
	late := addTask(t, storage, "late", project.ID)
	lateDue := models.NewDate(2025, 1, 11)
	late.DueDate = &lateDue
	require.NoError(t, storage.UpdateTask(ctx, late))
	addTask(t, storage, "undated", project.ID)

	dueBy, err := storage.ListTasksDueBy(ctx, models.NewDate(2025, 1, 10))
	require.NoError(t, err)
	require.Len(t, dueBy, 1)
	assert.Equal(t, early.ID, dueBy[0].ID)

	high, err := storage.ListTasksByProjectAndPriority(ctx, project.ID, models.PriorityHigh)
	require.NoError(t, err)
	assert.Len(t, high, 1)

	todo, err := storage.ListTasksByProjectAndStatus(ctx, project.ID, models.StatusTodo)
	require.NoError(t, err)
	assert.Len(t, todo, 3)

	require.NoError(t, storage.AddTaskAssignee(ctx, late.ID, alice.ID))
	assigned, err := storage.ListTasksByAssignee(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "alice", assigned[0].Assignees[0].Username)

	assert.ErrorIs(t, storage.CreateTask(ctx, &models.Task{Title: "orphan", ProjectID: "missing"}), errors.ErrProjectNotFound)
}

func TestStorageDeleteCascades(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()
	alice := addUser(t, storage, "alice")
	project := addProject(t, storage, "Launch", alice)
	task := addTask(t, storage, "Write docs", project.ID)

	comment := &models.Comment{TaskID: task.ID, AuthorID: alice.ID, Content: "hi"}
	require.NoError(t, storage.CreateComment(ctx, comment))
	attachment := &models.Attachment{TaskID: task.ID, UploadedByID: alice.ID, FileName: "a.txt", FileURL: "https://example.com/a.txt"}
	require.NoError(t, storage.CreateAttachment(ctx, attachment))
	require.NoError(t, storage.AddTaskAssignee(ctx, task.ID, alice.ID))

	require.NoError(t, storage.DeleteUser(ctx, alice.ID))
	gotTask, err := storage.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, gotTask.Assignees)
	gotComment, err := storage.GetComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Empty(t, gotComment.AuthorID)

	require.NoError(t, storage.DeleteProject(ctx, project.ID))
	_, err = storage.GetTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, errors.ErrTaskNotFound)
	_, err = storage.GetComment(ctx, comment.ID)
	assert.ErrorIs(t, err, errors.ErrCommentNotFound)
	_, err = storage.GetAttachment(ctx, attachment.ID)
	assert.ErrorIs(t, err, errors.ErrAttachmentNotFound)
	assert.Empty(t, storage.order)
}

func TestStorageConcurrentAssignees(t *testing.T) {
	storage := NewStorage()
	ctx := context.Background()
	owner := addUser(t, storage, "owner")
	project := addProject(t, storage, "Launch", owner)
	task := addTask(t, storage, "Parallel", project.ID)

	const n = 20
	ids := make([]string, n)
	for i := range ids {
		ids[i] = addUser(t, storage, fmt.Sprintf("user%d", i)).ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(2)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, storage.AddTaskAssignee(ctx, task.ID, id))
		}(id)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, storage.AddProjectMember(ctx, project.ID, id))
		}(id)
	}
	wg.Wait()

	gotTask, err := storage.GetTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, gotTask.Assignees, n)
	gotProject, err := storage.GetProjectByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Len(t, gotProject.Members, n+1)
}

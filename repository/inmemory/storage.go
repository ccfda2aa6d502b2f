package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/google/uuid"
)

// Storage keeps every aggregate in maps guarded by one lock. Projects and
// tasks store member/assignee ids only; users are joined in on read.
type Storage struct {
	mu          sync.RWMutex
	users       map[string]models.User
	projects    map[string]models.Project
	tasks       map[string]models.Task
	comments    map[string]models.Comment
	attachments map[string]models.Attachment
	order       map[string]uint64
	seq         uint64
	now         func() time.Time
}

func NewStorage() *Storage {
	return &Storage{
		users:       make(map[string]models.User),
		projects:    make(map[string]models.Project),
		tasks:       make(map[string]models.Task),
		comments:    make(map[string]models.Comment),
		attachments: make(map[string]models.Attachment),
		order:       make(map[string]uint64),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) newID() string {
	id := uuid.New().String()
	s.seq++
	s.order[id] = s.seq
	return id
}

func (s *Storage) byInsertion(ids []string) {
	sort.Slice(ids, func(i, j int) bool { return s.order[ids[i]] < s.order[ids[j]] })
}

// users

func (s *Storage) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	s.byInsertion(ids)
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, s.users[id])
	}
	return users, nil
}

func (s *Storage) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, errors.ErrUserNotFound
	}
	return &user, nil
}

func (s *Storage) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(user, ""); err != nil {
		return err
	}
	user.ID = s.newID()
	user.CreatedAt = s.now()
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.users[user.ID]
	if !exists {
		return errors.ErrUserNotFound
	}
	if err := s.checkUnique(user, user.ID); err != nil {
		return err
	}
	user.CreatedAt = existing.CreatedAt
	s.users[user.ID] = *user
	return nil
}

func (s *Storage) checkUnique(user *models.User, selfID string) error {
	for id, other := range s.users {
		if id == selfID {
			continue
		}
		if other.Username == user.Username {
			return errors.ErrUsernameTaken
		}
		if other.Email == user.Email {
			return errors.ErrEmailTaken
		}
	}
	return nil
}

// DeleteUser drops the user's memberships and assignments and clears the
// creator/author references that pointed at it.
func (s *Storage) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return errors.ErrUserNotFound
	}
	delete(s.users, id)
	delete(s.order, id)

	for pid, p := range s.projects {
		p.RemoveMember(id)
		if p.CreatedByID == id {
			p.CreatedByID = ""
		}
		s.projects[pid] = p
	}
	for tid, t := range s.tasks {
		t.RemoveAssignee(id)
		if t.CreatedByID == id {
			t.CreatedByID = ""
		}
		s.tasks[tid] = t
	}
	for cid, c := range s.comments {
		if c.AuthorID == id {
			c.AuthorID = ""
			s.comments[cid] = c
		}
	}
	for aid, a := range s.attachments {
		if a.UploadedByID == id {
			a.UploadedByID = ""
			s.attachments[aid] = a
		}
	}
	return nil
}

func (s *Storage) UserExistsByUsername(_ context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Storage) UserExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// joinUsers replaces id-only user stubs with the stored records.
func (s *Storage) joinUsers(stubs []models.User) []models.User {
	users := make([]models.User, 0, len(stubs))
	for _, stub := range stubs {
		if u, ok := s.users[stub.ID]; ok {
			users = append(users, u)
		}
	}
	return users
}

func stubs(ids []string) []models.User {
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		users = append(users, models.User{ID: id})
	}
	return users
}

// projects

func (s *Storage) projectView(p models.Project) models.Project {
	p.Members = s.joinUsers(p.Members)
	return p
}

func (s *Storage) filterProjects(keep func(models.Project) bool) []models.Project {
	ids := make([]string, 0, len(s.projects))
	for id, p := range s.projects {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	projects := make([]models.Project, 0, len(ids))
	for _, id := range ids {
		projects = append(projects, s.projectView(s.projects[id]))
	}
	return projects
}

func (s *Storage) ListProjects(_ context.Context) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterProjects(func(models.Project) bool { return true }), nil
}

func (s *Storage) GetProjectByID(_ context.Context, id string) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.projects[id]
	if !exists {
		return nil, errors.ErrProjectNotFound
	}
	view := s.projectView(p)
	return &view, nil
}

func (s *Storage) ListProjectsByMember(_ context.Context, userID string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterProjects(func(p models.Project) bool { return p.HasMember(userID) }), nil
}

func (s *Storage) ListProjectsByCreator(_ context.Context, userID string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterProjects(func(p models.Project) bool { return p.CreatedByID == userID }), nil
}

func (s *Storage) SearchProjectsByName(_ context.Context, name string) ([]models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(name)
	return s.filterProjects(func(p models.Project) bool {
		return strings.Contains(strings.ToLower(p.Name), needle)
	}), nil
}

func (s *Storage) CreateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if project.CreatedByID != "" {
		if _, ok := s.users[project.CreatedByID]; !ok {
			return errors.ErrUserNotFound
		}
	}
	for _, m := range project.Members {
		if _, ok := s.users[m.ID]; !ok {
			return errors.ErrUserNotFound
		}
	}

	now := s.now()
	project.ID = s.newID()
	project.CreatedAt = now
	project.UpdatedAt = now

	stored := *project
	stored.Members = stubs(project.MemberIDs())
	s.projects[project.ID] = stored
	return nil
}

func (s *Storage) UpdateProject(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.projects[project.ID]
	if !exists {
		return errors.ErrProjectNotFound
	}
	stored.Name = project.Name
	stored.Color = project.Color
	stored.UpdatedAt = s.now()
	s.projects[project.ID] = stored
	project.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Storage) DeleteProject(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.projects[id]; !exists {
		return errors.ErrProjectNotFound
	}
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			s.deleteTaskLocked(tid)
		}
	}
	delete(s.projects, id)
	delete(s.order, id)
	return nil
}

func (s *Storage) AddProjectMember(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.projects[projectID]
	if !exists {
		return errors.ErrProjectNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return errors.ErrUserNotFound
	}
	if p.AddMember(models.User{ID: userID}) {
		s.projects[projectID] = p
	}
	return nil
}

func (s *Storage) RemoveProjectMember(_ context.Context, projectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, exists := s.projects[projectID]
	if !exists {
		return errors.ErrProjectNotFound
	}
	if p.RemoveMember(userID) {
		s.projects[projectID] = p
	}
	return nil
}

// tasks

func (s *Storage) taskView(t models.Task) models.Task {
	t.Assignees = s.joinUsers(t.Assignees)
	return t
}

func (s *Storage) filterTasks(keep func(models.Task) bool) []models.Task {
	ids := make([]string, 0, len(s.tasks))
	for id, t := range s.tasks {
		if keep(t) {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	tasks := make([]models.Task, 0, len(ids))
	for _, id := range ids {
		tasks = append(tasks, s.taskView(s.tasks[id]))
	}
	return tasks
}

func (s *Storage) ListTasks(_ context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(models.Task) bool { return true }), nil
}

func (s *Storage) GetTaskByID(_ context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tasks[id]
	if !exists {
		return nil, errors.ErrTaskNotFound
	}
	view := s.taskView(t)
	return &view, nil
}

func (s *Storage) ListTasksByProject(_ context.Context, projectID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(t models.Task) bool { return t.ProjectID == projectID }), nil
}

func (s *Storage) ListTasksByAssignee(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(t models.Task) bool { return t.HasAssignee(userID) }), nil
}

func (s *Storage) ListTasksByProjectAndStatus(_ context.Context, projectID string, status models.Status) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(t models.Task) bool {
		return t.ProjectID == projectID && t.Status == status
	}), nil
}

func (s *Storage) ListTasksByProjectAndPriority(_ context.Context, projectID string, priority models.Priority) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(t models.Task) bool {
		return t.ProjectID == projectID && t.Priority == priority
	}), nil
}

func (s *Storage) ListTasksDueBy(_ context.Context, date models.Date) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filterTasks(func(t models.Task) bool { return t.DueBy(date) }), nil
}

func (s *Storage) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[task.ProjectID]; !ok {
		return errors.ErrProjectNotFound
	}

	now := s.now()
	task.ID = s.newID()
	task.CreatedAt = now
	task.UpdatedAt = now

	stored := *task
	stored.Assignees = stubs(task.AssigneeIDs())
	s.tasks[task.ID] = stored
	return nil
}

func (s *Storage) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.tasks[task.ID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	stored.Title = task.Title
	stored.Description = task.Description
	stored.Status = task.Status
	stored.Priority = task.Priority
	stored.StartDate = task.StartDate
	stored.DueDate = task.DueDate
	stored.UpdatedAt = s.now()
	s.tasks[task.ID] = stored
	task.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *Storage) UpdateTaskStatus(_ context.Context, id string, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, exists := s.tasks[id]
	if !exists {
		return errors.ErrTaskNotFound
	}
	stored.Status = status
	stored.UpdatedAt = s.now()
	s.tasks[id] = stored
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[id]; !exists {
		return errors.ErrTaskNotFound
	}
	s.deleteTaskLocked(id)
	return nil
}

func (s *Storage) deleteTaskLocked(id string) {
	for cid, c := range s.comments {
		if c.TaskID == id {
			delete(s.comments, cid)
			delete(s.order, cid)
		}
	}
	for aid, a := range s.attachments {
		if a.TaskID == id {
			delete(s.attachments, aid)
			delete(s.order, aid)
		}
	}
	delete(s.tasks, id)
	delete(s.order, id)
}

func (s *Storage) AddTaskAssignee(_ context.Context, taskID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	if _, ok := s.users[userID]; !ok {
		return errors.ErrUserNotFound
	}
	if t.AddAssignee(models.User{ID: userID}) {
		s.tasks[taskID] = t
	}
	return nil
}

func (s *Storage) RemoveTaskAssignee(_ context.Context, taskID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, exists := s.tasks[taskID]
	if !exists {
		return errors.ErrTaskNotFound
	}
	if t.RemoveAssignee(userID) {
		s.tasks[taskID] = t
	}
	return nil
}

// comments and attachments

func (s *Storage) ListComments(_ context.Context, taskID string) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for id, c := range s.comments {
		if c.TaskID == taskID {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	comments := make([]models.Comment, 0, len(ids))
	for _, id := range ids {
		comments = append(comments, s.comments[id])
	}
	return comments, nil
}

func (s *Storage) GetComment(_ context.Context, id string) (*models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, exists := s.comments[id]
	if !exists {
		return nil, errors.ErrCommentNotFound
	}
	return &c, nil
}

func (s *Storage) CreateComment(_ context.Context, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[comment.TaskID]; !ok {
		return errors.ErrTaskNotFound
	}
	comment.ID = s.newID()
	comment.CreatedAt = s.now()
	s.comments[comment.ID] = *comment
	return nil
}

func (s *Storage) DeleteComment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.comments[id]; !exists {
		return errors.ErrCommentNotFound
	}
	delete(s.comments, id)
	delete(s.order, id)
	return nil
}

func (s *Storage) ListAttachments(_ context.Context, taskID string) ([]models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for id, a := range s.attachments {
		if a.TaskID == taskID {
			ids = append(ids, id)
		}
	}
	s.byInsertion(ids)
	attachments := make([]models.Attachment, 0, len(ids))
	for _, id := range ids {
		attachments = append(attachments, s.attachments[id])
	}
	return attachments, nil
}

func (s *Storage) GetAttachment(_ context.Context, id string) (*models.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, exists := s.attachments[id]
	if !exists {
		return nil, errors.ErrAttachmentNotFound
	}
	return &a, nil
}

func (s *Storage) CreateAttachment(_ context.Context, attachment *models.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[attachment.TaskID]; !ok {
		return errors.ErrTaskNotFound
	}
	attachment.ID = s.newID()
	attachment.CreatedAt = s.now()
	s.attachments[attachment.ID] = *attachment
	return nil
}

func (s *Storage) DeleteAttachment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.attachments[id]; !exists {
		return errors.ErrAttachmentNotFound
	}
	delete(s.attachments, id)
	delete(s.order, id)
	return nil
}

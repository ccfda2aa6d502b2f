package db

import (
	"context"

	"teamcollab/internal/domain/errors"
	"teamcollab/internal/domain/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog/log"
)

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.start_date, t.due_date, t.project_id, t.created_by, t.created_at, t.updated_at`

const (
	listTasksSQL                  = `SELECT ` + taskColumns + ` FROM tasks t ORDER BY t.created_at, t.id`
	getTaskByIDSQL                = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = $1`
	listTasksByProjectSQL         = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = $1 ORDER BY t.created_at, t.id`
	listTasksByAssigneeSQL        = `SELECT ` + taskColumns + ` FROM tasks t JOIN task_assignees a ON a.task_id = t.id WHERE a.user_id = $1 ORDER BY t.created_at, t.id`
	listTasksByProjectStatusSQL   = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = $1 AND t.status = $2 ORDER BY t.created_at, t.id`
	listTasksByProjectPrioritySQL = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.project_id = $1 AND t.priority = $2 ORDER BY t.created_at, t.id`
	listTasksDueBySQL             = `SELECT ` + taskColumns + ` FROM tasks t WHERE t.due_date IS NOT NULL AND t.due_date <= $1 ORDER BY t.created_at, t.id`
	createTaskSQL                 = `INSERT INTO tasks (id, title, description, status, priority, start_date, due_date, project_id, created_by) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING created_at, updated_at`
	updateTaskSQL                 = `UPDATE tasks SET title = $1, description = $2, status = $3, priority = $4, start_date = $5, due_date = $6, updated_at = clock_timestamp() WHERE id = $7 RETURNING updated_at`
	updateTaskStatusSQL           = `UPDATE tasks SET status = $1, updated_at = clock_timestamp() WHERE id = $2`
	deleteTaskSQL                 = `DELETE FROM tasks WHERE id = $1`
	addTaskAssigneeSQL            = `INSERT INTO task_assignees (task_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	removeTaskAssigneeSQL         = `DELETE FROM task_assignees WHERE task_id = $1 AND user_id = $2`
	taskExistsSQL                 = `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`
	taskAssigneesSQL              = `SELECT a.task_id, ` + userColumns + ` FROM task_assignees a JOIN users u ON u.id = a.user_id WHERE a.task_id = ANY($1::uuid[]) ORDER BY a.assigned_at, u.id`
)

func scanTask(row pgx.Row) (*models.Task, error) {
	t := &models.Task{}
	var (
		status, priority string
		start, due       pgtype.Date
		createdBy        *string
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority,
		&start, &due, &t.ProjectID, &createdBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	t.Status = models.Status(status)
	t.Priority = models.Priority(priority)
	t.StartDate = dateOf(start)
	t.DueDate = dateOf(due)
	t.CreatedByID = stringOrEmpty(createdBy)
	t.Assignees = []models.User{}
	return t, nil
}

func (s *Storage) queryTasks(ctx context.Context, query string, args ...any) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		log.Error().Err(err).Msg("failed to query tasks")
		return nil, err
	}
	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			log.Error().Err(err).Msg("failed to read tasks")
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		if code, _ := pgCode(err); code == codeInvalidTextRepr {
			return []models.Task{}, nil
		}
		return nil, err
	}

	if err := s.attachAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Storage) attachAssignees(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	ids := make([]string, len(tasks))
	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
		index[t.ID] = i
	}

	rows, err := s.pool.Query(ctx, taskAssigneesSQL, ids)
	if err != nil {
		log.Error().Err(err).Msg("failed to load task assignees")
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var taskID, role string
		u := models.User{}
		if err := rows.Scan(&taskID, &u.ID, &u.Username, &u.Email, &u.Password, &u.Name, &role, &u.CreatedAt); err != nil {
			return err
		}
		u.Role = models.Role(role)
		tasks[index[taskID]].AddAssignee(u)
	}
	return rows.Err()
}

func (s *Storage) ListTasks(ctx context.Context) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksSQL)
}

func (s *Storage) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	t, err := scanTask(s.pool.QueryRow(ctx, getTaskByIDSQL, id))
	if err != nil {
		return nil, notFound(err, errors.ErrTaskNotFound)
	}
	tasks := []models.Task{*t}
	if err := s.attachAssignees(ctx, tasks); err != nil {
		return nil, err
	}
	return &tasks[0], nil
}

func (s *Storage) ListTasksByProject(ctx context.Context, projectID string) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksByProjectSQL, projectID)
}

func (s *Storage) ListTasksByAssignee(ctx context.Context, userID string) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksByAssigneeSQL, userID)
}

func (s *Storage) ListTasksByProjectAndStatus(ctx context.Context, projectID string, status models.Status) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksByProjectStatusSQL, projectID, string(status))
}

func (s *Storage) ListTasksByProjectAndPriority(ctx context.Context, projectID string, priority models.Priority) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksByProjectPrioritySQL, projectID, string(priority))
}

// ListTasksDueBy returns tasks whose due date is on or before date.
func (s *Storage) ListTasksDueBy(ctx context.Context, date models.Date) ([]models.Task, error) {
	return s.queryTasks(ctx, listTasksDueBySQL, date.Time)
}

func (s *Storage) CreateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	id := uuid.New().String()
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, createTaskSQL,
			id, task.Title, task.Description, string(task.Status), string(task.Priority),
			dateArg(task.StartDate), dateArg(task.DueDate), task.ProjectID, nullableID(task.CreatedByID),
		).Scan(&task.CreatedAt, &task.UpdatedAt); err != nil {
			return err
		}
		for _, a := range task.Assignees {
			if _, err := tx.Exec(ctx, addTaskAssigneeSQL, id, a.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("project_id", task.ProjectID).Msg("failed to create task")
		return foreignKey(err)
	}
	task.ID = id
	log.Debug().Str("task_id", id).Msg("task stored")
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, task *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	err := s.pool.QueryRow(ctx, updateTaskSQL,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		dateArg(task.StartDate), dateArg(task.DueDate), task.ID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if mapped := notFound(err, errors.ErrTaskNotFound); mapped != err {
			return mapped
		}
		log.Error().Err(err).Str("task_id", task.ID).Msg("failed to update task")
		return err
	}
	return nil
}

func (s *Storage) UpdateTaskStatus(ctx context.Context, id string, status models.Status) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, updateTaskStatusSQL, string(status), id)
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to update task status")
		return notFound(err, errors.ErrTaskNotFound)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	ct, err := s.pool.Exec(ctx, deleteTaskSQL, id)
	if err != nil {
		log.Error().Err(err).Str("task_id", id).Msg("failed to delete task")
		return notFound(err, errors.ErrTaskNotFound)
	}
	if ct.RowsAffected() == 0 {
		return errors.ErrTaskNotFound
	}
	return nil
}

func (s *Storage) AddTaskAssignee(ctx context.Context, taskID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := s.pool.Exec(ctx, addTaskAssigneeSQL, taskID, userID); err != nil {
		log.Error().Err(err).Str("task_id", taskID).Str("user_id", userID).Msg("failed to add task assignee")
		return foreignKey(err)
	}
	return nil
}

func (s *Storage) RemoveTaskAssignee(ctx context.Context, taskID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var found bool
	if err := s.pool.QueryRow(ctx, taskExistsSQL, taskID).Scan(&found); err != nil {
		return notFound(err, errors.ErrTaskNotFound)
	}
	if !found {
		return errors.ErrTaskNotFound
	}
	if _, err := s.pool.Exec(ctx, removeTaskAssigneeSQL, taskID, userID); err != nil {
		log.Error().Err(err).Str("task_id", taskID).Str("user_id", userID).Msg("failed to remove task assignee")
		return notFound(err, errors.ErrUserNotFound)
	}
	return nil
}

package models

import (
	"strings"
	"time"

	"teamcollab/internal/domain/errors"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusHold       Status = "HOLD"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted, StatusHold:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.ErrInvalidStatus
	}
	return st, nil
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", errors.ErrInvalidPriority
	}
	return p, nil
}

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	StartDate   *Date     `json:"startDate"`
	DueDate     *Date     `json:"dueDate"`
	ProjectID   string    `json:"projectId"`
	CreatedByID string    `json:"createdById,omitempty"`
	Assignees   []User    `json:"assignees"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask returns a task with the default status and priority.
func NewTask(title, description string) *Task {
	return &Task{
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		Priority:    PriorityMedium,
	}
}

// ApplyDefaults fills an unset status or priority.
func (t *Task) ApplyDefaults() {
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
}

// DueBy reports whether the task has a due date on or before d.
func (t Task) DueBy(d Date) bool {
	return t.DueDate != nil && t.DueDate.OnOrBefore(d)
}

func (t Task) HasAssignee(userID string) bool {
	return indexOfUser(t.Assignees, userID) >= 0
}

func (t *Task) AddAssignee(u User) bool {
	if t.HasAssignee(u.ID) {
		return false
	}
	t.Assignees = append(t.Assignees, u)
	return true
}

func (t *Task) RemoveAssignee(userID string) bool {
	var removed bool
	t.Assignees, removed = removeUser(t.Assignees, userID)
	return removed
}

func (t Task) AssigneeIDs() []string {
	return userIDs(t.Assignees)
}

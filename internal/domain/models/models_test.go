package models

import (
	"encoding/json"
	"testing"
	"time"

	"teamcollab/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want struct {
			date  Date
			error bool
		}
	}{
		{"2025-03-10", struct {
			date  Date
			error bool
		}{NewDate(2025, time.March, 10), false}},
		{"2024-02-29", struct {
			date  Date
			error bool
		}{NewDate(2024, time.February, 29), false}},
		{"2025-02-29", struct {
			date  Date
			error bool
		}{error: true}},
		{"10-03-2025", struct {
			date  Date
			error bool
		}{error: true}},
		{"", struct {
			date  Date
			error bool
		}{error: true}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.want.error {
				assert.ErrorIs(t, err, errors.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.date.Equal(got.Time))
			assert.Equal(t, tt.in, got.String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Due   *Date `json:"dueDate"`
		Start *Date `json:"startDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"dueDate":"2025-01-10","startDate":null}`), &payload))
	require.NotNil(t, payload.Due)
	assert.Nil(t, payload.Start)
	assert.Equal(t, "2025-01-10", payload.Due.String())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dueDate":"2025-01-10","startDate":null}`, string(out))

	err = json.Unmarshal([]byte(`{"dueDate":"2025-01-10T10:00:00Z"}`), &payload)
	assert.ErrorIs(t, err, errors.ErrInvalidDate)
	err = json.Unmarshal([]byte(`{"dueDate":20250110}`), &payload)
	assert.Error(t, err)
}

func TestDateEmptyStringMeansNoDate(t *testing.T) {
	var payload struct {
		Start *Date `json:"startDate"`
		Due   *Date `json:"dueDate"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"","dueDate":"2025-01-10"}`), &payload))
	assert.Nil(t, payload.Start.OrNil())
	require.NotNil(t, payload.Due.OrNil())
	assert.Equal(t, "2025-01-10", payload.Due.OrNil().String())

	var missing *Date
	assert.Nil(t, missing.OrNil())
}

func TestDateOnOrBefore(t *testing.T) {
	day := NewDate(2025, time.January, 10)
	assert.True(t, NewDate(2025, time.January, 9).OnOrBefore(day))
	assert.True(t, day.OnOrBefore(day))
	assert.False(t, NewDate(2025, time.January, 11).OnOrBefore(day))
	assert.Equal(t, day, DateOf(time.Date(2025, time.January, 10, 23, 59, 0, 0, time.UTC)))
}

func TestParseEnums(t *testing.T) {
	tests := []struct {
		name  string
		parse func(string) (string, error)
		in    string
		want  string
		err   error
	}{
		{"status upper", wrap(ParseStatus), "IN_PROGRESS", "IN_PROGRESS", nil},
		{"status lower", wrap(ParseStatus), " hold ", "HOLD", nil},
		{"status unknown", wrap(ParseStatus), "DONE", "", errors.ErrInvalidStatus},
		{"priority mixed case", wrap(ParsePriority), "High", "HIGH", nil},
		{"priority empty", wrap(ParsePriority), "", "", errors.ErrInvalidPriority},
		{"role", wrap(ParseRole), "admin", "ADMIN", nil},
		{"role unknown", wrap(ParseRole), "OWNER", "", errors.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.parse(tt.in)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func wrap[T ~string](parse func(string) (T, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		v, err := parse(s)
		return string(v), err
	}
}

func TestNewTaskDefaults(t *testing.T) {
	task := NewTask("Write docs", "")
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, PriorityMedium, task.Priority)
	assert.Empty(t, task.Assignees)

	blank := &Task{Status: StatusHold}
	blank.ApplyDefaults()
	assert.Equal(t, StatusHold, blank.Status)
	assert.Equal(t, PriorityMedium, blank.Priority)
}

func TestTaskDueBy(t *testing.T) {
	due := NewDate(2025, time.January, 10)
	task := NewTask("t", "")
	assert.False(t, task.DueBy(due))

	task.DueDate = &due
	assert.True(t, task.DueBy(due))
	assert.False(t, task.DueBy(NewDate(2025, time.January, 9)))
}

func TestMembershipSets(t *testing.T) {
	alice := User{ID: "u1", Username: "alice"}
	bob := User{ID: "u2", Username: "bob"}

	p := &Project{}
	assert.True(t, p.AddMember(alice))
	assert.False(t, p.AddMember(alice))
	assert.True(t, p.AddMember(bob))
	assert.Equal(t, []string{"u1", "u2"}, p.MemberIDs())

	assert.False(t, p.RemoveMember("u3"))
	assert.True(t, p.RemoveMember("u1"))
	assert.Equal(t, []string{"u2"}, p.MemberIDs())
	assert.False(t, p.HasMember("u1"))

	task := NewTask("t", "")
	assert.True(t, task.AddAssignee(bob))
	assert.False(t, task.AddAssignee(bob))
	assert.True(t, task.RemoveAssignee("u2"))
	assert.False(t, task.RemoveAssignee("u2"))
	assert.Empty(t, task.AssigneeIDs())
}

func TestUserPasswordIsNotSerialized(t *testing.T) {
	out, err := json.Marshal(User{ID: "u1", Username: "alice", Password: "$2a$10$hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
	assert.NotContains(t, string(out), "password")
}

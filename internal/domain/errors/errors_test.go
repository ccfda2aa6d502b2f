package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", ErrTaskNotFound, KindNotFound},
		{"wrapped validation", fmt.Errorf("create: %w", ErrInvalidTitle), KindValidation},
		{"double wrapped auth", fmt.Errorf("a: %w", fmt.Errorf("b: %w", ErrInvalidToken)), KindAuth},
		{"plain error", fmt.Errorf("connection reset"), KindInternal},
		{"nil", nil, KindInternal},
		{"explicit internal", ErrDatabaseConnection, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", ErrUserNotFound)
	assert.True(t, Is(wrapped, ErrUserNotFound))
	assert.False(t, Is(wrapped, ErrProjectNotFound))
	assert.Equal(t, "user not found", ErrUserNotFound.Error())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "not_found", KindNotFound.String())
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "auth", KindAuth.String())
	assert.Equal(t, "forbidden", KindForbidden.String())
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("delete: %w", ErrForbidden)))
	assert.Equal(t, "internal", Kind(42).String())
}

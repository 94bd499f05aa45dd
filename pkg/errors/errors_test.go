package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_MatchesCategory(t *testing.T) {
	errThing := Kind(ErrNotFound, "投诉不存在")

	assert.True(t, errors.Is(errThing, ErrNotFound))
	assert.False(t, errors.Is(errThing, ErrAccessDenied))
	assert.Equal(t, "投诉不存在", errThing.Error())

	wrapped := fmt.Errorf("get: %w", errThing)
	assert.True(t, errors.Is(wrapped, errThing))
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestValidationError(t *testing.T) {
	ve := NewValidationError("title", "长度需在 5-255 之间")
	ve.Add("category", "无效的分类")

	assert.True(t, ve.HasErrors())
	assert.True(t, errors.Is(ve, ErrValidation))
	assert.Contains(t, ve.Error(), "title")
	assert.Contains(t, ve.Error(), "category")

	var target *ValidationError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", ve), &target))
	assert.Len(t, target.Fields, 2)

	var empty *ValidationError
	assert.False(t, empty.HasErrors())
}

func TestStorageError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	se := NewStorageError("complaint.create", cause)

	assert.True(t, errors.Is(se, cause))
	assert.Contains(t, se.Error(), "complaint.create")
}

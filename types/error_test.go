package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Format(t *testing.T) {
	t.Parallel()
	err := NewError(ErrWorkerTimeout, "worker hr-1 exceeded deadline")
	assert.Equal(t, "[WORKER_TIMEOUT] worker hr-1 exceeded deadline", err.Error())

	cause := errors.New("context deadline exceeded")
	withCause := NewError(ErrWorkerTimeout, "worker hr-1 exceeded deadline").WithCause(cause)
	assert.Contains(t, withCause.Error(), "context deadline exceeded")
	assert.ErrorIs(t, withCause, cause)
}

func TestError_FatalClassification(t *testing.T) {
	t.Parallel()
	assert.True(t, IsFatal(NewError(ErrEmptyInput, "no responses")))
	assert.True(t, IsFatal(NewError(ErrCyclicDependency, "a -> b -> a")))
	assert.False(t, IsFatal(NewError(ErrWorkerFailed, "boom")))
	assert.False(t, IsFatal(errors.New("plain error")))
}

func TestCodeOf_Wrapped(t *testing.T) {
	t.Parallel()
	inner := NewError(ErrBudgetExhausted, "iteration cap reached")
	wrapped := fmt.Errorf("session ended: %w", inner)
	require.Equal(t, ErrBudgetExhausted, CodeOf(wrapped))
	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("untyped")))
}

func TestRoleHelpers(t *testing.T) {
	t.Parallel()
	assert.True(t, RoleHRSpecialist.Valid())
	assert.True(t, RoleHRSpecialist.IsSpecialist())
	assert.False(t, RoleCoordinator.IsSpecialist())
	assert.False(t, WorkerRole("dba").Valid())

	assert.Equal(t, RoleFinanceSpecialist, RoleForDomain("finance"))
	assert.Equal(t, RoleGeneralAssistant, RoleForDomain("legal"))
	assert.Len(t, SpecialistRoles(), 4)
}

package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	base := NotFound("course not found")
	wrapped := fmt.Errorf("load course: %w", base)

	require.Equal(t, KindNotFound, KindOf(wrapped))
	require.ErrorIs(t, wrapped, base)
	require.True(t, Is(wrapped, KindNotFound))
}

func TestKindOfDefaultsToInternal(t *testing.T) {
	require.Equal(t, KindInternal, KindOf(errors.New("boom")))
	require.False(t, Is(nil, KindInternal))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal(cause)

	require.Equal(t, "internal server error", err.Error())
	require.ErrorIs(t, err, cause)
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("invalid payload", FieldError{Field: "title", Message: "title is required"})

	require.Equal(t, KindValidation, err.Kind)
	require.Len(t, err.Fields, 1)
	require.Equal(t, "title", err.Fields[0].Field)
}

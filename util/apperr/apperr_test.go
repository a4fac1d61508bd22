package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, Kind(""), KindOf(nil))
	require.Equal(t, NotFound, KindOf(New(NotFound, "gone")))
	require.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	inner := New(Conflict, "duplicate")
	outer := fmt.Errorf("saving review: %w", inner)

	require.Equal(t, Conflict, KindOf(outer))
	require.True(t, Is(outer, Conflict))
	require.False(t, Is(outer, NotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Wrap(Conflict, "persona already reviewed this libro", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "persona already reviewed this libro")
	require.Contains(t, err.Error(), "duplicate key")
}

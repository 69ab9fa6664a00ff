package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	require.Equal(t, KindNotFound, KindOf(NotFound("REPORT_NOT_FOUND", "report not found")))
	require.Equal(t, KindState, KindOf(fmt.Errorf("wrapped: %w", State("ALREADY_RESOLVED", "done"))))
	require.Equal(t, KindInternal, KindOf(stderrors.New("plain")))
}

func TestExternalUnwraps(t *testing.T) {
	cause := stderrors.New("connection reset")
	err := External("DATABASE_ERROR", "failed to load report", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "connection reset")
	require.True(t, IsKind(err, KindExternal))
}

func TestSentinelMatching(t *testing.T) {
	err := &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: "user not found"}
	require.ErrorIs(t, err, ErrNotFound)
	require.NotErrorIs(t, err, ErrForbidden)
}

package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rpggio/edgeline/internal/domain/report"
	"github.com/rpggio/edgeline/internal/domain/segment"
	"github.com/rpggio/edgeline/internal/domain/session"
	"github.com/stretchr/testify/require"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("%w: end 5 not in [1, 2]", segment.ErrOutOfBounds), "SEGMENT_OUT_OF_BOUNDS"},
		{fmt.Errorf("%w: %w", report.ErrReportFailed, errors.New("connection refused")), "REPORT_FAILED"},
		{session.ErrWorkspaceNotFound, "WORKSPACE_NOT_FOUND"},
		{fmt.Errorf("loading edge session: %w", session.ErrSessionNotFound), "EDGE_SESSION_NOT_FOUND"},
		{report.ErrNothingToReport, "NOTHING_TO_REPORT"},
	}
	for _, tc := range cases {
		apiErr := MapError(tc.err)
		require.NotNil(t, apiErr, tc.code)
		require.Equal(t, tc.code, apiErr.Code)
		require.Equal(t, tc.err.Error(), apiErr.Message)
	}

	require.Nil(t, MapError(nil))
	require.Nil(t, MapError(errors.New("boom")))

	passthrough := &APIError{Code: "INVALID_PARAMS", Message: "bad"}
	require.Same(t, passthrough, MapError(fmt.Errorf("wrapped: %w", passthrough)))
}

func TestHandler_UnknownToolAndInvalidParams(t *testing.T) {
	h := NewHandler(Services{})
	ctx := context.Background()

	_, err := h.Handle(ctx, "team1", "does_not_exist", nil)
	require.Equal(t, "UNKNOWN_TOOL", MapError(err).Code)

	_, err = h.Handle(ctx, "team1", "get_workspace", []byte(`{"workspace_id": 5}`))
	require.Equal(t, "INVALID_PARAMS", MapError(err).Code)

	_, err = h.Handle(ctx, "team1", "update_segment", []byte(`{"workspace_id": "w1", "kind": "drill", "segment_id": 0}`))
	require.Equal(t, "INVALID_PARAMS", MapError(err).Code)

	res, err := h.Handle(ctx, "team1", "ping", nil)
	require.NoError(t, err)
	require.Equal(t, PingResponse{Message: "pong", TeamID: "team1"}, res)
}

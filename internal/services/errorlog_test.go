package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/data/repos"
	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
)

func TestErrorLogRecordsAndResolves(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewErrorLogService(f.db, testutil.Logger(t), f.repos.ErrorLogs)
	student := uuid.New()

	svc.Log(ctx, ErrorReport{StudentID: student, Message: "   "})
	svc.Log(ctx, ErrorReport{StudentID: uuid.Nil, Message: "no owner"})
	svc.Log(ctx, ErrorReport{
		StudentID: student,
		Message:   " ReferenceError: x is not defined ",
		Stack:     "at line 3",
		Context:   map[string]any{"tutorial": "TUT001"},
	})

	rows, err := svc.List(ctx, repos.ErrorLogFilter{StudentID: student})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ReferenceError: x is not defined", rows[0].ErrorMessage)
	require.NotNil(t, rows[0].ErrorStack)
	assert.Equal(t, "at line 3", *rows[0].ErrorStack)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(rows[0].Context, &extra))
	assert.Equal(t, "TUT001", extra["tutorial"])

	require.NoError(t, svc.Resolve(ctx, rows[0].ID))
	open, err := svc.List(ctx, repos.ErrorLogFilter{StudentID: student})
	require.NoError(t, err)
	assert.Empty(t, open)

	all, err := svc.List(ctx, repos.ErrorLogFilter{StudentID: student, IncludeResolved: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.True(t, all[0].Resolved)

	assert.ErrorIs(t, svc.Resolve(ctx, uuid.New()), apierr.ErrNotFound)
}

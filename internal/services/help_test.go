package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/data/repos/testutil"
	types "github.com/yungbote/smartassist-backend/internal/domain"
	"github.com/yungbote/smartassist-backend/internal/platform/apierr"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

func TestHelpRequestLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewHelpService(f.db, testutil.Logger(t), f.repos.HelpRequests, f.notify, nil)

	student, teacher := uuid.New(), uuid.New()

	_, err := svc.Create(ctx, student, "   ")
	assert.ErrorIs(t, err, apierr.ErrValidation)

	req, err := svc.Create(ctx, student, "  my loop never ends\n\tfor (;;) {}  ")
	require.NoError(t, err)
	assert.Equal(t, "  my loop never ends\n\tfor (;;) {}  ", req.Message)
	assert.Equal(t, types.HelpStatusPending, req.Status)
	assert.True(t, req.Unanswered())

	_, err = svc.Respond(ctx, RespondInput{TeacherID: teacher, RequestID: req.ID, Response: " \n\t "})
	assert.ErrorIs(t, err, apierr.ErrValidation)

	got, err := svc.Respond(ctx, RespondInput{TeacherID: teacher, RequestID: req.ID, Response: "check the condition"})
	require.NoError(t, err)
	assert.Equal(t, types.HelpStatusResponded, got.Status)
	require.NotNil(t, got.TeacherID)
	assert.Equal(t, teacher, *got.TeacherID)
	require.NotNil(t, got.RespondedAt)

	mine, err := svc.ListForStudent(ctx, student)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "check the condition", *mine[0].Response)
	assert.Equal(t, "  my loop never ends\n\tfor (;;) {}  ", mine[0].Message)
	assert.Equal(t, 2, f.pub.count(realtime.TableHelpRequests))
}

func TestRespondTwiceLastWriteWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewHelpService(f.db, testutil.Logger(t), f.repos.HelpRequests, f.notify, nil)

	req, err := svc.Create(ctx, uuid.New(), "help")
	require.NoError(t, err)
	first, second := uuid.New(), uuid.New()

	_, err = svc.Respond(ctx, RespondInput{TeacherID: first, RequestID: req.ID, Response: "one"})
	require.NoError(t, err)
	got, err := svc.Respond(ctx, RespondInput{TeacherID: second, RequestID: req.ID, Response: "two"})
	require.NoError(t, err)
	assert.Equal(t, "two", *got.Response)
	assert.Equal(t, second, *got.TeacherID)
}

func TestRespondWithStalePreconditionConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewHelpService(f.db, testutil.Logger(t), f.repos.HelpRequests, f.notify, nil).(*helpService)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	req, err := svc.Create(ctx, uuid.New(), "help")
	require.NoError(t, err)
	seen := req.UpdatedAt

	_, err = svc.Respond(ctx, RespondInput{TeacherID: uuid.New(), RequestID: req.ID, Response: "first", ExpectedUpdatedAt: &seen})
	require.NoError(t, err)

	_, err = svc.Respond(ctx, RespondInput{TeacherID: uuid.New(), RequestID: req.ID, Response: "second", ExpectedUpdatedAt: &seen})
	assert.ErrorIs(t, err, apierr.ErrConflict)

	rows, err := svc.ListForStudent(ctx, req.StudentID)
	require.NoError(t, err)
	assert.Equal(t, "first", *rows[0].Response)
}

func TestRespondUnknownRequestIsNotFound(t *testing.T) {
	f := newFixture(t)
	svc := NewHelpService(f.db, testutil.Logger(t), f.repos.HelpRequests, f.notify, nil)
	_, err := svc.Respond(context.Background(), RespondInput{TeacherID: uuid.New(), RequestID: uuid.New(), Response: "x"})
	assert.ErrorIs(t, err, apierr.ErrNotFound)
}

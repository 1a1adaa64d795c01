package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/platform/logger"
)

func recvEvent(t *testing.T, ch <-chan ChangeEvent, timeout time.Duration) ChangeEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for change event")
	}
	return ChangeEvent{}
}

func assertQuiet(t *testing.T, ch <-chan ChangeEvent) {
	t.Helper()
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSelfScopeOnlySeesOwnRows(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	me, other := uuid.New(), uuid.New()

	self := d.Subscribe(me, SelfScope(me))
	defer self.Close()

	d.Publish(context.Background(), ChangeEvent{Table: TableProgress, StudentID: other})
	d.Publish(context.Background(), ChangeEvent{Table: TableCodeLogs, StudentID: me})
	assertQuiet(t, self.Events())

	d.Publish(context.Background(), ChangeEvent{Table: TableHelpRequests, StudentID: me})
	ev := recvEvent(t, self.Events(), time.Second)
	assert.Equal(t, TableHelpRequests, ev.Table)
}

func TestTeacherScopeSeesAllObservedTables(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	teacher := d.Subscribe(uuid.New(), TeacherScope())
	defer teacher.Close()

	for _, tbl := range []Table{TableHelpRequests, TableCodeLogs, TableProgress, TableSessions} {
		d.Publish(context.Background(), ChangeEvent{Table: tbl, StudentID: uuid.New()})
		assert.Equal(t, tbl, recvEvent(t, teacher.Events(), time.Second).Table)
	}
	d.Deliver(ChangeEvent{Table: TableDashboard})
	assertQuiet(t, teacher.Events())

	withDash := d.Subscribe(uuid.New(), TeacherScope().With(TableDashboard))
	defer withDash.Close()
	d.Deliver(ChangeEvent{Table: TableDashboard})
	assert.Equal(t, TableDashboard, recvEvent(t, withDash.Events(), time.Second).Table)
}

func TestSubscriptionCloseReleases(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	sub := d.Subscribe(uuid.New(), TeacherScope())
	require.Equal(t, 1, d.Len())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, d.Len())

	_, ok := <-sub.Events()
	assert.False(t, ok, "events channel should be closed")
	select {
	case <-sub.Done():
	default:
		t.Fatalf("done should be closed")
	}

	// Publishing after close must not panic or block.
	d.Publish(context.Background(), ChangeEvent{Table: TableCodeLogs})
}

func TestNoReplayForLateSubscribers(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	d.Publish(context.Background(), ChangeEvent{Table: TableCodeLogs, StudentID: uuid.New()})

	late := d.Subscribe(uuid.New(), TeacherScope())
	defer late.Close()
	assertQuiet(t, late.Events())
}

func TestFullBufferDoesNotBlockPublishers(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	sub := d.Subscribe(uuid.New(), TeacherScope())
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriptionBuffer*3; i++ {
			d.Publish(context.Background(), ChangeEvent{Table: TableCodeLogs})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("publish blocked on a slow subscriber")
	}
	assert.Len(t, sub.Events(), subscriptionBuffer)
}

type failingTransport struct{ forwarded func(ChangeEvent) }

func (f *failingTransport) Publish(context.Context, ChangeEvent) error {
	return errors.New("redis down")
}
func (f *failingTransport) StartForwarder(_ context.Context, onMsg func(ChangeEvent)) error {
	f.forwarded = onMsg
	return nil
}
func (f *failingTransport) Close() error { return nil }

func TestPublishFallsBackToLocalDelivery(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	tr := &failingTransport{}
	require.NoError(t, d.Attach(context.Background(), tr))

	sub := d.Subscribe(uuid.New(), TeacherScope())
	defer sub.Close()

	d.Publish(context.Background(), ChangeEvent{Table: TableSessions})
	assert.Equal(t, TableSessions, recvEvent(t, sub.Events(), time.Second).Table)

	// Messages arriving from other nodes reach local subscribers.
	tr.forwarded(ChangeEvent{Table: TableProgress})
	assert.Equal(t, TableProgress, recvEvent(t, sub.Events(), time.Second).Table)
}

func TestServeSSEWritesFrames(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	student := uuid.New()
	sub := d.Subscribe(student, SelfScope(student))

	req := httptest.NewRequest(http.MethodGet, "/api/stream", nil)
	rec := httptest.NewRecorder()
	served := make(chan struct{})
	go func() {
		d.ServeSSE(rec, req, sub)
		close(served)
	}()

	d.Publish(context.Background(), ChangeEvent{Table: TableProgress, StudentID: student})
	require.Eventually(t, func() bool { return len(sub.Events()) == 0 }, time.Second, 5*time.Millisecond)
	sub.Close()
	<-served

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(body, "event: ready\n"))
	assert.Contains(t, body, "event: student_progress\ndata: ")
}

func TestFullBufferKeepsSignalPerTable(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	me := uuid.New()
	sub := d.Subscribe(me, SelfScope(me))
	defer sub.Close()

	for i := 0; i < subscriptionBuffer*3; i++ {
		d.Publish(context.Background(), ChangeEvent{Table: TableProgress, StudentID: me})
	}
	d.Publish(context.Background(), ChangeEvent{Table: TableHelpRequests, StudentID: me})

	seen := map[Table]int{}
	deadline := time.After(2 * time.Second)
	for seen[TableHelpRequests] == 0 {
		select {
		case ev := <-sub.Events():
			seen[ev.Table]++
		case <-deadline:
			t.Fatalf("help_requests signal lost behind progress events: %v", seen)
		}
	}
	assert.GreaterOrEqual(t, seen[TableProgress], subscriptionBuffer)
}

func TestCloseWithParkedEventsDoesNotBlock(t *testing.T) {
	d := NewDispatcher(logger.Nop(), nil)
	me := uuid.New()
	sub := d.Subscribe(me, SelfScope(me))

	for i := 0; i < subscriptionBuffer+2; i++ {
		d.Publish(context.Background(), ChangeEvent{Table: TableProgress, StudentID: me})
	}
	d.Publish(context.Background(), ChangeEvent{Table: TableHelpRequests, StudentID: me})

	closed := make(chan struct{})
	go func() {
		sub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatalf("close blocked on parked events")
	}
	assert.Equal(t, 0, d.Len())
}

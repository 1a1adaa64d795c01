package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/smartassist-backend/internal/realtime"
)

// ChangePublisher is satisfied by *realtime.Dispatcher.
type ChangePublisher interface {
	Publish(ctx context.Context, ev realtime.ChangeEvent)
}

// ChangeNotifier announces committed writes. Call it only after the
// transaction that made the change has returned successfully.
type ChangeNotifier interface {
	Changed(ctx context.Context, table realtime.Table, op realtime.Op, studentID, rowID uuid.UUID)
}

type changeNotifier struct {
	pub ChangePublisher
	now Clock
}

func NewChangeNotifier(pub ChangePublisher, now Clock) ChangeNotifier {
	if now == nil {
		now = SystemClock
	}
	return &changeNotifier{pub: pub, now: now}
}

func (n *changeNotifier) Changed(ctx context.Context, table realtime.Table, op realtime.Op, studentID, rowID uuid.UUID) {
	if n == nil || n.pub == nil {
		return
	}
	// Delivery must not be cut short by the request that caused it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	n.pub.Publish(ctx, realtime.ChangeEvent{
		Table:     table,
		Op:        op,
		StudentID: studentID,
		RowID:     rowID,
		At:        n.now(),
	})
}

type nopNotifier struct{}

func (nopNotifier) Changed(context.Context, realtime.Table, realtime.Op, uuid.UUID, uuid.UUID) {}

func notifierOrNop(n ChangeNotifier) ChangeNotifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

package bus

import (
	"context"

	"github.com/yungbote/smartassist-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, ev realtime.ChangeEvent) error
	StartForwarder(ctx context.Context, onMsg func(ev realtime.ChangeEvent)) error
	Close() error
}

var _ realtime.Transport = (Bus)(nil)

package bus

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/smartassist-backend/internal/platform/logger"
	"github.com/yungbote/smartassist-backend/internal/realtime"
)

func TestLocalBusForwardsUntilCancelled(t *testing.T) {
	b := NewLocalBus()
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan realtime.ChangeEvent, 4)
	require.NoError(t, b.StartForwarder(ctx, func(ev realtime.ChangeEvent) { got <- ev }))

	ev := realtime.ChangeEvent{Table: realtime.TableCodeLogs, StudentID: uuid.New()}
	require.NoError(t, b.Publish(context.Background(), ev))
	assert.Equal(t, ev, <-got)

	cancel()
	require.Eventually(t, func() bool {
		_ = b.Publish(context.Background(), ev)
		select {
		case <-got:
			return false
		default:
			return true
		}
	}, time.Second, 10*time.Millisecond)
}

func TestRedisBusRoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis bus tests")
	}
	b, err := NewRedisBus(logger.Nop(), addr, "test-"+uuid.NewString())
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	got := make(chan realtime.ChangeEvent, 1)
	require.NoError(t, b.StartForwarder(ctx, func(ev realtime.ChangeEvent) { got <- ev }))

	ev := realtime.ChangeEvent{Table: realtime.TableProgress, StudentID: uuid.New(), Op: realtime.OpUpdate}
	require.NoError(t, b.Publish(ctx, ev))
	select {
	case recv := <-got:
		assert.Equal(t, ev.Table, recv.Table)
		assert.Equal(t, ev.StudentID, recv.StudentID)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for redis message")
	}
}

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redisstore "github.com/gosuda/slackdone/internal/store/redis"
)

func newClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redisstore.Connect(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestBoardChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		workspace string
		list      string
		want      string
	}{
		{name: "happy path", workspace: "T01", list: "F02", want: "board:T01:F02"},
		{name: "empty ids", workspace: "", list: "", want: "board::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, redisstore.BoardChannel(tt.workspace, tt.list))
		})
	}

	t.Run("different lists produce different channels", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, redisstore.BoardChannel("T01", "F02"), redisstore.BoardChannel("T01", "F03"))
	})
}

func TestConnect_Unreachable(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.Connect(context.Background(), addr, "", 0)
	require.Error(t, err)
}

func TestPubSub_PublishSubscribe(t *testing.T) {
	t.Parallel()

	client, _ := newClient(t)
	ps := redisstore.NewPubSub(client)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := redisstore.BoardChannel("T01", "F02")
	msgs, cleanup, err := ps.Subscribe(ctx, ch)
	require.NoError(t, err)
	defer cleanup()

	require.NoError(t, ps.Publish(ctx, redisstore.BoardChannel("T01", "other"), []byte("ignored")))
	require.NoError(t, ps.Publish(ctx, ch, []byte(`{"type":"item.moved"}`)))

	select {
	case got := <-msgs:
		assert.JSONEq(t, `{"type":"item.moved"}`, string(got))
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-msgs:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

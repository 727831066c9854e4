package net

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LocalPaint/internal/logger"
	"LocalPaint/internal/paint"
	"LocalPaint/internal/state"
)

const wait = 2 * time.Second

func startHub(t *testing.T, hub *Hub) string {
	t.Helper()
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		_ = hub.Close(context.Background())
		srv.Close()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + WebSocketPath
}

func dial(t *testing.T, url string) (*Client, chan state.Op) {
	t.Helper()
	ch := make(chan state.Op, 8)
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	c, err := Dial(ctx, url, func(op state.Op) { ch <- op }, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, ch
}

func receive(t *testing.T, ch chan state.Op) state.Op {
	t.Helper()
	select {
	case op := <-ch:
		return op
	case <-time.After(wait):
		t.Fatal("timed out waiting for op")
	}
	return state.Op{}
}

func assertSilent(t *testing.T, ch chan state.Op) {
	t.Helper()
	select {
	case op := <-ch:
		t.Fatalf("unexpected op %s", op.Type)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHubRelaysToOtherPeersAndHost(t *testing.T) {
	hub := NewHub(logger.Nop())
	hostCh := make(chan state.Op, 8)
	hub.OnOp = func(op state.Op) { hostCh <- op }
	url := startHub(t, hub)

	a, aCh := dial(t, url)
	_, bCh := dial(t, url)
	require.Eventually(t, func() bool { return hub.peerCount() == 2 }, wait, 10*time.Millisecond)

	op := state.NewJournal(state.NewClock()).Local(state.NewDabOp(paint.DefaultBrush(), paint.Point{X: 3, Y: 4}))
	require.NoError(t, a.Publish(op))

	assert.Equal(t, op, receive(t, hostCh))
	assert.Equal(t, op, receive(t, bCh))
	assertSilent(t, aCh)
}

func TestHubPublishReachesEveryPeer(t *testing.T) {
	hub := NewHub(logger.Nop())
	url := startHub(t, hub)

	_, aCh := dial(t, url)
	_, bCh := dial(t, url)
	require.Eventually(t, func() bool { return hub.peerCount() == 2 }, wait, 10*time.Millisecond)

	op := state.NewClock().Stamp(state.NewClearOp())
	require.NoError(t, hub.Publish(op))

	assert.Equal(t, op, receive(t, aCh))
	assert.Equal(t, op, receive(t, bCh))
}

func TestHubSendsSnapshotFirst(t *testing.T) {
	hub := NewHub(logger.Nop())
	snap := state.NewClock().Stamp(state.NewSyncOp([]byte{1, 2, 3}))
	hub.Snapshot = func() (state.Op, bool) { return snap, true }
	url := startHub(t, hub)

	_, ch := dial(t, url)
	got := receive(t, ch)
	assert.Equal(t, state.OpSync, got.Type)
	assert.Equal(t, snap.Image, got.Image)
}

func TestClientDoneWhenHubCloses(t *testing.T) {
	hub := NewHub(logger.Nop())
	url := startHub(t, hub)

	c, _ := dial(t, url)
	require.Eventually(t, func() bool { return hub.peerCount() == 1 }, wait, 10*time.Millisecond)

	require.NoError(t, hub.Close(context.Background()))
	select {
	case <-c.Done():
		assert.Error(t, c.Err())
	case <-time.After(wait):
		t.Fatal("client never noticed the host going away")
	}
}

func TestDialFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1/ws", nil, logger.Nop())
	assert.Error(t, err)
}

func TestHubStartBindsAddress(t *testing.T) {
	hub := NewHub(logger.Nop())
	addr, err := hub.Start("127.0.0.1:0")
	require.NoError(t, err)
	defer hub.Close(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	c, err := Dial(ctx, WebSocketURL(addr.String()), nil, logger.Nop())
	require.NoError(t, err)
	defer c.Close()
	require.Eventually(t, func() bool { return hub.peerCount() == 1 }, wait, 10*time.Millisecond)
}

func limitMessages(t *testing.T, n int64) {
	t.Helper()
	prev := maxMessageSize
	maxMessageSize = n
	t.Cleanup(func() { maxMessageSize = prev })
}

func TestHubDropsOversizedOp(t *testing.T) {
	limitMessages(t, 1024)
	hub := NewHub(logger.Nop())
	hostCh := make(chan state.Op, 8)
	hub.OnOp = func(op state.Op) { hostCh <- op }
	url := startHub(t, hub)

	c, _ := dial(t, url)
	require.Eventually(t, func() bool { return hub.peerCount() == 1 }, wait, 10*time.Millisecond)

	big := state.NewClock().Stamp(state.NewImageOp(make([]byte, 4096)))
	require.NoError(t, c.Publish(big))

	require.Eventually(t, func() bool { return hub.peerCount() == 0 }, wait, 10*time.Millisecond)
	assertSilent(t, hostCh)
}

func TestClientDisconnectsOnOversizedOp(t *testing.T) {
	limitMessages(t, 1024)
	hub := NewHub(logger.Nop())
	url := startHub(t, hub)

	c, ch := dial(t, url)
	require.Eventually(t, func() bool { return hub.peerCount() == 1 }, wait, 10*time.Millisecond)

	require.NoError(t, hub.Publish(state.NewClock().Stamp(state.NewImageOp(make([]byte, 4096)))))
	select {
	case <-c.Done():
		assert.Error(t, c.Err())
	case <-time.After(wait):
		t.Fatal("client accepted an oversized op")
	}
	assertSilent(t, ch)
}

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitClosed(t *testing.T, p *Producer) {
	t.Helper()
	done := make(chan struct{})
	go func() { p.WaitClosed(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitClosed tidak pernah selesai")
	}
}

// Urutan shutdown di main: Close() dulu baru cancel(). Dua-duanya harus
// aman dalam urutan apapun, tanpa double close dan tanpa WaitClosed hang.
func TestProducerCloseThenCancel(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "order.created", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	require.NotPanics(t, func() {
		p.Close()
		cancel()
		p.Close() // idempotent
	})
	waitClosed(t, p)
}

func TestProducerCancelThenClose(t *testing.T) {
	p := NewProducer([]string{"localhost:0"}, "order.created", 4)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	require.NotPanics(t, func() {
		cancel()
		p.Close()
	})
	waitClosed(t, p)
}

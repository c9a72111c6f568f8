package sink

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSinkOrder(t *testing.T) {
	check := assert.New(t)
	ctx := context.Background()
	s := New(4)
	for i := 0; i < 3; i++ {
		check.NoError(s.Put(ctx, i))
	}
	check.Equal(3, s.Len())

	v, err := s.Next(ctx)
	check.NoError(err)
	check.Equal(0, v)
	v, ok := s.TryNext()
	check.True(ok)
	check.Equal(1, v)
	v, ok = s.TryNext()
	check.True(ok)
	check.Equal(2, v)
	_, ok = s.TryNext()
	check.False(ok)
}

func TestSinkBackpressure(t *testing.T) {
	check := assert.New(t)
	s := New(1)
	check.NoError(s.Put(context.Background(), "a"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	check.ErrorIs(s.Put(ctx, "b"), context.DeadlineExceeded)

	put := make(chan error, 1)
	go func() { put <- s.Put(context.Background(), "c") }()
	v, err := s.Next(context.Background())
	check.NoError(err)
	check.Equal("a", v)
	check.NoError(<-put)
	v, _ = s.TryNext()
	check.Equal("c", v)
}

func TestSinkNextBlocks(t *testing.T) {
	check := assert.New(t)
	s := New(0)
	got := make(chan interface{}, 1)
	go func() {
		v, _ := s.Next(context.Background())
		got <- v
	}()
	check.NoError(s.Put(context.Background(), "route"))
	check.Equal("route", <-got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Next(ctx)
	check.ErrorIs(err, context.Canceled)
}

func TestSinkClose(t *testing.T) {
	check := assert.New(t)
	ctx := context.Background()
	s := New(2)
	check.NoError(s.Put(ctx, "queued"))
	s.Close()
	s.Close()

	check.ErrorIs(s.Put(ctx, "late"), ErrClosed)
	v, err := s.Next(ctx)
	check.NoError(err)
	check.Equal("queued", v)
	_, err = s.Next(ctx)
	check.ErrorIs(err, ErrClosed)
}

func TestSinkNextCancelledKeepsItems(t *testing.T) {
	check := assert.New(t)
	s := New(4)
	check.NoError(s.Put(context.Background(), "first"))
	check.NoError(s.Put(context.Background(), "second"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Next(ctx)
	check.ErrorIs(err, context.Canceled)
	check.Equal(2, s.Len())

	// a held item is still delivered first
	s.unget("held")
	check.Equal(3, s.Len())
	for _, want := range []string{"held", "first", "second"} {
		v, err := s.Next(context.Background())
		check.NoError(err)
		check.Equal(want, v)
	}
	check.Equal(0, s.Len())
}

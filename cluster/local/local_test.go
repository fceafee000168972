package local

import (
	"context"
	"testing"
)

func TestDispatchRunsHandlerAndReturnsReply(t *testing.T) {
	c := New[int, int](3)
	c.SetHandler(1, func(_ context.Context, req int) (int, error) {
		return req * 2, nil
	})

	call := c.Dispatch(context.Background(), 1, 21)
	got, err := call.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
}

func TestDispatchNoHandlerInstalled(t *testing.T) {
	c := New[int, int](2)

	call := c.Dispatch(context.Background(), 0, 1)
	_, err := call.Get(context.Background())
	if err == nil {
		t.Fatal("expected an error for an unset handler")
	}
}

func TestCancelStopsHandlerContext(t *testing.T) {
	c := New[int, int](1)
	started := make(chan struct{})
	c.SetHandler(0, func(ctx context.Context, _ int) (int, error) {
		close(started)
		<-ctx.Done()
		return 0, ctx.Err()
	})

	call := c.Dispatch(context.Background(), 0, 0)
	<-started
	call.Cancel()

	_, err := call.Get(context.Background())
	if err == nil {
		t.Fatal("expected the handler's context cancellation to surface as an error")
	}
}

func TestSelfIndexAndSize(t *testing.T) {
	c := New[int, int](5)
	if c.Size() != 5 {
		t.Errorf("Size() = %d, want 5", c.Size())
	}
	if idx := c.Node(3).Index(); idx != 3 {
		t.Errorf("Node(3).Index() = %d, want 3", idx)
	}
}

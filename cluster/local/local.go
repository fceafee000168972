// Package local provides an in-process cluster simulation: goroutines
// stand in for peer nodes, channels stand in for the wire. It implements
// cluster.Self, cluster.Cloud, and rpc.Dispatcher so that tests, the CLI
// harness, and single-binary deployments can exercise the distributed
// fan-out (task package) without a real transport — the same role
// grailbio/bigslice's exec/local.go and tymbaca/mapreduce-go's
// chanTransport play for their own frameworks.
package local

import (
	"context"
	"fmt"
	"sync"

	"github.com/distcol/mrengine/rpc"
)

// Handler runs a dispatched request on the node it was sent to and
// returns the reply. The task package installs, per node, "run this
// envelope's local share and return the node's Reply".
type Handler[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Cluster is an in-process cluster of size N. Each node's handler is
// installed once via SetHandler before any Dispatch targeting it.
type Cluster[Req, Resp any] struct {
	mu       sync.RWMutex
	handlers []Handler[Req, Resp]
}

// New creates a Cluster of n nodes with no handlers installed.
func New[Req, Resp any](n int) *Cluster[Req, Resp] {
	return &Cluster[Req, Resp]{handlers: make([]Handler[Req, Resp], n)}
}

// Size returns the number of nodes, satisfying cluster.Cloud.
func (c *Cluster[Req, Resp]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.handlers)
}

// SetHandler installs the handler Dispatch runs for payloads sent to
// node idx.
func (c *Cluster[Req, Resp]) SetHandler(idx int, h Handler[Req, Resp]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[idx] = h
}

// Node returns a cluster.Self bound to index idx within this Cluster.
func (c *Cluster[Req, Resp]) Node(idx int) *Self { return &Self{index: idx} }

// Self implements cluster.Self for one node of an in-process Cluster.
type Self struct{ index int }

// Index satisfies cluster.Self.
func (s *Self) Index() int { return s.index }

// Dispatch satisfies rpc.Dispatcher: it runs peer's handler on a fresh
// goroutine (standing in for the network hop) and returns a Call whose
// Get blocks on the handler's reply and whose Cancel cancels the
// context passed to the handler.
func (c *Cluster[Req, Resp]) Dispatch(ctx context.Context, peer int, payload Req) rpc.Call[Resp] {
	c.mu.RLock()
	h := c.handlers[peer]
	c.mu.RUnlock()

	callCtx, cancel := context.WithCancel(ctx)
	call := &call[Resp]{cancel: cancel, done: make(chan struct{})}

	if h == nil {
		call.err = fmt.Errorf("cluster/local: no handler installed for node %d", peer)
		close(call.done)
		return call
	}

	go func() {
		defer close(call.done)
		reply, err := h(callCtx, payload)
		call.reply, call.err = reply, err
	}()

	return call
}

type call[Resp any] struct {
	cancel context.CancelFunc
	done   chan struct{}
	reply  Resp
	err    error
}

func (c *call[Resp]) Get(ctx context.Context) (Resp, error) {
	select {
	case <-c.done:
		return c.reply, c.err
	case <-ctx.Done():
		var zero Resp
		return zero, ctx.Err()
	}
}

func (c *call[Resp]) Cancel() {
	c.cancel()
}

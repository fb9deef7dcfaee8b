package core

import "github.com/zodiora/live/internal/domain"

// Frame is a marshaled server→client event, ready for the wire.
type Frame []byte

// ClientID names one transport connection. Reconnects mint a new one;
// seat continuity across reconnects keys off the user, not the wire.
type ClientID string

// SignalConnection abstracts the per-client messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend never
// blocks: a full buffer is an error, not a stall.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// Client binds an authenticated identity to its transport endpoint. It is
// the explicit per-connection handle: a client is attached to at most one
// session at a time, and that attachment is tracked by the registry, not
// by ambient state.
type Client interface {
	ID() ClientID
	Identity() domain.Identity
	Signal() SignalConnection
}

// PublishResult reports fan-out delivery: how many frames were enqueued
// and which clients had no buffer room. The backpressure policy decides
// what happens to the dropped ones.
type PublishResult struct {
	Sent    int
	Dropped []ClientID
}

func (r *PublishResult) merge(other PublishResult) {
	r.Sent += other.Sent
	r.Dropped = append(r.Dropped, other.Dropped...)
}

type client struct {
	id       ClientID
	identity domain.Identity
	signal   SignalConnection
}

// NewClient pairs identity and transport so adapters never hand raw
// connections to the engine.
func NewClient(id ClientID, identity domain.Identity, signal SignalConnection) Client {
	return &client{id: id, identity: identity, signal: signal}
}

func (c *client) ID() ClientID              { return c.id }
func (c *client) Identity() domain.Identity { return c.identity }
func (c *client) Signal() SignalConnection  { return c.signal }

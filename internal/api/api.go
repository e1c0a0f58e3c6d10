// Package api implements the three RPC-visible operations, translating wire
// requests into ModemProxy calls. It is the thin seam between the RPC
// dispatcher (which knows about wire framing) and the proxy (which knows
// about modem state).
package api

import (
	"context"

	"github.com/landialler/landiallerd/internal/registry"
)

// proxy is the subset of *proxy.ModemProxy the API depends on.
type proxy interface {
	AddClient(ctx context.Context, id registry.ClientID) bool
	RemoveClient(ctx context.Context, id registry.ClientID) bool
	HangUp(ctx context.Context) bool
	RefreshClient(id registry.ClientID)
	CountClients() int
	IsConnected(ctx context.Context) bool
	TimeConnected() int
}

// Status is the getStatus return shape: (clients, connected, seconds).
type Status struct {
	Clients   int
	Connected bool
	Seconds   int
}

// API exposes connect, disconnect and getStatus over a ModemProxy.
type API struct {
	proxy proxy
}

// New constructs an API bound to the given proxy.
func New(p proxy) *API {
	return &API{proxy: p}
}

// Connect brings the link up for id, dialling if this is the first client.
func (a *API) Connect(ctx context.Context, id registry.ClientID) bool {
	return a.proxy.AddClient(ctx, id)
}

// Disconnect deregisters id, relying on the proxy's last-client rule to
// decide whether to hang up. If all is true, the link is then also torn
// down if it still reports connected, and the hang-up command's success is
// returned; the other clients stay registered.
func (a *API) Disconnect(ctx context.Context, id registry.ClientID, all bool) bool {
	ok := a.proxy.RemoveClient(ctx, id)
	if !all {
		return ok
	}
	if a.proxy.IsConnected(ctx) {
		return a.proxy.HangUp(ctx)
	}
	return ok
}

// GetStatus refreshes id's inactivity clock and returns the client count,
// link state, and session length. Each value is read by a separate proxy
// call, so a concurrent mutation can land between the reads.
func (a *API) GetStatus(ctx context.Context, id registry.ClientID) Status {
	a.proxy.RefreshClient(id)
	return Status{
		Clients:   a.proxy.CountClients(),
		Connected: a.proxy.IsConnected(ctx),
		Seconds:   a.proxy.TimeConnected(),
	}
}

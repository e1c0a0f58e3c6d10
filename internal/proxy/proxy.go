// Package proxy implements the ModemProxy coordinator: it multiplexes many
// concurrent clients onto one Modem while preserving the dial-once,
// hang-up-on-last rules. Every operation holds a single mutex for the whole
// duration of its decision/action pair, so a state read and the action it
// triggers can never be interleaved with another caller.
package proxy

import (
	"context"
	"sync"
	"time"

	"github.com/landialler/landiallerd/internal/metrics"
	"github.com/landialler/landiallerd/internal/registry"
)

// ClientTimeout is the inactivity window after which a client is pruned by
// the sweeper.
const ClientTimeout = 30 * time.Second

// modem is the subset of *modem.Modem the proxy depends on. Declaring it
// here (rather than importing the concrete type) keeps the proxy testable
// without spawning real external commands.
type modem interface {
	Dial(ctx context.Context) bool
	HangUp(ctx context.Context) bool
	IsConnected(ctx context.Context) bool
	TimeConnected() int
}

// ModemProxy is the concurrency-safe coordinator that multiplexes many
// clients onto one Modem.
type ModemProxy struct {
	mu         sync.Mutex
	modem      modem
	clients    *registry.Registry
	isDialling bool
}

// New constructs a ModemProxy around the given Modem. The proxy starts
// Idle: no clients, not dialling.
func New(m modem) *ModemProxy {
	return &ModemProxy{
		modem:   m,
		clients: registry.New(),
	}
}

// AddClient refreshes id's last-seen instant and, if the link is neither
// connected nor already dialling, starts a dial. A second AddClient for any
// client while a dial is in flight never starts a second dial: the
// isDialling flag, not a fresh probe, gates it.
func (p *ModemProxy) AddClient(ctx context.Context, id registry.ClientID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clients.Refresh(id)
	metrics.SetClientsRegistered(p.clients.Count())

	if p.modem.IsConnected(ctx) {
		p.isDialling = false
		return true
	}
	if p.isDialling {
		return true
	}

	p.isDialling = true
	return p.modem.Dial(ctx)
}

// RefreshClient unconditionally sets id's last-seen instant, without
// touching the modem. Used by getStatus to keep a polling client alive.
func (p *ModemProxy) RefreshClient(id registry.ClientID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients.Refresh(id)
	metrics.SetClientsRegistered(p.clients.Count())
}

// RemoveClient deletes id if present. If the registry is now empty and the
// modem reports connected, a hang-up is issued. Removing an
// unknown id, or removing while offline, is a no-op beyond the deletion.
func (p *ModemProxy) RemoveClient(ctx context.Context, id registry.ClientID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.removeClientLocked(ctx, id)
}

func (p *ModemProxy) removeClientLocked(ctx context.Context, id registry.ClientID) bool {
	p.clients.Remove(id)
	metrics.SetClientsRegistered(p.clients.Count())

	if p.clients.Count() == 0 && p.modem.IsConnected(ctx) {
		return p.modem.HangUp(ctx)
	}
	return true
}

// HangUp issues an unconditional tear-down, used by administrative
// "disconnect all" requests. It may be called while already offline; the
// command is simply re-issued.
func (p *ModemProxy) HangUp(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modem.HangUp(ctx)
}

// RemoveOldClients prunes every client whose last activity exceeds
// ClientTimeout, then issues at most one hang-up if that leaves the
// registry empty while the modem still reports connected. The single
// end-of-prune check, rather than one per expired client, keeps exactly
// one hang-up even when several clients expire in the same tick.
func (p *ModemProxy) RemoveOldClients(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clients.RemoveOlderThan(ClientTimeout)
	metrics.SetClientsRegistered(p.clients.Count())
	if p.clients.Count() == 0 && p.modem.IsConnected(ctx) {
		p.modem.HangUp(ctx)
	}
}

// CountClients returns the number of registered clients.
func (p *ModemProxy) CountClients() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clients.Count()
}

// IsConnected delegates to the modem and clears isDialling on success.
func (p *ModemProxy) IsConnected(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	connected := p.modem.IsConnected(ctx)
	if connected {
		p.isDialling = false
	}
	return connected
}

// TimeConnected returns the modem's current session length in seconds.
func (p *ModemProxy) TimeConnected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modem.TimeConnected()
}

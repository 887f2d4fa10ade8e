package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/assistant-dashboard/internal/entity"
)

// DefaultFetchTimeout bounds every backend fetch; running out is treated
// exactly like a network failure.
const DefaultFetchTimeout = 8 * time.Second

var ErrFetchTimeout = errors.New("backend did not answer in time")

type LeadSource string

const (
	LeadSourceServer   LeadSource = "server"
	LeadSourceMemory   LeadSource = "memory"
	LeadSourceSnapshot LeadSource = "snapshot"
	LeadSourceEmpty    LeadSource = "empty"
)

type RefreshResult struct {
	Leads      []entity.Lead
	Source     LeadSource
	Generation uint64
	// Discarded is set when a newer refresh was dispatched while this one
	// was in flight; its response was dropped.
	Discarded bool
	Err       error
}

// Stale reports whether the list shown is not the server's latest answer.
func (r RefreshResult) Stale() bool {
	return r.Source != LeadSourceServer
}

// LeadReconciler keeps the lead list stable across backend failures and owns
// the durable snapshot. A failed refresh never shrinks the list.
type LeadReconciler struct {
	fetcher LeadFetcher
	store   entity.LeadSnapshotStore
	timeout time.Duration
	logger  *zap.Logger

	dispatched atomic.Uint64

	mu      sync.Mutex
	leads   []entity.Lead
	pending []entity.Lead
	last    RefreshResult
}

func NewLeadReconciler(fetcher LeadFetcher, store entity.LeadSnapshotStore, timeout time.Duration, logger *zap.Logger) *LeadReconciler {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeadReconciler{
		fetcher: fetcher,
		store:   store,
		timeout: timeout,
		logger:  logger,
	}
}

// Warm loads the durable snapshot so there is something to show before the
// first network call resolves.
func (r *LeadReconciler) Warm(ctx context.Context) []entity.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.leads) == 0 {
		if snap, ok := r.loadSnapshot(ctx); ok {
			r.leads = snap
			r.last = RefreshResult{Source: LeadSourceSnapshot}
			r.logger.Info("lead list warmed from snapshot", zap.Int("leads", len(snap)))
		}
	}
	return cloneLeads(r.leads)
}

func (r *LeadReconciler) Current() []entity.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneLeads(r.leads)
}

// LastRefresh describes the latest refresh that was allowed to change state.
// Its Leads field is left empty; use Current for the list itself. A zero
// Generation means no refresh has completed yet.
func (r *LeadReconciler) LastRefresh() RefreshResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Refresh fetches the authoritative list. Only the latest dispatched refresh
// may change state; older responses are dropped.
func (r *LeadReconciler) Refresh(ctx context.Context) RefreshResult {
	gen := r.dispatched.Add(1)

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
	leads, err := r.fetcher.ListLeads(fetchCtx)
	timedOut := errors.Is(fetchCtx.Err(), context.DeadlineExceeded)
	cancel()

	if err != nil && timedOut {
		err = fmt.Errorf("%w (%s): %v", ErrFetchTimeout, r.timeout, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.dispatched.Load() {
		r.logger.Debug("dropping superseded lead refresh",
			zap.Uint64("generation", gen),
			zap.Uint64("latest", r.dispatched.Load()),
		)
		return RefreshResult{
			Leads:      cloneLeads(r.leads),
			Source:     LeadSourceMemory,
			Generation: gen,
			Discarded:  true,
			Err:        err,
		}
	}

	if err != nil {
		result := r.fallback(ctx, gen, err)
		r.last = RefreshResult{Source: result.Source, Generation: gen, Err: err}
		return result
	}

	if leads == nil {
		leads = []entity.Lead{}
	}
	leads = r.reconcilePending(leads)
	r.leads = leads
	r.last = RefreshResult{Source: LeadSourceServer, Generation: gen}
	r.saveSnapshot(ctx, leads)

	return RefreshResult{
		Leads:      cloneLeads(leads),
		Source:     LeadSourceServer,
		Generation: gen,
	}
}

// fallback must be called with mu held.
func (r *LeadReconciler) fallback(ctx context.Context, gen uint64, cause error) RefreshResult {
	r.logger.Warn("lead refresh failed, keeping last known list",
		zap.Error(cause),
		zap.Int("in_memory", len(r.leads)),
	)

	if len(r.leads) > 0 {
		return RefreshResult{Leads: cloneLeads(r.leads), Source: LeadSourceMemory, Generation: gen, Err: cause}
	}

	if snap, ok := r.loadSnapshot(ctx); ok {
		r.leads = snap
		return RefreshResult{Leads: cloneLeads(snap), Source: LeadSourceSnapshot, Generation: gen, Err: cause}
	}

	return RefreshResult{Leads: []entity.Lead{}, Source: LeadSourceEmpty, Generation: gen, Err: cause}
}

// MergeOptimistic puts a just-created lead at the head of the list and
// remembers it until a successful refresh returns the server's copy.
func (r *LeadReconciler) MergeOptimistic(ctx context.Context, created entity.Lead) []entity.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending = append(r.pending, created)

	for _, l := range r.leads {
		if l.SameRecord(created) {
			return cloneLeads(r.leads)
		}
	}

	merged := make([]entity.Lead, 0, len(r.leads)+1)
	merged = append(merged, created)
	merged = append(merged, r.leads...)
	r.leads = merged
	r.saveSnapshot(ctx, merged)

	return cloneLeads(merged)
}

// reconcilePending must be called with mu held. A created lead stays
// pending until a server list carries its id.
func (r *LeadReconciler) reconcilePending(server []entity.Lead) []entity.Lead {
	unconfirmed := r.pending[:0]
	for _, created := range r.pending {
		if !containsID(server, created.ID) {
			unconfirmed = append(unconfirmed, created)
		}
		server = ReconcileCreated(server, created)
	}
	r.pending = unconfirmed
	return server
}

func containsID(leads []entity.Lead, id string) bool {
	for _, l := range leads {
		if l.ID == id {
			return true
		}
	}
	return false
}

// ReconcileCreated prefers the server's copy of a created lead when the
// authoritative list already has its id; otherwise the optimistic copy is
// kept at the head.
func ReconcileCreated(server []entity.Lead, created entity.Lead) []entity.Lead {
	if containsID(server, created.ID) {
		return server
	}

	merged := make([]entity.Lead, 0, len(server)+1)
	merged = append(merged, created)
	merged = append(merged, server...)
	return merged
}

func (r *LeadReconciler) loadSnapshot(ctx context.Context) ([]entity.Lead, bool) {
	if r.store == nil {
		return nil, false
	}
	snap, ok, err := r.store.Load(ctx)
	if err != nil {
		r.logger.Error("failed to load lead snapshot", zap.Error(err))
		return nil, false
	}
	if !ok || len(snap) == 0 {
		return nil, false
	}
	return snap, true
}

// Snapshot failures are logged and never fail the caller.
func (r *LeadReconciler) saveSnapshot(ctx context.Context, leads []entity.Lead) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, leads); err != nil {
		r.logger.Error("failed to persist lead snapshot", zap.Error(err), zap.Int("leads", len(leads)))
	}
}

func cloneLeads(leads []entity.Lead) []entity.Lead {
	out := make([]entity.Lead, len(leads))
	copy(out, leads)
	return out
}

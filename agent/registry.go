package agent

import (
	"slices"
	"sync"

	"github.com/hupe1980/stepmesh/core"
)

// Registry keeps the set of owners currently in the simulation, in
// registration order. It answers "which owners have work in this part of the
// frame" by delegating to the scheduler's per-owner queries, so it never
// duplicates stepper bookkeeping.
type Registry struct {
	querier core.StepperQuerier

	mu      sync.RWMutex
	owners  []core.Owner
	members map[core.Owner]struct{}
}

// NewRegistry creates an empty registry answering queries through querier.
func NewRegistry(querier core.StepperQuerier) *Registry {
	return &Registry{
		querier: querier,
		members: make(map[core.Owner]struct{}),
	}
}

// RegisterOwner adds o. It reports false if o is nil or already registered.
func (r *Registry) RegisterOwner(o core.Owner) bool {
	if o == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[o]; ok {
		return false
	}
	r.members[o] = struct{}{}
	r.owners = append(r.owners, o)

	return true
}

// DeregisterOwner removes o. It does not touch o's steppers; tearing the owner
// down is the caller's job (see BaseAgent.Destroy).
func (r *Registry) DeregisterOwner(o core.Owner) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.members[o]; !ok {
		return false
	}
	delete(r.members, o)
	r.owners = slices.DeleteFunc(r.owners, func(e core.Owner) bool { return e == o })

	return true
}

// Contains reports whether o is registered.
func (r *Registry) Contains(o core.Owner) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[o]
	return ok
}

// Owners returns a copy of the registered owners in registration order.
func (r *Registry) Owners() []core.Owner {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.owners)
}

// Len returns the number of registered owners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.owners)
}

// OwnersInPriorityRange returns the owners with at least one stepper whose
// priority lies in [start, end].
func (r *Registry) OwnersInPriorityRange(start, end int) []core.Owner {
	return r.filter(func(o core.Owner) bool {
		return r.querier.HasStepperInPriorityRange(o, start, end)
	})
}

// OwnersInSlot returns the owners with at least one stepper in slot.
func (r *Registry) OwnersInSlot(slot core.QueueSlot) []core.Owner {
	return r.filter(func(o core.Owner) bool {
		return r.querier.HasStepperInSlot(o, slot)
	})
}

func (r *Registry) filter(keep func(core.Owner) bool) []core.Owner {
	var out []core.Owner
	for _, o := range r.Owners() {
		if keep(o) {
			out = append(out, o)
		}
	}
	return out
}

package dmn

import (
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
)

// Vault provides lock-free, hot-reloadable storage of decisions by ID.
// Readers always see a consistent, immutable set of decisions; a set of
// mutations becomes visible to readers at once.
type Vault struct {
	decisions atomic.Pointer[map[string]*Decision]
}

// DecisionMutation defines a single change to the vault.
type DecisionMutation struct {
	// Required; ID of the decision being changed, added or deleted
	ID string

	// Decision replaces or adds the decision with ID. If nil, the decision
	// with ID is deleted.
	Decision *Decision
}

// NewVault creates a Vault holding the decisions.
func NewVault(decisions ...*Decision) (*Vault, error) {
	v := &Vault{}
	empty := map[string]*Decision{}
	v.decisions.Store(&empty)
	if err := v.Replace(decisions...); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns the decision with the ID.
func (v *Vault) Get(id string) (*Decision, bool) {
	d, ok := (*v.decisions.Load())[id]
	return d, ok
}

// IDs returns the IDs of all decisions in sorted order.
func (v *Vault) IDs() []string {
	return slices.Sorted(maps.Keys(*v.decisions.Load()))
}

func (v *Vault) Len() int {
	return len(*v.decisions.Load())
}

// Put adds or replaces the decisions.
func (v *Vault) Put(decisions ...*Decision) error {
	mut := make([]DecisionMutation, 0, len(decisions))
	for _, d := range decisions {
		if d == nil {
			return fmt.Errorf("attempt to add nil decision")
		}
		mut = append(mut, DecisionMutation{ID: d.ID(), Decision: d})
	}
	return v.ApplyMutations(mut)
}

// Delete removes the decision with the ID.
func (v *Vault) Delete(id string) error {
	return v.ApplyMutations([]DecisionMutation{{ID: id}})
}

// Replace swaps the complete content of the vault for the decisions.
func (v *Vault) Replace(decisions ...*Decision) error {
	next := make(map[string]*Decision, len(decisions))
	for _, d := range decisions {
		if d == nil {
			return fmt.Errorf("attempt to add nil decision")
		}
		if _, dup := next[d.ID()]; dup {
			return fmt.Errorf("duplicate decision id %s", d.ID())
		}
		next[d.ID()] = d
	}
	v.decisions.Store(&next)
	return nil
}

// ApplyMutations makes the changes to the decisions stored in the Vault.
// Either all mutations are applied, or none.
func (v *Vault) ApplyMutations(mutations []DecisionMutation) error {
	for {
		old := v.decisions.Load()
		next := maps.Clone(*old)
		for _, m := range mutations {
			if m.ID == "" {
				return fmt.Errorf("mutation without decision id")
			}
			switch m.Decision {
			case nil:
				if _, ok := next[m.ID]; !ok {
					return fmt.Errorf("deleting decision %s: %w", m.ID, ErrDecisionNotFound)
				}
				delete(next, m.ID)
			default:
				if m.Decision.ID() != m.ID {
					return fmt.Errorf("upserting decision %s: decision has id %s", m.ID, m.Decision.ID())
				}
				next[m.ID] = m.Decision
			}
		}
		if v.decisions.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

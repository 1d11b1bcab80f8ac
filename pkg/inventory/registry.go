package inventory

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Registry stores item definitions keyed by ItemID and hands out numeric
// handles for compact wire encoding. It also owns the shared parameter
// descriptors, so every stack of every item points at the same descriptor per
// kind.
type Registry struct {
	mu          sync.RWMutex
	items       map[ItemID]*ItemDefinition
	byID        map[NumericID]ItemID
	nextID      NumericID
	descriptors map[ParameterKind]*ParameterDescriptor
}

// NewRegistry constructs an empty registry and optionally seeds it with
// definitions.
func NewRegistry(defs ...*ItemDefinition) *Registry {
	r := &Registry{
		items:       make(map[ItemID]*ItemDefinition, len(defs)),
		byID:        make(map[NumericID]ItemID, len(defs)),
		descriptors: make(map[ParameterKind]*ParameterDescriptor),
	}
	for _, d := range defs {
		_ = r.Register(d) // ignore duplicates during seed
	}
	return r
}

// Parameter returns the shared descriptor for kind, creating it on first use
// with the kind's catalog name.
func (r *Registry) Parameter(kind ParameterKind) *ParameterDescriptor {
	return r.Descriptor(kind, kind.String())
}

// Descriptor returns the shared descriptor for kind. The name is only used
// when the descriptor does not exist yet.
func (r *Registry) Descriptor(kind ParameterKind, name string) *ParameterDescriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.descriptors[kind]; ok {
		return d
	}
	d := &ParameterDescriptor{Name: name, Kind: kind}
	r.descriptors[kind] = d
	return d
}

// Value is a convenience for building a default parameter value bound to the
// registry's descriptor for kind.
func (r *Registry) Value(kind ParameterKind, v float64) ParameterValue {
	return ParameterValue{Descriptor: r.Parameter(kind), Value: v}
}

// Register inserts a definition. Non-stackable items have their stack size
// forced to 1. A zero NumericID is assigned automatically.
func (r *Registry) Register(def *ItemDefinition) error {
	if def == nil {
		return errors.New("inventory: nil item definition")
	}
	if !def.Stackable {
		def.MaxStackSize = 1
	}
	if err := def.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[def.ID]; exists {
		return fmt.Errorf("inventory: item %q already registered", def.ID)
	}

	if def.NumericID == 0 {
		r.nextID++
		def.NumericID = r.nextID
	} else {
		if def.NumericID < 0 {
			return errors.New("inventory: numeric id must be positive")
		}
		if owner, collision := r.byID[def.NumericID]; collision {
			return fmt.Errorf("inventory: numeric id %d already assigned to %q", def.NumericID, owner)
		}
		if def.NumericID > r.nextID {
			r.nextID = def.NumericID
		}
	}

	r.items[def.ID] = def
	r.byID[def.NumericID] = def.ID
	return nil
}

// Lookup returns the definition for id.
func (r *Registry) Lookup(id ItemID) (*ItemDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, id)
	}
	return def, nil
}

// LookupByNumericID resolves a definition through its numeric handle.
func (r *Registry) LookupByNumericID(id NumericID) (*ItemDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: numeric id %d", ErrUnknownItem, id)
	}
	return r.items[key], nil
}

// AmmoItem returns the ammo definition with the lowest numeric handle for t.
func (r *Registry) AmmoItem(t AmmoType) (*ItemDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var best *ItemDefinition
	for _, d := range r.items {
		if at, ok := d.AmmoType(); !ok || at != t {
			continue
		}
		if best == nil || d.NumericID < best.NumericID {
			best = d
		}
	}
	return best, best != nil
}

// Len reports how many definitions are registered.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Export returns every definition sorted by numeric handle, suitable for
// sending to clients.
func (r *Registry) Export() []*ItemDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.items) == 0 {
		return nil
	}
	out := make([]*ItemDefinition, 0, len(r.items))
	for _, d := range r.items {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].NumericID < out[j].NumericID
	})
	return out
}

// Validate checks a definition's invariants and returns every violation.
func (d *ItemDefinition) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("id must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if d.MaxStackSize < 1 {
		errs = append(errs, fmt.Errorf("max stack size must be >= 1, got %d", d.MaxStackSize))
	}
	if !d.Stackable && d.MaxStackSize != 1 {
		errs = append(errs, errors.New("non-stackable items must have max stack size 1"))
	}
	for i, p := range d.Defaults {
		if p.Descriptor == nil {
			errs = append(errs, fmt.Errorf("default parameter %d has no descriptor", i))
		}
	}
	switch b := d.Behavior.(type) {
	case Equippable:
		if b.Weapon.ClipCapacity <= 0 && !b.Weapon.InfiniteClipAmmo {
			errs = append(errs, errors.New("weapon clip capacity must be > 0"))
		}
		if b.Weapon.ReloadTime < 0 {
			errs = append(errs, errors.New("weapon reload time must not be negative"))
		}
		if _, ok := d.Defaults.Get(ParameterClipAmmoRemaining); !ok && !b.Weapon.InfiniteClipAmmo {
			errs = append(errs, fmt.Errorf("weapon needs a %s default", ParameterClipAmmoRemaining))
		}
	case Consumable:
		if len(b.Effects) == 0 {
			errs = append(errs, errors.New("consumable must have at least one effect"))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("inventory: invalid item %q: %w", d.ID, errors.Join(errs...))
	}
	return nil
}

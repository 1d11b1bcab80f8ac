package inventory

// Snapshot is a detached copy of every non-empty slot, keyed by region and
// then by slot index. Every real region has an entry, possibly empty.
type Snapshot map[Region]map[int]Stack

// Stack returns the stack at ref, or an empty stack when the slot is empty.
func (s Snapshot) Stack(ref SlotRef) Stack {
	if st, ok := s[ref.Region][ref.Index]; ok {
		return st
	}
	return EmptyStack(ref.Region)
}

// Change is delivered to every subscriber after a successful mutation.
type Change struct {
	// EquipmentAffected is set when the mutation touched a region other than
	// the general inventory, so active equipment must be re-derived.
	EquipmentAffected bool
	State             Snapshot
	Ammo              map[AmmoType]int
}

// Handler receives change notifications. It runs on the mutating caller's
// goroutine and must not call back into mutating engine methods.
type Handler func(Change)

type subscription struct {
	name    string
	handler Handler
}

// Subscribe registers handler under name. Handlers are called in registration
// order; subscribing an existing name replaces its handler without changing
// its position.
func (e *Engine) Subscribe(name string, handler Handler) {
	if handler == nil {
		return
	}
	for i := range e.subscribers {
		if e.subscribers[i].name == name {
			e.subscribers[i].handler = handler
			return
		}
	}
	e.subscribers = append(e.subscribers, subscription{name: name, handler: handler})
}

// Unsubscribe removes the handler registered under name.
func (e *Engine) Unsubscribe(name string) {
	for i := range e.subscribers {
		if e.subscribers[i].name == name {
			e.subscribers = append(e.subscribers[:i], e.subscribers[i+1:]...)
			return
		}
	}
}

// notify recomputes the ammo aggregate and publishes one change. Each
// subscriber gets its own snapshot so handlers cannot affect each other.
func (e *Engine) notify(equipmentAffected bool) {
	e.recomputeAmmo()
	e.log.WithField("equipment", equipmentAffected).Debug("Inventory update")

	subs := make([]subscription, len(e.subscribers))
	copy(subs, e.subscribers)
	for _, sub := range subs {
		sub.handler(Change{
			EquipmentAffected: equipmentAffected,
			State:             e.State(),
			Ammo:              e.AmmoTotals(),
		})
	}
}

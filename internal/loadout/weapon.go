package loadout

import (
	"fmt"

	"github.com/gravitas-games/armory/pkg/inventory"
)

// Weapon is the runtime view of an equipped weapon stack.
type Weapon struct {
	Item     *inventory.ItemDefinition
	Details  inventory.WeaponDetails
	Position int

	// ClipRemaining is the number of rounds in the clip.
	ClipRemaining int
	// RemainingAmmo tracks the reserve for weapons whose ammo is topped up by
	// reloads rather than drawn from the inventory.
	RemainingAmmo int
	Reloading     bool

	detached bool
}

// WeaponFromStack derives a weapon from the equipped stack at position. It
// reports false for empty or non-equippable stacks.
func WeaponFromStack(st inventory.Stack, position int) (*Weapon, bool) {
	details, ok := st.Item.Weapon()
	if !ok {
		return nil, false
	}
	clip := 0
	if p, ok := st.Parameters.Get(inventory.ParameterClipAmmoRemaining); ok {
		clip = int(p.Value)
	}
	return &Weapon{
		Item:          st.Item,
		Details:       details,
		Position:      position,
		ClipRemaining: clip,
	}, true
}

// EquippedPosition implements inventory.ClipHolder. A nil weapon reports -1,
// which no equipped slot matches.
func (w *Weapon) EquippedPosition() int {
	if w == nil {
		return -1
	}
	return w.Position
}

// ClipAmmo implements inventory.ClipHolder.
func (w *Weapon) ClipAmmo() int {
	if w == nil {
		return 0
	}
	return w.ClipRemaining
}

// AmmoType is the kind of ammunition the weapon draws.
func (w *Weapon) AmmoType() inventory.AmmoType { return w.Details.AmmoType }

// ClipFull reports whether a reload would add nothing.
func (w *Weapon) ClipFull() bool {
	return w.ClipRemaining >= w.Details.ClipCapacity
}

// NeededAmmo is how many rounds it takes to fill the clip.
func (w *Weapon) NeededAmmo() int {
	if n := w.Details.ClipCapacity - w.ClipRemaining; n > 0 {
		return n
	}
	return 0
}

// Detached reports whether the weapon has left the equipped region since it
// was derived. Detached weapons must not write back to the engine.
func (w *Weapon) Detached() bool { return w.detached }

// Fire spends one round from the clip.
func (w *Weapon) Fire() error {
	if w.Reloading {
		return fmt.Errorf("%w: %s", ErrReloading, w.Details.Name)
	}
	if w.Details.InfiniteClipAmmo {
		return nil
	}
	if w.ClipRemaining <= 0 {
		return fmt.Errorf("%w: %s", ErrClipEmpty, w.Details.Name)
	}
	w.ClipRemaining--
	return nil
}

// TopUp grows the reserve by percent of the weapon's ammo capacity, capped at
// the capacity.
func (w *Weapon) TopUp(percent int) {
	if percent <= 0 {
		return
	}
	// Round half up.
	increase := (w.Details.AmmoCapacity*percent + 50) / 100
	w.RemainingAmmo += increase
	if w.RemainingAmmo > w.Details.AmmoCapacity {
		w.RemainingAmmo = w.Details.AmmoCapacity
	}
}

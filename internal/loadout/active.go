package loadout

import (
	"fmt"
	"sort"

	"github.com/gravitas-games/armory/pkg/inventory"
	"github.com/sirupsen/logrus"
)

const activeWeaponSubscriber = "active-weapon"

// ActiveWeapon tracks the weapons in the equipped region and which one is in
// hand. It rebuilds its list whenever the engine reports an
// equipment-affecting change.
type ActiveWeapon struct {
	engine  *inventory.Engine
	log     logrus.FieldLogger
	weapons []*Weapon
	current int

	onChange func(*Weapon)
}

// NewActiveWeapon subscribes to engine and derives the initial weapon list.
func NewActiveWeapon(engine *inventory.Engine, log logrus.FieldLogger) *ActiveWeapon {
	a := &ActiveWeapon{
		engine:  engine,
		log:     log,
		current: -1,
	}
	a.rebuild(engine.State())
	engine.Subscribe(activeWeaponSubscriber, a.handle)
	return a
}

// Close stops listening to the engine.
func (a *ActiveWeapon) Close() {
	a.engine.Unsubscribe(activeWeaponSubscriber)
}

// OnChange registers a callback invoked with the weapon in hand (possibly nil)
// whenever the selection changes or the list is rebuilt.
func (a *ActiveWeapon) OnChange(fn func(*Weapon)) {
	a.onChange = fn
}

func (a *ActiveWeapon) handle(ch inventory.Change) {
	if !ch.EquipmentAffected {
		return
	}
	a.rebuild(ch.State)
}

// rebuild derives the weapon list from the equipped slots of state. Weapons
// whose slot still holds the same item with the same clip keep their runtime
// state; all others are detached.
func (a *ActiveWeapon) rebuild(state inventory.Snapshot) {
	var selected *Weapon
	if a.current >= 0 {
		selected = a.weapons[a.current]
	}

	equipped := state[inventory.RegionEquipped]
	positions := make([]int, 0, len(equipped))
	for pos := range equipped {
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	old := a.weapons
	kept := make(map[*Weapon]bool, len(old))
	weapons := make([]*Weapon, 0, len(positions))
	for _, pos := range positions {
		fresh, ok := WeaponFromStack(equipped[pos], pos)
		if !ok {
			continue
		}
		w := fresh
		for _, prev := range old {
			if prev.Position == pos && prev.Item == fresh.Item && prev.ClipRemaining == fresh.ClipRemaining && !kept[prev] {
				w = prev
				break
			}
		}
		kept[w] = true
		weapons = append(weapons, w)
	}
	for _, prev := range old {
		if !kept[prev] {
			prev.detached = true
		}
	}

	a.weapons = weapons
	a.current = -1
	for i, w := range weapons {
		if w == selected {
			a.current = i
			break
		}
	}
	if a.current < 0 && len(weapons) > 0 {
		a.current = 0
	}

	a.log.WithField("weapons", len(weapons)).Debug("Weapon list rebuilt")
	a.changed()
}

func (a *ActiveWeapon) changed() {
	if a.onChange != nil {
		a.onChange(a.Current())
	}
}

// Weapons returns the equipped weapons in slot order.
func (a *ActiveWeapon) Weapons() []*Weapon {
	out := make([]*Weapon, len(a.weapons))
	copy(out, a.weapons)
	return out
}

// Current returns the weapon in hand, or nil.
func (a *ActiveWeapon) Current() *Weapon {
	if a.current < 0 || a.current >= len(a.weapons) {
		return nil
	}
	return a.weapons[a.current]
}

// Select puts the weapon from the given equipped slot in hand.
func (a *ActiveWeapon) Select(position int) (*Weapon, error) {
	for i, w := range a.weapons {
		if w.Position == position {
			a.current = i
			a.changed()
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownEquipSlot, position)
}

// Next cycles to the following weapon in slot order.
func (a *ActiveWeapon) Next() *Weapon {
	if len(a.weapons) == 0 {
		return nil
	}
	a.current = (a.current + 1) % len(a.weapons)
	a.changed()
	return a.weapons[a.current]
}

// Fire spends a round from the weapon in hand and writes the clip back to its
// equipped stack.
func (a *ActiveWeapon) Fire() (*Weapon, error) {
	w := a.Current()
	if w == nil {
		return nil, ErrNoWeapon
	}
	if err := w.Fire(); err != nil {
		return w, err
	}
	if err := a.engine.UpdateClipAmmo(w); err != nil {
		return w, fmt.Errorf("failed to store clip ammo: %w", err)
	}
	return w, nil
}

// TotalAmmo is the reserve available to the weapon in hand: the inventory
// aggregate for its ammo type, or its own reserve for infinite-ammo weapons.
func (a *ActiveWeapon) TotalAmmo() int {
	w := a.Current()
	if w == nil {
		return 0
	}
	if w.Details.InfiniteAmmo {
		return w.RemainingAmmo
	}
	return a.engine.AmmoCount(w.AmmoType())
}

// Package loadout holds the per-actor collaborators that sit on top of the
// inventory engine: the weapon in hand, hit points, world pickups and the
// actions a player can perform on a stack.
package loadout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gravitas-games/armory/pkg/inventory"
	"github.com/sirupsen/logrus"
)

// AmmoCatalog resolves the item used to carry a given ammo type.
type AmmoCatalog interface {
	AmmoItem(t inventory.AmmoType) (*inventory.ItemDefinition, bool)
}

// Loadout bundles one actor's engine with the collaborators that drive it.
// Like the engine it is owned by a single goroutine.
type Loadout struct {
	Engine *inventory.Engine
	Active *ActiveWeapon
	Health *Health

	catalog AmmoCatalog
	log     logrus.FieldLogger
}

// New wires the collaborators to engine.
func New(engine *inventory.Engine, catalog AmmoCatalog, health *Health, log logrus.FieldLogger) *Loadout {
	return &Loadout{
		Engine:  engine,
		Active:  NewActiveWeapon(engine, log),
		Health:  health,
		catalog: catalog,
		log:     log,
	}
}

// Close detaches the collaborators from the engine.
func (l *Loadout) Close() {
	l.Active.Close()
}

// WorldItem is an item lying in the world that can be picked up.
type WorldItem struct {
	Item     *inventory.ItemDefinition
	Quantity int
	// State overrides the item defaults for the stacks it creates.
	State inventory.Parameters
}

// Pickup moves w into the actor's possession and returns the quantity that
// stays in the world. Zero means the world item should be destroyed.
func (l *Loadout) Pickup(w WorldItem) (int, error) {
	if w.Item == nil || w.Quantity <= 0 {
		return w.Quantity, fmt.Errorf("%w: pickup needs an item and a positive quantity", inventory.ErrInvalidArgument)
	}

	switch b := w.Item.Behavior.(type) {
	case inventory.Consumable:
		if b.OnPickup {
			return l.applyOnPickup(w, b)
		}
		return l.Engine.AddItem(inventory.RegionInventory, w.Item, w.Quantity, w.State)
	case inventory.Ammo, inventory.Equippable, inventory.Generic, nil:
		return l.Engine.AddItem(inventory.RegionInventory, w.Item, w.Quantity, w.State)
	default:
		return w.Quantity, fmt.Errorf("%w: unsupported behavior %T", inventory.ErrInvalidArgument, b)
	}
}

// applyOnPickup applies consumable effects directly instead of storing the
// item. Health recovers by the effect value once per pickup. Current-weapon
// ammo grants one round per picked-up unit and needs a weapon in hand; without
// one the item stays in the world.
func (l *Loadout) applyOnPickup(w WorldItem, c inventory.Consumable) (int, error) {
	if err := l.checkEffects(c.Effects); err != nil {
		if errors.Is(err, ErrNoWeapon) {
			return w.Quantity, nil
		}
		return w.Quantity, err
	}
	err := l.applyEffects(c.Effects, func(inventory.Effect) int { return w.Quantity })
	if err != nil {
		return w.Quantity, err
	}
	l.log.WithFields(logrus.Fields{
		"item":     w.Item.ID,
		"quantity": w.Quantity,
	}).Debug("Applied item on pickup")
	return 0, nil
}

// checkEffects fails if any effect could not be applied right now.
func (l *Loadout) checkEffects(effects []inventory.Effect) error {
	for _, e := range effects {
		if e.Kind != inventory.ParameterCurrentWeaponAmmoRecovery {
			continue
		}
		if _, _, err := l.currentAmmo(); err != nil {
			return err
		}
	}
	return nil
}

// applyEffects restores health by each health effect's value and adds
// rounds(e) of the current weapon's ammo for each ammo effect.
func (l *Loadout) applyEffects(effects []inventory.Effect, rounds func(inventory.Effect) int) error {
	for _, e := range effects {
		switch e.Kind {
		case inventory.ParameterHealthRecovery:
			l.Health.Add(int(e.Value))
		case inventory.ParameterCurrentWeaponAmmoRecovery:
			if err := l.addCurrentWeaponAmmo(rounds(e)); err != nil {
				return err
			}
		}
	}
	return nil
}

func effectValue(e inventory.Effect) int { return int(e.Value) }

// currentAmmo resolves the weapon in hand and the item that carries its ammo.
func (l *Loadout) currentAmmo() (*Weapon, *inventory.ItemDefinition, error) {
	w := l.Active.Current()
	if w == nil {
		return nil, nil, ErrNoWeapon
	}
	ammo, ok := l.catalog.AmmoItem(w.AmmoType())
	if !ok {
		return w, nil, fmt.Errorf("%w: %s", ErrNoAmmoForPickup, w.AmmoType())
	}
	return w, ammo, nil
}

func (l *Loadout) addCurrentWeaponAmmo(rounds int) error {
	w, ammo, err := l.currentAmmo()
	if err != nil {
		return err
	}
	if rounds <= 0 {
		return nil
	}
	left, err := l.Engine.AddItem(inventory.RegionInventory, ammo, rounds, nil)
	if err != nil {
		return err
	}
	if left > 0 {
		l.log.WithFields(logrus.Fields{
			"ammo":   w.AmmoType().String(),
			"unused": left,
		}).Warn("Inventory full, ammo recovery partially lost")
	}
	return nil
}

// Action is something a player can do with a stack.
type Action string

const (
	ActionEquip   Action = "equip"
	ActionUnequip Action = "unequip"
	ActionConsume Action = "consume"
	ActionDrop    Action = "drop"
)

// Actions lists what can be done with st. Only equippable items have actions
// while in the equipped region.
func Actions(st inventory.Stack) []Action {
	if st.IsEmpty() {
		return nil
	}
	switch st.Item.Behavior.(type) {
	case inventory.Equippable:
		if st.Region == inventory.RegionEquipped {
			return []Action{ActionUnequip}
		}
		return []Action{ActionEquip, ActionDrop}
	case inventory.Consumable:
		if st.Region == inventory.RegionInventory {
			return []Action{ActionConsume, ActionDrop}
		}
	case inventory.Ammo:
		if st.Region == inventory.RegionInventory {
			return []Action{ActionDrop}
		}
	}
	return nil
}

func allowed(st inventory.Stack, a Action) bool {
	for _, candidate := range Actions(st) {
		if candidate == a {
			return true
		}
	}
	return false
}

// Perform runs action against the stack at ref. Drop returns the removed
// items so the caller can place them in the world; other actions return nil.
func (l *Loadout) Perform(ref inventory.SlotRef, action Action) (*WorldItem, error) {
	st, err := l.Engine.ItemAt(ref)
	if err != nil {
		return nil, err
	}
	if st.IsEmpty() {
		return nil, fmt.Errorf("%w: %s slot %d", inventory.ErrEmptySlot, ref.Region, ref.Index)
	}
	if !allowed(st, action) {
		return nil, fmt.Errorf("%w: %s on %s", ErrActionNotAllowed, action, st.Item.ID)
	}

	switch action {
	case ActionEquip:
		return nil, l.Engine.SwapItems(ref, inventory.At(inventory.RegionEquipped, l.equipTarget()))
	case ActionUnequip:
		idx, ok := firstEmpty(l.Engine.State(), inventory.RegionInventory, l.Engine.Sizes().Inventory)
		if !ok {
			return nil, fmt.Errorf("%w: inventory is full", ErrNoFreeSlot)
		}
		return nil, l.Engine.SwapItems(ref, inventory.At(inventory.RegionInventory, idx))
	case ActionConsume:
		c := st.Item.Behavior.(inventory.Consumable)
		if err := l.checkEffects(c.Effects); err != nil {
			return nil, err
		}
		if _, err := l.Engine.RemoveItem(ref.Index, 1); err != nil {
			return nil, err
		}
		return nil, l.applyEffects(c.Effects, effectValue)
	case ActionDrop:
		if _, err := l.Engine.RemoveItem(ref.Index, st.Quantity); err != nil {
			return nil, err
		}
		return &WorldItem{Item: st.Item, Quantity: st.Quantity, State: st.Parameters}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrActionNotAllowed, action)
	}
}

// equipTarget is the first empty equipped slot, or slot 0 when all are taken.
func (l *Loadout) equipTarget() int {
	if idx, ok := firstEmpty(l.Engine.State(), inventory.RegionEquipped, l.Engine.Sizes().Equipped); ok {
		return idx
	}
	return 0
}

func firstEmpty(state inventory.Snapshot, r inventory.Region, size int) (int, bool) {
	for i := 0; i < size; i++ {
		if _, taken := state[r][i]; !taken {
			return i, true
		}
	}
	return 0, false
}

// Describe renders the item description followed by one line per parameter
// in the form "name : current / default".
func Describe(st inventory.Stack) string {
	if st.IsEmpty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(st.Item.Description)
	sb.WriteString("\n")
	for _, p := range st.Parameters {
		def := "-"
		if i := st.Item.Defaults.IndexOf(p); i >= 0 {
			def = formatValue(st.Item.Defaults[i].Value)
		}
		fmt.Fprintf(&sb, "%s : %s / %s\n", p.Name(), formatValue(p.Value), def)
	}
	return sb.String()
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

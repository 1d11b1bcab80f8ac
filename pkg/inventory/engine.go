package inventory

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Sizes fixes the capacity of each region at construction time.
type Sizes struct {
	Inventory int `json:"inventory" yaml:"inventory_size"`
	Equipped  int `json:"equipped" yaml:"equipped_size"`
}

// DefaultSizes matches the original layout: ten inventory slots and two
// weapon slots.
func DefaultSizes() Sizes {
	return Sizes{Inventory: 10, Equipped: 2}
}

// ClipHolder is anything that knows which equipped slot it came from and how
// many rounds remain in its clip.
type ClipHolder interface {
	EquippedPosition() int
	ClipAmmo() int
}

// Option configures engine construction.
type Option func(*Engine)

// WithLogger attaches a logger. Without it the engine logs nowhere.
func WithLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// Engine owns every storage region of one actor. It is not safe for
// concurrent use: a single owner drives all calls serially.
type Engine struct {
	sizes     Sizes
	inventory []Stack
	equipped  []Stack
	ammo      map[AmmoType]int

	subscribers []subscription
	log         logrus.FieldLogger
}

// New creates an engine with every slot empty and a zeroed ammo aggregate.
func New(sizes Sizes, opts ...Option) (*Engine, error) {
	if sizes.Inventory < 0 || sizes.Equipped < 0 {
		return nil, fmt.Errorf("%w: negative region size %+v", ErrInvalidArgument, sizes)
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &Engine{
		sizes: sizes,
		ammo:  make(map[AmmoType]int, len(AmmoTypes())),
		log:   discard,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.inventory = emptyRegion(RegionInventory, sizes.Inventory)
	e.equipped = emptyRegion(RegionEquipped, sizes.Equipped)
	for _, t := range AmmoTypes() {
		e.ammo[t] = 0
	}
	return e, nil
}

func emptyRegion(r Region, n int) []Stack {
	out := make([]Stack, n)
	for i := range out {
		out[i] = EmptyStack(r)
	}
	return out
}

// Sizes returns the configured region capacities.
func (e *Engine) Sizes() Sizes {
	return e.sizes
}

// region returns the live slot slice for r. Index bounds are the caller's
// concern.
func (e *Engine) region(r Region) ([]Stack, bool) {
	switch r {
	case RegionInventory:
		return e.inventory, true
	case RegionEquipped:
		return e.equipped, true
	default:
		return nil, false
	}
}

func (e *Engine) slot(ref SlotRef) ([]Stack, error) {
	slots, ok := e.region(ref.Region)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNoRegion, ref.Region)
	}
	if ref.Index < 0 || ref.Index >= len(slots) {
		return nil, fmt.Errorf("%w: index %d out of range for %s (size %d)", ErrInvalidArgument, ref.Index, ref.Region, len(slots))
	}
	return slots, nil
}

// AddItem places quantity units of item into region and returns how many
// could not be placed. Non-stackable items take one empty slot per unit.
// Stackable items first top up existing stacks of the same item in index
// order, then open new stacks in empty slots. Explicit state, when non-nil,
// seeds every newly created stack instead of the item defaults.
//
// One notification is published per successful call, even if nothing fit.
func (e *Engine) AddItem(region Region, item *ItemDefinition, quantity int, state Parameters) (int, error) {
	if item == nil {
		return quantity, fmt.Errorf("%w: nil item", ErrInvalidArgument)
	}
	if quantity <= 0 {
		return quantity, fmt.Errorf("%w: quantity must be positive, got %d", ErrInvalidArgument, quantity)
	}
	if item.MaxStackSize < 1 {
		return quantity, fmt.Errorf("%w: item %s has max stack size %d", ErrInvalidArgument, item.ID, item.MaxStackSize)
	}
	slots, ok := e.region(region)
	if !ok {
		return quantity, fmt.Errorf("%w: %d", ErrNoRegion, region)
	}

	var remaining int
	if item.Stackable {
		remaining = addStackable(slots, region, item, quantity, state)
	} else {
		remaining = addSingles(slots, region, item, quantity, state)
	}

	e.notify(region != RegionInventory)
	return remaining, nil
}

// addSingles puts one unit into each empty slot until quantity or space runs
// out.
func addSingles(slots []Stack, region Region, item *ItemDefinition, quantity int, state Parameters) int {
	for i := 0; i < len(slots) && quantity > 0; i++ {
		if !slots[i].IsEmpty() {
			continue
		}
		slots[i] = newStack(region, item, 1, state)
		quantity--
	}
	return quantity
}

func addStackable(slots []Stack, region Region, item *ItemDefinition, quantity int, state Parameters) int {
	limit := item.stackLimit()

	for i := 0; i < len(slots) && quantity > 0; i++ {
		if slots[i].IsEmpty() || slots[i].Item.ID != item.ID {
			continue
		}
		take := slots[i].Headroom()
		if take == 0 {
			continue
		}
		if take > quantity {
			take = quantity
		}
		slots[i] = slots[i].withQuantity(slots[i].Quantity + take)
		quantity -= take
	}

	for i := 0; i < len(slots) && quantity > 0; i++ {
		if !slots[i].IsEmpty() {
			continue
		}
		n := quantity
		if n > limit {
			n = limit
		}
		slots[i] = newStack(region, item, n, state)
		quantity -= n
	}
	return quantity
}

// RemoveItem takes amount units from the inventory slot at index. It returns
// the shortfall: zero when the slot held at least amount, otherwise the part
// that could not be removed. A slot brought to zero becomes empty.
func (e *Engine) RemoveItem(index, amount int) (int, error) {
	shortfall, err := e.removeAt(index, amount)
	if err != nil {
		return 0, err
	}
	e.notify(false)
	return shortfall, nil
}

func (e *Engine) removeAt(index, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	slots, err := e.slot(At(RegionInventory, index))
	if err != nil {
		return 0, err
	}
	current := slots[index]
	if current.IsEmpty() {
		return 0, fmt.Errorf("%w: inventory slot %d", ErrEmptySlot, index)
	}

	left := current.Quantity - amount
	if left <= 0 {
		slots[index] = EmptyStack(RegionInventory)
		return -left, nil
	}
	slots[index] = current.withQuantity(left)
	return 0, nil
}

// SwapItems exchanges the content of two slots. Region tags stay with their
// slots, which is how items cross between the inventory and equipped regions.
// Swapping two empty slots is a legal no-op that still notifies.
func (e *Engine) SwapItems(src, dst SlotRef) error {
	srcSlots, err := e.slot(src)
	if err != nil {
		return err
	}
	dstSlots, err := e.slot(dst)
	if err != nil {
		return err
	}

	moving := srcSlots[src.Index]
	srcSlots[src.Index] = srcSlots[src.Index].takeContent(dstSlots[dst.Index])
	dstSlots[dst.Index] = dstSlots[dst.Index].takeContent(moving)

	e.notify(src.Region != RegionInventory || dst.Region != RegionInventory)
	return nil
}

// ItemAt returns a detached copy of the stack at ref.
func (e *Engine) ItemAt(ref SlotRef) (Stack, error) {
	slots, err := e.slot(ref)
	if err != nil {
		return EmptyStack(ref.Region), err
	}
	return slots[ref.Index].Clone(), nil
}

// State returns a snapshot of every non-empty slot.
func (e *Engine) State() Snapshot {
	out := make(Snapshot, len(Regions()))
	for _, r := range Regions() {
		slots, _ := e.region(r)
		byIndex := make(map[int]Stack)
		for i, st := range slots {
			if st.IsEmpty() {
				continue
			}
			byIndex[i] = st.Clone()
		}
		out[r] = byIndex
	}
	return out
}

// AmmoCount returns the aggregate for t as of the last notification.
func (e *Engine) AmmoCount(t AmmoType) int {
	return e.ammo[t]
}

// AmmoTotals returns a copy of the whole aggregate.
func (e *Engine) AmmoTotals() map[AmmoType]int {
	out := make(map[AmmoType]int, len(e.ammo))
	for t, n := range e.ammo {
		out[t] = n
	}
	return out
}

// recomputeAmmo rebuilds the aggregate from the inventory region. Equipped
// slots never count.
func (e *Engine) recomputeAmmo() {
	for _, t := range AmmoTypes() {
		e.ammo[t] = 0
	}
	for _, st := range e.inventory {
		if t, ok := st.Item.AmmoType(); ok {
			e.ammo[t] += st.Quantity
		}
	}
}

// lastAmmoSlot returns the highest inventory index holding ammo of type t.
func (e *Engine) lastAmmoSlot(t AmmoType) int {
	for i := len(e.inventory) - 1; i >= 0; i-- {
		if at, ok := e.inventory[i].Item.AmmoType(); ok && at == t {
			return i
		}
	}
	return -1
}

// RemoveAmmo consumes amount rounds of type t, always draining the
// highest-index slot first. If the aggregate holds less than amount the call
// is logged and rejected without touching any slot.
func (e *Engine) RemoveAmmo(t AmmoType, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	if have := e.ammo[t]; have < amount {
		e.log.WithFields(logrus.Fields{
			"ammo":      t.String(),
			"requested": amount,
			"available": have,
		}).Warn("Failed to remove ammo from inventory")
		return fmt.Errorf("%w: %s have %d, need %d", ErrInsufficientAmmo, t, have, amount)
	}

	e.ammo[t] -= amount
	for amount > 0 {
		idx := e.lastAmmoSlot(t)
		if idx < 0 {
			// Only reachable if the aggregate was stale; recompute corrects it.
			break
		}
		shortfall, err := e.removeAt(idx, amount)
		if err != nil {
			return err
		}
		amount = shortfall
	}

	e.notify(false)
	return nil
}

// UpdateClipAmmo writes w's clip count into the ClipAmmoRemaining parameter of
// the equipped stack it came from. Stacks without that parameter, and empty
// slots, are left alone. A holder whose position is outside the equipped
// region, such as a nil weapon pointer, is rejected with ErrInvalidArgument.
func (e *Engine) UpdateClipAmmo(w ClipHolder) error {
	if w == nil {
		return fmt.Errorf("%w: nil weapon", ErrInvalidArgument)
	}
	pos := w.EquippedPosition()
	if _, err := e.slot(At(RegionEquipped, pos)); err != nil {
		return err
	}
	st := e.equipped[pos]
	if st.IsEmpty() {
		return nil
	}
	if !st.Parameters.Set(ParameterClipAmmoRemaining, float64(w.ClipAmmo())) {
		return nil
	}
	e.notify(false)
	return nil
}

package inventory

import (
	"errors"
	"math/rand"
	"testing"
)

type testCatalog struct {
	reg    *Registry
	sword  *ItemDefinition
	potion *ItemDefinition
	ammoX  *ItemDefinition
	ammoY  *ItemDefinition
	pistol *ItemDefinition
}

func newTestCatalog(t *testing.T) testCatalog {
	t.Helper()
	reg := NewRegistry()
	c := testCatalog{
		reg:    reg,
		sword:  &ItemDefinition{ID: "sword", Name: "Sword", Behavior: Generic{}},
		potion: &ItemDefinition{ID: "potion", Name: "Potion", Stackable: true, MaxStackSize: 5, Defaults: Parameters{reg.Value(ParameterHealthRecovery, 10)}, Behavior: Consumable{Effects: []Effect{{Kind: ParameterHealthRecovery, Value: 10}}}},
		ammoX:  &ItemDefinition{ID: "ammo-x", Name: "Rifle Rounds", Stackable: true, MaxStackSize: 20, Behavior: Ammo{Type: AmmoRifle}},
		ammoY:  &ItemDefinition{ID: "ammo-y", Name: "Pistol Rounds", Stackable: true, MaxStackSize: 10, Behavior: Ammo{Type: AmmoPistol}},
		pistol: &ItemDefinition{ID: "pistol", Name: "Pistol", Defaults: Parameters{reg.Value(ParameterClipAmmoRemaining, 12)}, Behavior: Equippable{Weapon: WeaponDetails{Name: "Pistol", AmmoType: AmmoPistol, ClipCapacity: 12}}},
	}
	for _, d := range []*ItemDefinition{c.sword, c.potion, c.ammoX, c.ammoY, c.pistol} {
		if err := reg.Register(d); err != nil {
			t.Fatalf("register %s: %v", d.ID, err)
		}
	}
	return c
}

func newTestEngine(t *testing.T) (*Engine, *[]Change) {
	t.Helper()
	e, err := New(DefaultSizes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var changes []Change
	e.Subscribe("recorder", func(c Change) { changes = append(changes, c) })
	return e, &changes
}

func mustAdd(t *testing.T, e *Engine, r Region, item *ItemDefinition, qty int) int {
	t.Helper()
	rem, err := e.AddItem(r, item, qty, nil)
	if err != nil {
		t.Fatalf("AddItem(%s, %s, %d): %v", r, item.ID, qty, err)
	}
	return rem
}

func TestNewEngineStartsEmpty(t *testing.T) {
	e, err := New(Sizes{Inventory: 4, Equipped: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	state := e.State()
	if len(state[RegionInventory]) != 0 || len(state[RegionEquipped]) != 0 {
		t.Fatalf("expected empty state, got %+v", state)
	}
	for _, at := range AmmoTypes() {
		if n, ok := e.AmmoTotals()[at]; !ok || n != 0 {
			t.Fatalf("expected zeroed aggregate entry for %s, got %d (present=%v)", at, n, ok)
		}
	}
	st, err := e.ItemAt(At(RegionEquipped, 1))
	if err != nil || !st.IsEmpty() || st.Region != RegionEquipped {
		t.Fatalf("expected empty equipped slot, got %+v err=%v", st, err)
	}
	if _, err := New(Sizes{Inventory: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for negative size, got %v", err)
	}
}

func TestScenarioStackableAmmoSplitsAcrossSlots(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)

	if rem := mustAdd(t, e, RegionInventory, c.ammoX, 25); rem != 0 {
		t.Fatalf("expected remainder 0, got %d", rem)
	}
	s0, _ := e.ItemAt(At(RegionInventory, 0))
	s1, _ := e.ItemAt(At(RegionInventory, 1))
	if s0.Quantity != 20 || s1.Quantity != 5 {
		t.Fatalf("expected slots 20/5, got %d/%d", s0.Quantity, s1.Quantity)
	}
	if got := e.AmmoCount(AmmoRifle); got != 25 {
		t.Fatalf("expected rifle ammo 25, got %d", got)
	}
	if len(*changes) != 1 {
		t.Fatalf("expected one notification, got %d", len(*changes))
	}
	if (*changes)[0].Ammo[AmmoRifle] != 25 || (*changes)[0].EquipmentAffected {
		t.Fatalf("unexpected change payload: %+v", (*changes)[0])
	}
}

func TestScenarioNonStackableFillsLastFreeSlot(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)

	// 9 full slots of potions, slot 9 left free.
	if rem := mustAdd(t, e, RegionInventory, c.potion, 45); rem != 0 {
		t.Fatalf("seeding potions left %d", rem)
	}
	if rem := mustAdd(t, e, RegionInventory, c.sword, 2); rem != 1 {
		t.Fatalf("expected remainder 1, got %d", rem)
	}
	st, _ := e.ItemAt(At(RegionInventory, 9))
	if st.ItemID() != "sword" || st.Quantity != 1 {
		t.Fatalf("expected sword in slot 9, got %+v", st)
	}
}

func TestScenarioRemoveAmmoFromSingleSlot(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)

	mustAdd(t, e, RegionInventory, c.sword, 3) // occupies 0..2
	mustAdd(t, e, RegionInventory, c.ammoY, 5) // lands in slot 3
	*changes = nil

	if err := e.RemoveAmmo(AmmoPistol, 3); err != nil {
		t.Fatalf("RemoveAmmo: %v", err)
	}
	st, _ := e.ItemAt(At(RegionInventory, 3))
	if st.Quantity != 2 {
		t.Fatalf("expected slot 3 quantity 2, got %d", st.Quantity)
	}
	if got := e.AmmoCount(AmmoPistol); got != 2 {
		t.Fatalf("expected pistol ammo 2, got %d", got)
	}
	if len(*changes) != 1 {
		t.Fatalf("expected exactly one notification, got %d", len(*changes))
	}
}

func TestScenarioSwapIntoEquippedSlot(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)

	mustAdd(t, e, RegionInventory, c.sword, 2) // slots 0,1
	mustAdd(t, e, RegionInventory, c.potion, 3) // slot 2
	mustAdd(t, e, RegionEquipped, c.sword, 1)
	*changes = nil

	if err := e.SwapItems(At(RegionInventory, 2), At(RegionEquipped, 0)); err != nil {
		t.Fatalf("SwapItems: %v", err)
	}
	inv, _ := e.ItemAt(At(RegionInventory, 2))
	eq, _ := e.ItemAt(At(RegionEquipped, 0))
	if inv.ItemID() != "sword" || inv.Region != RegionInventory {
		t.Fatalf("expected sword in inventory slot 2, got %+v", inv)
	}
	if eq.ItemID() != "potion" || eq.Quantity != 3 || eq.Region != RegionEquipped {
		t.Fatalf("expected potion x3 in equipped slot 0, got %+v", eq)
	}
	if len(*changes) != 1 || !(*changes)[0].EquipmentAffected {
		t.Fatalf("expected one equipment-affecting notification, got %+v", *changes)
	}
}

func TestSwapWithinInventoryIsNotEquipmentAffecting(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.sword, 1)
	*changes = nil

	if err := e.SwapItems(At(RegionInventory, 0), At(RegionInventory, 5)); err != nil {
		t.Fatalf("SwapItems: %v", err)
	}
	if (*changes)[0].EquipmentAffected {
		t.Fatalf("inventory reshuffle flagged as equipment-affecting")
	}
	if err := e.SwapItems(At(RegionInventory, 7), At(RegionInventory, 8)); err != nil {
		t.Fatalf("swapping two empties should succeed: %v", err)
	}
	if len(*changes) != 2 {
		t.Fatalf("expected a notification for the empty swap too, got %d", len(*changes))
	}
}

func TestSwapTwiceRestoresContent(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.potion, 4)
	mustAdd(t, e, RegionEquipped, c.pistol, 1)
	before := e.State()

	a, b := At(RegionInventory, 0), At(RegionEquipped, 0)
	for i := 0; i < 2; i++ {
		if err := e.SwapItems(a, b); err != nil {
			t.Fatalf("SwapItems: %v", err)
		}
	}
	after := e.State()
	for _, ref := range []SlotRef{a, b} {
		x, y := before.Stack(ref), after.Stack(ref)
		if x.ItemID() != y.ItemID() || x.Quantity != y.Quantity || x.Region != y.Region || len(x.Parameters) != len(y.Parameters) {
			t.Fatalf("slot %+v changed after double swap: %+v -> %+v", ref, x, y)
		}
	}
}

func TestSwapRejectsBadAddresses(t *testing.T) {
	e, changes := newTestEngine(t)
	if err := e.SwapItems(At(RegionNone, 0), At(RegionInventory, 0)); !errors.Is(err, ErrNoRegion) {
		t.Fatalf("expected ErrNoRegion, got %v", err)
	}
	if err := e.SwapItems(At(RegionInventory, 0), At(RegionEquipped, 2)); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if len(*changes) != 0 {
		t.Fatalf("failed swaps must not notify")
	}
}

// The original checked fullness of the general inventory even when adding to
// another region. Placement here is bounded by the target region only.
func TestNonStackableAddStopsWhenTargetRegionIsFull(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)

	if rem := mustAdd(t, e, RegionEquipped, c.pistol, 5); rem != 3 {
		t.Fatalf("expected remainder 3 after filling 2 equipped slots, got %d", rem)
	}
	// A full inventory must not block adds to the equipped region.
	e2, _ := newTestEngine(t)
	mustAdd(t, e2, RegionInventory, c.sword, 10)
	if rem := mustAdd(t, e2, RegionEquipped, c.pistol, 1); rem != 0 {
		t.Fatalf("expected pistol to fit in equipped region, remainder %d", rem)
	}
	// And a full equipped region must not block adds to the inventory.
	e3, _ := newTestEngine(t)
	mustAdd(t, e3, RegionEquipped, c.pistol, 2)
	if rem := mustAdd(t, e3, RegionInventory, c.sword, 4); rem != 0 {
		t.Fatalf("expected swords to fit in inventory, remainder %d", rem)
	}
}

func TestAddItemValidation(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)

	cases := []struct {
		name   string
		region Region
		item   *ItemDefinition
		qty    int
		want   error
	}{
		{"zero quantity", RegionInventory, c.sword, 0, ErrInvalidArgument},
		{"negative quantity", RegionInventory, c.sword, -3, ErrInvalidArgument},
		{"nil item", RegionInventory, nil, 1, ErrInvalidArgument},
		{"bad stack size", RegionInventory, &ItemDefinition{ID: "broken", Stackable: true}, 1, ErrInvalidArgument},
		{"no region", RegionNone, c.sword, 1, ErrNoRegion},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := e.AddItem(tc.region, tc.item, tc.qty, nil); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if len(*changes) != 0 {
		t.Fatalf("rejected adds must not notify, got %d", len(*changes))
	}
}

func TestAddItemNotifiesOnceEvenWhenNothingFits(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.sword, 10)
	*changes = nil

	if rem := mustAdd(t, e, RegionInventory, c.potion, 3); rem != 3 {
		t.Fatalf("expected nothing placed, remainder %d", rem)
	}
	if len(*changes) != 1 {
		t.Fatalf("expected one notification, got %d", len(*changes))
	}
}

func TestStackableTopsUpBeforeOpeningSlots(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)

	mustAdd(t, e, RegionInventory, c.potion, 3)  // slot 0: 3
	mustAdd(t, e, RegionInventory, c.sword, 1)   // slot 1
	mustAdd(t, e, RegionInventory, c.potion, 4)  // slot 0 -> 5, slot 2: 2
	s0, _ := e.ItemAt(At(RegionInventory, 0))
	s2, _ := e.ItemAt(At(RegionInventory, 2))
	if s0.Quantity != 5 || s2.Quantity != 2 || s2.ItemID() != "potion" {
		t.Fatalf("unexpected layout: slot0=%+v slot2=%+v", s0, s2)
	}
}

func TestExplicitStateSeedsNewStacks(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)

	state := Parameters{c.reg.Value(ParameterClipAmmoRemaining, 3)}
	if _, err := e.AddItem(RegionEquipped, c.pistol, 1, state); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	state[0].Value = 99
	st, _ := e.ItemAt(At(RegionEquipped, 0))
	if v, _ := st.Parameters.Get(ParameterClipAmmoRemaining); v.Value != 3 {
		t.Fatalf("expected private copy with 3 rounds, got %v", v.Value)
	}
}

func TestStacksNeverShareParameters(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)
	mustAdd(t, e, RegionEquipped, c.pistol, 2)

	e.equipped[0].Parameters.Set(ParameterClipAmmoRemaining, 1)
	if v, _ := e.equipped[1].Parameters.Get(ParameterClipAmmoRemaining); v.Value != 12 {
		t.Fatalf("sibling stack changed to %v", v.Value)
	}
	if v, _ := c.pistol.Parameter(ParameterClipAmmoRemaining); v.Value != 12 {
		t.Fatalf("item defaults changed to %v", v.Value)
	}

	snap := e.State()
	snap[RegionEquipped][1].Parameters.Set(ParameterClipAmmoRemaining, 0)
	if v, _ := e.equipped[1].Parameters.Get(ParameterClipAmmoRemaining); v.Value != 12 {
		t.Fatalf("snapshot write leaked into engine: %v", v.Value)
	}
}

func TestRemoveItem(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.potion, 4)
	*changes = nil

	short, err := e.RemoveItem(0, 1)
	if err != nil || short != 0 {
		t.Fatalf("RemoveItem(0,1) = %d, %v", short, err)
	}
	st, _ := e.ItemAt(At(RegionInventory, 0))
	if st.Quantity != 3 || len(st.Parameters) != 1 {
		t.Fatalf("expected 3 potions with parameters kept, got %+v", st)
	}

	short, err = e.RemoveItem(0, 5)
	if err != nil || short != 2 {
		t.Fatalf("expected shortfall 2, got %d, %v", short, err)
	}
	st, _ = e.ItemAt(At(RegionInventory, 0))
	if !st.IsEmpty() || st.Quantity != 0 || len(st.Parameters) != 0 {
		t.Fatalf("expected canonical empty slot, got %+v", st)
	}
	if len(*changes) != 2 {
		t.Fatalf("expected two notifications, got %d", len(*changes))
	}

	if _, err := e.RemoveItem(0, 1); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("expected ErrEmptySlot, got %v", err)
	}
	if _, err := e.RemoveItem(10, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for index 10, got %v", err)
	}
	if _, err := e.RemoveItem(0, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for zero amount, got %v", err)
	}
	if len(*changes) != 2 {
		t.Fatalf("failed removals must not notify")
	}
}

func TestRemoveAmmoDrainsHighestSlotFirst(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.ammoY, 10) // slot 0
	mustAdd(t, e, RegionInventory, c.sword, 1)  // slot 1
	mustAdd(t, e, RegionInventory, c.ammoY, 7)  // slot 2
	*changes = nil

	if err := e.RemoveAmmo(AmmoPistol, 9); err != nil {
		t.Fatalf("RemoveAmmo: %v", err)
	}
	s0, _ := e.ItemAt(At(RegionInventory, 0))
	s2, _ := e.ItemAt(At(RegionInventory, 2))
	if s0.Quantity != 8 || !s2.IsEmpty() {
		t.Fatalf("expected slot0=8 and slot2 empty, got %d and %+v", s0.Quantity, s2)
	}
	if e.AmmoCount(AmmoPistol) != 8 {
		t.Fatalf("expected aggregate 8, got %d", e.AmmoCount(AmmoPistol))
	}
	if len(*changes) != 1 {
		t.Fatalf("expected one batched notification, got %d", len(*changes))
	}
}

func TestRemoveAmmoGuard(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionInventory, c.ammoY, 4)
	*changes = nil
	before := e.State()

	if err := e.RemoveAmmo(AmmoPistol, 5); !errors.Is(err, ErrInsufficientAmmo) {
		t.Fatalf("expected ErrInsufficientAmmo, got %v", err)
	}
	if err := e.RemoveAmmo(AmmoPistol, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if e.AmmoCount(AmmoPistol) != 4 {
		t.Fatalf("aggregate changed to %d", e.AmmoCount(AmmoPistol))
	}
	if got := e.State().Stack(At(RegionInventory, 0)); got.Quantity != before.Stack(At(RegionInventory, 0)).Quantity {
		t.Fatalf("slot changed after rejected removal: %+v", got)
	}
	if len(*changes) != 0 {
		t.Fatalf("rejected removal must not notify")
	}
}

type fakeWeapon struct {
	pos, clip int
}

func (w fakeWeapon) EquippedPosition() int { return w.pos }
func (w fakeWeapon) ClipAmmo() int         { return w.clip }

func TestUpdateClipAmmo(t *testing.T) {
	c := newTestCatalog(t)
	e, changes := newTestEngine(t)
	mustAdd(t, e, RegionEquipped, c.pistol, 1)
	mustAdd(t, e, RegionEquipped, c.sword, 1) // no clip parameter
	*changes = nil

	if err := e.UpdateClipAmmo(fakeWeapon{pos: 0, clip: 4}); err != nil {
		t.Fatalf("UpdateClipAmmo: %v", err)
	}
	st, _ := e.ItemAt(At(RegionEquipped, 0))
	if v, _ := st.Parameters.Get(ParameterClipAmmoRemaining); v.Value != 4 {
		t.Fatalf("expected clip 4, got %v", v.Value)
	}
	if len(*changes) != 1 || (*changes)[0].EquipmentAffected {
		t.Fatalf("expected one non-equipment notification, got %+v", *changes)
	}

	if err := e.UpdateClipAmmo(fakeWeapon{pos: 1, clip: 4}); err != nil {
		t.Fatalf("missing parameter should be a silent no-op, got %v", err)
	}
	if len(*changes) != 1 {
		t.Fatalf("no-op update must not notify")
	}
	if err := e.UpdateClipAmmo(fakeWeapon{pos: 2}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument for position 2, got %v", err)
	}
}

func TestSubscribersRunInRegistrationOrder(t *testing.T) {
	c := newTestCatalog(t)
	e, err := New(DefaultSizes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var order []string
	e.Subscribe("a", func(Change) { order = append(order, "a") })
	e.Subscribe("b", func(Change) { order = append(order, "b") })
	e.Subscribe("a", func(Change) { order = append(order, "a2") })
	mustAdd(t, e, RegionInventory, c.sword, 1)
	if len(order) != 2 || order[0] != "a2" || order[1] != "b" {
		t.Fatalf("unexpected delivery order %v", order)
	}

	e.Unsubscribe("a")
	order = nil
	mustAdd(t, e, RegionInventory, c.sword, 1)
	if len(order) != 1 || order[0] != "b" {
		t.Fatalf("expected only b after unsubscribe, got %v", order)
	}
}

func TestSnapshotsAreIndependentPerSubscriber(t *testing.T) {
	c := newTestCatalog(t)
	e, err := New(DefaultSizes())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var second Change
	e.Subscribe("vandal", func(ch Change) { delete(ch.State[RegionInventory], 0) })
	e.Subscribe("reader", func(ch Change) { second = ch })
	mustAdd(t, e, RegionInventory, c.sword, 1)
	if second.State.Stack(At(RegionInventory, 0)).IsEmpty() {
		t.Fatalf("second subscriber saw the first subscriber's mutation")
	}
}

func TestNonStackableRemainderProperty(t *testing.T) {
	c := newTestCatalog(t)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		e, _ := newTestEngine(t)
		prefill := rng.Intn(11)
		if prefill > 0 {
			mustAdd(t, e, RegionInventory, c.potion, prefill*5)
		}
		free := 10 - prefill
		qty := 1 + rng.Intn(15)
		rem := mustAdd(t, e, RegionInventory, c.sword, qty)
		want := qty - free
		if want < 0 {
			want = 0
		}
		if rem != want {
			t.Fatalf("iteration %d: prefill=%d qty=%d expected remainder %d, got %d", i, prefill, qty, want, rem)
		}
	}
}

func TestStackableCapacityProperty(t *testing.T) {
	c := newTestCatalog(t)
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		e, _ := newTestEngine(t)
		for j := rng.Intn(4); j > 0; j-- {
			mustAdd(t, e, RegionInventory, c.sword, 1)
		}
		if n := rng.Intn(30); n > 0 {
			mustAdd(t, e, RegionInventory, c.ammoX, n)
		}

		capacity := 0
		for _, st := range e.inventory {
			switch {
			case st.IsEmpty():
				capacity += c.ammoX.MaxStackSize
			case st.Item == c.ammoX:
				capacity += st.Headroom()
			}
		}
		qty := 1 + rng.Intn(250)
		rem := mustAdd(t, e, RegionInventory, c.ammoX, qty)
		if (rem == 0) != (capacity >= qty) {
			t.Fatalf("iteration %d: capacity=%d qty=%d remainder=%d", i, capacity, qty, rem)
		}
		for idx, st := range e.inventory {
			if st.Quantity > c.ammoX.MaxStackSize {
				t.Fatalf("slot %d exceeds max stack: %d", idx, st.Quantity)
			}
		}
	}
}

func TestAmmoAggregateMatchesSlots(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)
	rng := rand.New(rand.NewSource(3))

	for i := 0; i < 500; i++ {
		item := c.ammoX
		if rng.Intn(2) == 0 {
			item = c.ammoY
		}
		switch rng.Intn(3) {
		case 0:
			mustAdd(t, e, RegionInventory, item, 1+rng.Intn(25))
		case 1:
			idx := rng.Intn(10)
			if !e.inventory[idx].IsEmpty() {
				if _, err := e.RemoveItem(idx, 1+rng.Intn(15)); err != nil {
					t.Fatalf("RemoveItem: %v", err)
				}
			}
		case 2:
			at, _ := item.AmmoType()
			_ = e.RemoveAmmo(at, 1+rng.Intn(20))
		}

		for _, at := range AmmoTypes() {
			sum := 0
			for _, st := range e.inventory {
				if t2, ok := st.Item.AmmoType(); ok && t2 == at {
					sum += st.Quantity
				}
			}
			if got := e.AmmoCount(at); got != sum || got < 0 {
				t.Fatalf("step %d: aggregate %s=%d, slots sum to %d", i, at, got, sum)
			}
		}
		for idx, st := range e.inventory {
			if st.IsEmpty() != (st.Quantity == 0) {
				t.Fatalf("step %d: slot %d breaks emptiness invariant: %+v", i, idx, st)
			}
		}
	}
}

func TestEquippedAmmoDoesNotCount(t *testing.T) {
	c := newTestCatalog(t)
	e, _ := newTestEngine(t)
	mustAdd(t, e, RegionEquipped, c.ammoY, 5)
	if e.AmmoCount(AmmoPistol) != 0 {
		t.Fatalf("equipped ammo leaked into aggregate: %d", e.AmmoCount(AmmoPistol))
	}
}

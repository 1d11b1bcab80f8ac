// Package inventory provides the slot-based storage engine for an actor's
// items: a general inventory region and an equipped-weapon region, stack
// placement and merging, swaps between regions, per-stack parameter state and
// a derived ammo count per ammo type.
package inventory

import "time"

// ItemID identifies an item definition. It is stable for the lifetime of the
// process and is the only thing compared when deciding whether two stacks hold
// the same item.
type ItemID string

// NumericID is a compact handle assigned by the Registry, starting at 1.
type NumericID int64

// Region selects one of the fixed storage regions owned by an Engine.
type Region int

const (
	// RegionNone is a placeholder selector; lookups on it always fail.
	RegionNone Region = iota - 1
	// RegionInventory is the general inventory.
	RegionInventory
	// RegionEquipped holds equipped weapons.
	RegionEquipped
)

// Regions lists every real region in index order.
func Regions() []Region {
	return []Region{RegionInventory, RegionEquipped}
}

// String returns a human-readable representation of the region.
func (r Region) String() string {
	switch r {
	case RegionInventory:
		return "inventory"
	case RegionEquipped:
		return "equipped"
	default:
		return "none"
	}
}

// Valid reports whether r names a real region.
func (r Region) Valid() bool {
	return r == RegionInventory || r == RegionEquipped
}

// ParseRegion resolves a region by its String name.
func ParseRegion(s string) (Region, bool) {
	for _, r := range Regions() {
		if r.String() == s {
			return r, true
		}
	}
	return RegionNone, false
}

// SlotRef addresses a single slot: a region plus an index inside it.
type SlotRef struct {
	Region Region `json:"region"`
	Index  int    `json:"index"`
}

// At is shorthand for building a SlotRef.
func At(region Region, index int) SlotRef {
	return SlotRef{Region: region, Index: index}
}

// AmmoType enumerates the kinds of ammunition tracked by the ammo aggregate.
type AmmoType int

const (
	AmmoPistol AmmoType = iota
	AmmoRifle
	AmmoShotgun
	AmmoRocket
)

// AmmoTypes lists every ammo type; the aggregate always carries all of them.
func AmmoTypes() []AmmoType {
	return []AmmoType{AmmoPistol, AmmoRifle, AmmoShotgun, AmmoRocket}
}

// String returns the catalog name of the ammo type.
func (t AmmoType) String() string {
	switch t {
	case AmmoPistol:
		return "pistol"
	case AmmoRifle:
		return "rifle"
	case AmmoShotgun:
		return "shotgun"
	case AmmoRocket:
		return "rocket"
	default:
		return "unknown"
	}
}

// ParseAmmoType resolves a catalog name into an AmmoType.
func ParseAmmoType(s string) (AmmoType, bool) {
	for _, t := range AmmoTypes() {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Category is the closed set of item kinds. Behavior values carry the data
// each kind needs.
type Category int

const (
	CategoryGeneric Category = iota
	CategoryEquippable
	CategoryConsumable
	CategoryAmmo
)

// String returns the catalog name of the category.
func (c Category) String() string {
	switch c {
	case CategoryGeneric:
		return "generic"
	case CategoryEquippable:
		return "equippable"
	case CategoryConsumable:
		return "consumable"
	case CategoryAmmo:
		return "ammo"
	default:
		return "unknown"
	}
}

// Behavior is the tagged variant attached to every item definition. The set
// of implementations is closed: Generic, Equippable, Consumable and Ammo.
type Behavior interface {
	Category() Category
	isBehavior()
}

// Generic items only occupy space.
type Generic struct{}

// WeaponDetails describes the runtime stats of an equippable weapon.
type WeaponDetails struct {
	Name             string        `json:"name" yaml:"name"`
	AmmoType         AmmoType      `json:"ammoType" yaml:"-"`
	ClipCapacity     int           `json:"clipCapacity" yaml:"clip_capacity"`
	AmmoCapacity     int           `json:"ammoCapacity" yaml:"ammo_capacity"`
	ReloadTime       time.Duration `json:"reloadTime" yaml:"reload_time"`
	InfiniteAmmo     bool          `json:"infiniteAmmo" yaml:"infinite_ammo"`
	InfiniteClipAmmo bool          `json:"infiniteClipAmmo" yaml:"infinite_clip_ammo"`
}

// Equippable items can be moved into the equipped region.
type Equippable struct {
	Weapon WeaponDetails
}

// Effect is a single stat change applied when a consumable is used.
type Effect struct {
	Kind  ParameterKind
	Value float64
}

// Consumable items apply effects, either when used from the inventory or
// immediately on pickup.
type Consumable struct {
	Effects  []Effect
	OnPickup bool
}

// Ammo items feed the ammo aggregate.
type Ammo struct {
	Type AmmoType
}

func (Generic) Category() Category    { return CategoryGeneric }
func (Equippable) Category() Category { return CategoryEquippable }
func (Consumable) Category() Category { return CategoryConsumable }
func (Ammo) Category() Category       { return CategoryAmmo }

func (Generic) isBehavior()    {}
func (Equippable) isBehavior() {}
func (Consumable) isBehavior() {}
func (Ammo) isBehavior()       {}

// ItemDefinition is an immutable catalog entry. Engines and stacks only ever
// hold pointers to it; nothing in this package writes to a definition after
// it has been registered.
type ItemDefinition struct {
	ID           ItemID
	NumericID    NumericID
	Name         string
	Description  string
	Image        string
	Stackable    bool
	MaxStackSize int
	// Defaults is copied into every new stack that is not given explicit state.
	Defaults Parameters
	Behavior Behavior
}

// Category returns the definition's category, treating a nil behavior as
// generic.
func (d *ItemDefinition) Category() Category {
	if d == nil || d.Behavior == nil {
		return CategoryGeneric
	}
	return d.Behavior.Category()
}

// AmmoType reports the ammo type of an ammo item.
func (d *ItemDefinition) AmmoType() (AmmoType, bool) {
	if d == nil {
		return 0, false
	}
	if a, ok := d.Behavior.(Ammo); ok {
		return a.Type, true
	}
	return 0, false
}

// Weapon reports the weapon details of an equippable item.
func (d *ItemDefinition) Weapon() (WeaponDetails, bool) {
	if d == nil {
		return WeaponDetails{}, false
	}
	if e, ok := d.Behavior.(Equippable); ok {
		return e.Weapon, true
	}
	return WeaponDetails{}, false
}

// Parameter returns the default value for kind, if the item tracks it.
func (d *ItemDefinition) Parameter(kind ParameterKind) (ParameterValue, bool) {
	if d == nil {
		return ParameterValue{}, false
	}
	return d.Defaults.Get(kind)
}

// stackLimit is the per-slot quantity cap for this definition.
func (d *ItemDefinition) stackLimit() int {
	if !d.Stackable {
		return 1
	}
	return d.MaxStackSize
}

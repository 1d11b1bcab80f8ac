package inventory

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Parameters []catalogParameter `yaml:"parameters"`
	Items      []catalogItem      `yaml:"items"`
}

type catalogParameter struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name"`
}

type catalogValue struct {
	Kind  string  `yaml:"kind"`
	Value float64 `yaml:"value"`
}

type catalogWeapon struct {
	Name             string        `yaml:"name"`
	AmmoType         string        `yaml:"ammo_type"`
	ClipCapacity     int           `yaml:"clip_capacity"`
	AmmoCapacity     int           `yaml:"ammo_capacity"`
	ReloadTime       time.Duration `yaml:"reload_time"`
	InfiniteAmmo     bool          `yaml:"infinite_ammo"`
	InfiniteClipAmmo bool          `yaml:"infinite_clip_ammo"`
}

type catalogItem struct {
	ID           string         `yaml:"id"`
	NumericID    int64          `yaml:"numeric_id"`
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description"`
	Image        string         `yaml:"image"`
	Category     string         `yaml:"category"`
	Stackable    bool           `yaml:"stackable"`
	MaxStackSize int            `yaml:"max_stack_size"`
	Parameters   []catalogValue `yaml:"parameters"`
	Weapon       *catalogWeapon `yaml:"weapon"`
	AmmoType     string         `yaml:"ammo_type"`
	Effects      []catalogValue `yaml:"effects"`
	OnPickup     bool           `yaml:"on_pickup"`
}

// LoadCatalog reads an item catalog from a YAML file.
func LoadCatalog(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: cannot read file %q: %w", path, err)
	}
	reg, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("LoadCatalog: %q: %w", path, err)
	}
	return reg, nil
}

// ParseCatalog builds a registry from YAML catalog bytes. Every item is
// checked and all problems are reported together.
func ParseCatalog(data []byte) (*Registry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("cannot parse catalog: %w", err)
	}

	reg := NewRegistry()
	var errs []error
	for _, p := range file.Parameters {
		kind, ok := ParseParameterKind(p.Kind)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown parameter kind %q", p.Kind))
			continue
		}
		name := p.Name
		if name == "" {
			name = kind.String()
		}
		reg.Descriptor(kind, name)
	}

	for _, ci := range file.Items {
		def, err := ci.definition(reg)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := reg.Register(def); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return reg, nil
}

func (ci catalogItem) definition(reg *Registry) (*ItemDefinition, error) {
	def := &ItemDefinition{
		ID:           ItemID(ci.ID),
		NumericID:    NumericID(ci.NumericID),
		Name:         ci.Name,
		Description:  ci.Description,
		Image:        ci.Image,
		Stackable:    ci.Stackable,
		MaxStackSize: ci.MaxStackSize,
	}
	if !def.Stackable && def.MaxStackSize == 0 {
		def.MaxStackSize = 1
	}

	params, err := catalogValues(reg, ci.ID, ci.Parameters)
	if err != nil {
		return nil, err
	}
	def.Defaults = params

	switch ci.Category {
	case "", CategoryGeneric.String():
		def.Behavior = Generic{}
	case CategoryAmmo.String():
		t, ok := ParseAmmoType(ci.AmmoType)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown ammo type %q", ci.ID, ci.AmmoType)
		}
		def.Behavior = Ammo{Type: t}
	case CategoryEquippable.String():
		if ci.Weapon == nil {
			return nil, fmt.Errorf("item %q: equippable item has no weapon block", ci.ID)
		}
		t, ok := ParseAmmoType(ci.Weapon.AmmoType)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown weapon ammo type %q", ci.ID, ci.Weapon.AmmoType)
		}
		w := WeaponDetails{
			Name:             ci.Weapon.Name,
			AmmoType:         t,
			ClipCapacity:     ci.Weapon.ClipCapacity,
			AmmoCapacity:     ci.Weapon.AmmoCapacity,
			ReloadTime:       ci.Weapon.ReloadTime,
			InfiniteAmmo:     ci.Weapon.InfiniteAmmo,
			InfiniteClipAmmo: ci.Weapon.InfiniteClipAmmo,
		}
		if w.Name == "" {
			w.Name = ci.Name
		}
		def.Behavior = Equippable{Weapon: w}
	case CategoryConsumable.String():
		effects := make([]Effect, 0, len(ci.Effects))
		for _, e := range ci.Effects {
			kind, ok := ParseParameterKind(e.Kind)
			if !ok {
				return nil, fmt.Errorf("item %q: unknown effect kind %q", ci.ID, e.Kind)
			}
			effects = append(effects, Effect{Kind: kind, Value: e.Value})
		}
		def.Behavior = Consumable{Effects: effects, OnPickup: ci.OnPickup}
	default:
		return nil, fmt.Errorf("item %q: unknown category %q", ci.ID, ci.Category)
	}
	return def, nil
}

func catalogValues(reg *Registry, id string, values []catalogValue) (Parameters, error) {
	out := make(Parameters, 0, len(values))
	for _, v := range values {
		kind, ok := ParseParameterKind(v.Kind)
		if !ok {
			return nil, fmt.Errorf("item %q: unknown parameter kind %q", id, v.Kind)
		}
		out = append(out, reg.Value(kind, v.Value))
	}
	return out, nil
}

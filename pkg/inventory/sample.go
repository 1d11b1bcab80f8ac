package inventory

import "time"

// SampleRegistry returns a small starter catalog: three weapons, their ammo,
// two consumables and a generic keepsake. Numeric handles are fixed so clients
// can cache them.
func SampleRegistry() *Registry {
	reg := NewRegistry()
	clip := func(n float64) Parameters { return Parameters{reg.Value(ParameterClipAmmoRemaining, n)} }

	defs := []*ItemDefinition{
		{
			ID: "pistol", NumericID: 1, Name: "Pistol", Image: "weapons/pistol.png",
			Description: "Reliable sidearm.",
			Defaults:    clip(12),
			Behavior: Equippable{Weapon: WeaponDetails{
				Name: "Pistol", AmmoType: AmmoPistol, ClipCapacity: 12, AmmoCapacity: 120,
				ReloadTime: 1200 * time.Millisecond,
			}},
		},
		{
			ID: "rifle", NumericID: 2, Name: "Assault Rifle", Image: "weapons/rifle.png",
			Description: "Automatic rifle with a large clip.",
			Defaults:    clip(30),
			Behavior: Equippable{Weapon: WeaponDetails{
				Name: "Assault Rifle", AmmoType: AmmoRifle, ClipCapacity: 30, AmmoCapacity: 240,
				ReloadTime: 2 * time.Second,
			}},
		},
		{
			ID: "shotgun", NumericID: 3, Name: "Shotgun", Image: "weapons/shotgun.png",
			Description: "Short range, wide spread.",
			Defaults:    clip(6),
			Behavior: Equippable{Weapon: WeaponDetails{
				Name: "Shotgun", AmmoType: AmmoShotgun, ClipCapacity: 6, AmmoCapacity: 48,
				ReloadTime: 2500 * time.Millisecond,
			}},
		},
		{
			ID: "pistol-ammo", NumericID: 4, Name: "Pistol Rounds", Image: "ammo/pistol.png",
			Stackable: true, MaxStackSize: 50,
			Behavior: Ammo{Type: AmmoPistol},
		},
		{
			ID: "rifle-ammo", NumericID: 5, Name: "Rifle Rounds", Image: "ammo/rifle.png",
			Stackable: true, MaxStackSize: 60,
			Behavior: Ammo{Type: AmmoRifle},
		},
		{
			ID: "shotgun-shells", NumericID: 6, Name: "Shotgun Shells", Image: "ammo/shotgun.png",
			Stackable: true, MaxStackSize: 24,
			Behavior: Ammo{Type: AmmoShotgun},
		},
		{
			ID: "medkit", NumericID: 7, Name: "Medkit", Image: "consumables/medkit.png",
			Description: "Restores health.",
			Stackable:   true, MaxStackSize: 5,
			Defaults:    Parameters{reg.Value(ParameterHealthRecovery, 25)},
			Behavior:    Consumable{Effects: []Effect{{Kind: ParameterHealthRecovery, Value: 25}}},
		},
		{
			ID: "ammo-pack", NumericID: 8, Name: "Ammo Pack", Image: "consumables/ammo-pack.png",
			Description: "Rounds for whatever you are holding.",
			Stackable:   true, MaxStackSize: 50,
			Behavior: Consumable{
				Effects:  []Effect{{Kind: ParameterCurrentWeaponAmmoRecovery, Value: 20}},
				OnPickup: true,
			},
		},
		{
			ID: "dog-tag", NumericID: 9, Name: "Dog Tag", Image: "misc/dog-tag.png",
			Stackable: true, MaxStackSize: 99,
			Behavior: Generic{},
		},
	}
	for _, d := range defs {
		_ = reg.Register(d) // static data, covered by tests
	}
	return reg
}

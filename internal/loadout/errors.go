package loadout

import "errors"

var (
	ErrNoWeapon         = errors.New("loadout: no weapon equipped")
	ErrClipEmpty        = errors.New("loadout: clip is empty")
	ErrReloading        = errors.New("loadout: weapon is reloading")
	ErrActionNotAllowed = errors.New("loadout: action not allowed for item")
	ErrNoFreeSlot       = errors.New("loadout: no free slot")
	ErrNoAmmoForPickup  = errors.New("loadout: no ammo item for current weapon")
	ErrUnknownEquipSlot = errors.New("loadout: no weapon at equipped position")
)

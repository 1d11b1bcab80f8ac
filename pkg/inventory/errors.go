package inventory

import "errors"

var (
	// ErrNoRegion is returned for RegionNone or any unknown selector.
	ErrNoRegion = errors.New("inventory: no such region")
	// ErrInvalidArgument covers caller contract violations such as a
	// non-positive quantity or an out-of-range slot index.
	ErrInvalidArgument = errors.New("inventory: invalid argument")
	// ErrEmptySlot is returned when removing from a slot that holds nothing.
	ErrEmptySlot = errors.New("inventory: slot is empty")
	// ErrInsufficientAmmo is returned when more ammo is requested than the
	// aggregate holds. No state is changed.
	ErrInsufficientAmmo = errors.New("inventory: insufficient ammo")
	// ErrUnknownItem is returned by registry lookups.
	ErrUnknownItem = errors.New("inventory: unknown item")
)

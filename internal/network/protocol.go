package network

import (
	"encoding/json"
	"sort"

	"github.com/gravitas-games/armory/pkg/inventory"
)

// Message types - Client → Server
const (
	MsgTypeState        = "state"
	MsgTypeSwap         = "swap"
	MsgTypeAction       = "action"
	MsgTypeDescribe     = "describe"
	MsgTypePickup       = "pickup"
	MsgTypeFire         = "fire"
	MsgTypeReload       = "reload"
	MsgTypeSelectWeapon = "select_weapon"
	MsgTypePing         = "ping"
)

// Message types - Server → Client
const (
	MsgTypeWelcome        = "welcome"
	MsgTypeInventoryState = "inventory_state"
	MsgTypeWeaponState    = "weapon_state"
	MsgTypeHealth         = "health"
	MsgTypeReloaded       = "reloaded"
	MsgTypeDescription    = "description"
	MsgTypeDropped        = "dropped"
	MsgTypeError          = "error"
	MsgTypePong           = "pong"
)

// ClientMessage represents any message from client to server
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage represents any message from server to client
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// --- Client Message Payloads ---

// SlotPayload addresses one slot. Region is "inventory" or "equipped".
type SlotPayload struct {
	Region string `json:"region"`
	Index  int    `json:"index"`
}

// SwapPayload exchanges the contents of two slots
type SwapPayload struct {
	From SlotPayload `json:"from"`
	To   SlotPayload `json:"to"`
}

// ActionPayload runs an item action ("equip", "unequip", "consume", "drop")
type ActionPayload struct {
	Slot   SlotPayload `json:"slot"`
	Action string      `json:"action"`
}

// DescribePayload asks for the text description of a slot
type DescribePayload struct {
	Slot SlotPayload `json:"slot"`
}

// PickupPayload grants a catalog item as if picked up from the world
type PickupPayload struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// SelectWeaponPayload puts the weapon in an equipped slot in hand
type SelectWeaponPayload struct {
	Position int `json:"position"`
}

// --- Server Message Payloads ---

// WelcomePayload is sent to client after successful connection
type WelcomePayload struct {
	PlayerID      string `json:"player_id"`
	Username      string `json:"username"`
	SessionID     string `json:"session_id"`
	InventorySize int    `json:"inventory_size"`
	EquippedSize  int    `json:"equipped_size"`
}

// ParameterState is one parameter of a stack
type ParameterState struct {
	Kind  string  `json:"kind"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// SlotState is one non-empty slot
type SlotState struct {
	Region     string           `json:"region"`
	Index      int              `json:"index"`
	Item       string           `json:"item"`
	NumericID  int              `json:"numeric_id"`
	Quantity   int              `json:"quantity"`
	Actions    []string         `json:"actions"`
	Parameters []ParameterState `json:"parameters"`
}

// InventoryStatePayload is sent after every inventory change
type InventoryStatePayload struct {
	Equipment bool           `json:"equipment"`
	Slots     []SlotState    `json:"slots"`
	Ammo      map[string]int `json:"ammo"`
}

// WeaponState describes one equipped weapon
type WeaponState struct {
	Position      int    `json:"position"`
	Item          string `json:"item"`
	Name          string `json:"name"`
	AmmoType      string `json:"ammo_type"`
	ClipRemaining int    `json:"clip_remaining"`
	ClipCapacity  int    `json:"clip_capacity"`
	Reloading     bool   `json:"reloading"`
}

// WeaponStatePayload lists equipped weapons and the one in hand
type WeaponStatePayload struct {
	Weapons   []WeaponState `json:"weapons"`
	Current   int           `json:"current"` // equipped position, -1 when empty-handed
	TotalAmmo int           `json:"total_ammo"`
}

// HealthPayload reports hit points
type HealthPayload struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// ReloadedPayload reports the outcome of a timed reload
type ReloadedPayload struct {
	JobID              string `json:"job_id"`
	Status             string `json:"status"` // "started", "completed", "failed", "cancelled"
	Position           int    `json:"position"`
	ClipRemaining      int    `json:"clip_remaining"`
	TotalRemainingAmmo int    `json:"total_remaining_ammo"`
	Reason             string `json:"reason,omitempty"`
}

// DescriptionPayload carries a rendered item description
type DescriptionPayload struct {
	Slot        SlotPayload `json:"slot"`
	Description string      `json:"description"`
}

// DroppedPayload reports items removed into the world
type DroppedPayload struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// ErrorPayload contains error information
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// EncodeState flattens a snapshot for the wire. Slots are ordered by region
// then index, and every ammo type is listed, including empty ones. actions
// may be nil.
func EncodeState(state inventory.Snapshot, ammo map[inventory.AmmoType]int, equipment bool, actions func(inventory.Stack) []string) InventoryStatePayload {
	out := InventoryStatePayload{
		Equipment: equipment,
		Slots:     []SlotState{},
		Ammo:      make(map[string]int, len(inventory.AmmoTypes())),
	}
	for _, region := range inventory.Regions() {
		slots := state[region]
		indexes := make([]int, 0, len(slots))
		for i := range slots {
			indexes = append(indexes, i)
		}
		sort.Ints(indexes)
		for _, i := range indexes {
			out.Slots = append(out.Slots, encodeSlot(slots[i], i, actions))
		}
	}
	for _, t := range inventory.AmmoTypes() {
		out.Ammo[t.String()] = ammo[t]
	}
	return out
}

func encodeSlot(st inventory.Stack, index int, actions func(inventory.Stack) []string) SlotState {
	s := SlotState{
		Region:     st.Region.String(),
		Index:      index,
		Item:       string(st.Item.ID),
		NumericID:  int(st.Item.NumericID),
		Quantity:   st.Quantity,
		Actions:    []string{},
		Parameters: make([]ParameterState, 0, len(st.Parameters)),
	}
	if actions != nil {
		if a := actions(st); a != nil {
			s.Actions = a
		}
	}
	for _, p := range st.Parameters {
		ps := ParameterState{Name: p.Name(), Value: p.Value}
		if p.Descriptor != nil {
			ps.Kind = p.Descriptor.Kind.String()
		}
		s.Parameters = append(s.Parameters, ps)
	}
	return s
}

// DecodeSlot converts a wire slot address.
func DecodeSlot(p SlotPayload) (inventory.SlotRef, bool) {
	r, ok := inventory.ParseRegion(p.Region)
	if !ok {
		return inventory.SlotRef{}, false
	}
	return inventory.At(r, p.Index), true
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gravitas-games/armory/internal/config"
	"github.com/gravitas-games/armory/internal/loadout"
	"github.com/gravitas-games/armory/internal/network"
	"github.com/gravitas-games/armory/internal/reload"
	"github.com/gravitas-games/armory/pkg/inventory"
	"github.com/gravitas-games/armory/pkg/models"
	"github.com/sirupsen/logrus"
)

const sessionSubscriber = "session"

// Sender delivers server messages to a client.
type Sender interface {
	SendMessage(msg *network.ServerMessage)
}

// Session is one actor: a player's inventory engine with its loadout and
// reload scheduler. All of its state is owned by the goroutine running Run;
// other goroutines hand it work through Submit.
type Session struct {
	ID     string
	Player *models.Player

	cfg     *config.Config
	catalog *inventory.Registry
	out     Sender
	log     logrus.FieldLogger

	engine *inventory.Engine
	lo     *loadout.Loadout
	reload *reload.Scheduler

	inbox chan *network.ClientMessage
	now   func() time.Time
}

// NewSession builds the actor's engine, grants the configured starter items
// and starts publishing state changes to out.
func NewSession(id string, player *models.Player, cfg *config.Config, catalog *inventory.Registry, out Sender, log logrus.FieldLogger) (*Session, error) {
	log = log.WithFields(logrus.Fields{
		"session": id,
		"player":  player.ID,
	})

	engine, err := inventory.New(cfg.Inventory.Sizes(), inventory.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory: %w", err)
	}

	s := &Session{
		ID:      id,
		Player:  player,
		cfg:     cfg,
		catalog: catalog,
		out:     out,
		log:     log,
		engine:  engine,
		lo:      loadout.New(engine, catalog, loadout.NewHealth(cfg.Session.MaxHealth), log),
		inbox:   make(chan *network.ClientMessage, 64),
		now:     time.Now,
	}
	s.seed(cfg.Inventory.StarterItems)

	bus := reload.NewSimpleEventBus()
	bus.Subscribe(sessionSubscriber, s.onReload)
	s.reload = reload.NewScheduler(engine, bus, log)

	engine.Subscribe(sessionSubscriber, s.onChange)
	s.lo.Active.OnChange(func(*loadout.Weapon) { s.sendWeapons() })

	return s, nil
}

// seed grants starter items. Items that are unknown or do not fit are logged
// and skipped.
func (s *Session) seed(items []config.StarterItem) {
	for _, it := range items {
		entry := s.log.WithField("item", it.Item)
		def, err := s.catalog.Lookup(inventory.ItemID(it.Item))
		if err != nil {
			entry.WithError(err).Warn("Failed to grant starter item")
			continue
		}
		region, ok := inventory.ParseRegion(it.Region)
		if !ok {
			region = inventory.RegionInventory
		}
		left, err := s.engine.AddItem(region, def, it.Quantity, nil)
		if err != nil {
			entry.WithError(err).Warn("Failed to grant starter item")
			continue
		}
		if left > 0 {
			entry.WithField("left", left).Warn("Starter item did not fit")
		}
	}
}

// Submit queues a client message for the actor. It reports false when the
// inbox is full or ctx is done.
func (s *Session) Submit(ctx context.Context, msg *network.ClientMessage) bool {
	select {
	case s.inbox <- msg:
		return true
	case <-ctx.Done():
		return false
	default:
		return false
	}
}

// Run processes messages and drives reload timers until ctx is done.
func (s *Session) Run(ctx context.Context) {
	rate := s.cfg.Server.TickRate
	if rate <= 0 {
		rate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	defer s.close()

	s.sendState(false)
	s.sendWeapons()
	s.sendHealth()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-s.inbox:
			s.handleMessage(msg)
		case <-ticker.C:
			s.reload.Update(s.now())
		}
	}
}

func (s *Session) close() {
	s.engine.Unsubscribe(sessionSubscriber)
	s.lo.Close()
	s.log.Debug("Session closed")
}

// handleMessage routes messages to appropriate handlers
func (s *Session) handleMessage(msg *network.ClientMessage) {
	s.log.WithField("type", msg.Type).Debug("Received message")

	var err error
	switch msg.Type {
	case network.MsgTypeState:
		s.sendState(false)
		s.sendWeapons()
		s.sendHealth()
	case network.MsgTypeSwap:
		err = s.handleSwap(msg.Payload)
	case network.MsgTypeAction:
		err = s.handleAction(msg.Payload)
	case network.MsgTypeDescribe:
		err = s.handleDescribe(msg.Payload)
	case network.MsgTypePickup:
		err = s.handlePickup(msg.Payload)
	case network.MsgTypeFire:
		_, err = s.lo.Active.Fire()
		s.sendWeapons()
	case network.MsgTypeReload:
		_, err = s.reload.Start(s.lo.Active.Current(), s.cfg.Reload.TopUpPercent, s.now())
	case network.MsgTypeSelectWeapon:
		err = s.handleSelect(msg.Payload)
	case network.MsgTypePing:
		s.send(network.MsgTypePong, map[string]interface{}{"timestamp": s.now().Unix()})
	default:
		err = fmt.Errorf("%w: %q", errUnknownMessage, msg.Type)
	}

	if err != nil {
		s.log.WithError(err).WithField("type", msg.Type).Debug("Request rejected")
		s.sendError(err)
	}
}

var (
	errUnknownMessage = errors.New("unknown message type")
	errBadPayload     = errors.New("invalid payload")
)

func decode(payload json.RawMessage, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %v", errBadPayload, err)
	}
	return nil
}

func slotRef(p network.SlotPayload) (inventory.SlotRef, error) {
	ref, ok := network.DecodeSlot(p)
	if !ok {
		return ref, fmt.Errorf("%w: region %q", inventory.ErrNoRegion, p.Region)
	}
	return ref, nil
}

func (s *Session) handleSwap(payload json.RawMessage) error {
	var req network.SwapPayload
	if err := decode(payload, &req); err != nil {
		return err
	}
	from, err := slotRef(req.From)
	if err != nil {
		return err
	}
	to, err := slotRef(req.To)
	if err != nil {
		return err
	}
	if err := s.engine.SwapItems(from, to); err != nil {
		return err
	}
	s.reload.CancelDetached(s.now())
	return nil
}

func (s *Session) handleAction(payload json.RawMessage) error {
	var req network.ActionPayload
	if err := decode(payload, &req); err != nil {
		return err
	}
	ref, err := slotRef(req.Slot)
	if err != nil {
		return err
	}
	dropped, err := s.lo.Perform(ref, loadout.Action(req.Action))
	if err != nil {
		return err
	}
	s.reload.CancelDetached(s.now())
	if dropped != nil {
		s.send(network.MsgTypeDropped, network.DroppedPayload{
			Item:     string(dropped.Item.ID),
			Quantity: dropped.Quantity,
		})
	}
	s.sendHealth()
	return nil
}

func (s *Session) handleDescribe(payload json.RawMessage) error {
	var req network.DescribePayload
	if err := decode(payload, &req); err != nil {
		return err
	}
	ref, err := slotRef(req.Slot)
	if err != nil {
		return err
	}
	st, err := s.engine.ItemAt(ref)
	if err != nil {
		return err
	}
	if st.IsEmpty() {
		return fmt.Errorf("%w: %s slot %d", inventory.ErrEmptySlot, ref.Region, ref.Index)
	}
	s.send(network.MsgTypeDescription, network.DescriptionPayload{
		Slot:        req.Slot,
		Description: loadout.Describe(st),
	})
	return nil
}

func (s *Session) handlePickup(payload json.RawMessage) error {
	var req network.PickupPayload
	if err := decode(payload, &req); err != nil {
		return err
	}
	def, err := s.catalog.Lookup(inventory.ItemID(req.Item))
	if err != nil {
		return err
	}
	left, err := s.lo.Pickup(loadout.WorldItem{Item: def, Quantity: req.Quantity})
	if err != nil {
		return err
	}
	if left > 0 {
		// Whatever did not fit stays in the world.
		s.send(network.MsgTypeDropped, network.DroppedPayload{Item: req.Item, Quantity: left})
	}
	s.sendHealth()
	return nil
}

func (s *Session) handleSelect(payload json.RawMessage) error {
	var req network.SelectWeaponPayload
	if err := decode(payload, &req); err != nil {
		return err
	}
	_, err := s.lo.Active.Select(req.Position)
	return err
}

// onChange publishes every inventory change to the client.
func (s *Session) onChange(ch inventory.Change) {
	s.send(network.MsgTypeInventoryState, network.EncodeState(ch.State, ch.Ammo, ch.EquipmentAffected, actionNames))
}

func (s *Session) onReload(e reload.Event) {
	w := e.Job.Weapon
	s.send(network.MsgTypeReloaded, network.ReloadedPayload{
		JobID:              string(e.Job.ID),
		Status:             reloadStatus(e.Type),
		Position:           w.Position,
		ClipRemaining:      w.ClipRemaining,
		TotalRemainingAmmo: e.TotalRemainingAmmo,
		Reason:             e.Reason,
	})
	if e.Type != reload.EventReloadStarted {
		s.sendWeapons()
	}
}

func reloadStatus(t reload.EventType) string {
	switch t {
	case reload.EventReloadStarted:
		return "started"
	case reload.EventReloadCompleted:
		return "completed"
	case reload.EventReloadFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

func actionNames(st inventory.Stack) []string {
	actions := loadout.Actions(st)
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}

func (s *Session) sendState(equipment bool) {
	s.send(network.MsgTypeInventoryState, network.EncodeState(s.engine.State(), s.engine.AmmoTotals(), equipment, actionNames))
}

func (s *Session) sendWeapons() {
	payload := network.WeaponStatePayload{
		Weapons:   []network.WeaponState{},
		Current:   -1,
		TotalAmmo: s.lo.Active.TotalAmmo(),
	}
	for _, w := range s.lo.Active.Weapons() {
		payload.Weapons = append(payload.Weapons, network.WeaponState{
			Position:      w.Position,
			Item:          string(w.Item.ID),
			Name:          w.Details.Name,
			AmmoType:      w.AmmoType().String(),
			ClipRemaining: w.ClipRemaining,
			ClipCapacity:  w.Details.ClipCapacity,
			Reloading:     w.Reloading,
		})
	}
	if cur := s.lo.Active.Current(); cur != nil {
		payload.Current = cur.Position
	}
	s.send(network.MsgTypeWeaponState, payload)
}

func (s *Session) sendHealth() {
	s.send(network.MsgTypeHealth, network.HealthPayload{
		Current: s.lo.Health.Current(),
		Max:     s.lo.Health.Max(),
	})
}

func (s *Session) send(msgType string, payload interface{}) {
	s.out.SendMessage(&network.ServerMessage{Type: msgType, Payload: payload})
}

// errorCodes maps domain errors to the codes clients switch on.
var errorCodes = []struct {
	err  error
	code string
}{
	{inventory.ErrNoRegion, "invalid_slot"},
	{inventory.ErrInvalidArgument, "invalid_argument"},
	{inventory.ErrEmptySlot, "empty_slot"},
	{inventory.ErrUnknownItem, "unknown_item"},
	{inventory.ErrInsufficientAmmo, "no_ammo"},
	{loadout.ErrNoWeapon, "no_weapon"},
	{loadout.ErrClipEmpty, "clip_empty"},
	{loadout.ErrReloading, "reloading"},
	{loadout.ErrActionNotAllowed, "action_not_allowed"},
	{loadout.ErrNoFreeSlot, "inventory_full"},
	{loadout.ErrNoAmmoForPickup, "unknown_item"},
	{loadout.ErrUnknownEquipSlot, "invalid_slot"},
	{reload.ErrNoAmmo, "no_ammo"},
	{reload.ErrClipFull, "clip_full"},
	{reload.ErrDetached, "no_weapon"},
	{reload.ErrJobNotFound, "invalid_argument"},
	{errUnknownMessage, "unknown_message_type"},
	{errBadPayload, "invalid_message"},
}

func errorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal_error"
}

func (s *Session) sendError(err error) {
	s.send(network.MsgTypeError, network.ErrorPayload{
		Code:    errorCode(err),
		Message: err.Error(),
	})
}

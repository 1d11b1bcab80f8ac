package reload

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gravitas-games/armory/internal/loadout"
	"github.com/sirupsen/logrus"
)

// Scheduler runs reload jobs for one actor. It is driven by the actor's game
// loop and is not safe for concurrent use.
type Scheduler struct {
	ammo AmmoSource
	bus  EventBus
	log  logrus.FieldLogger

	jobs     map[JobID]*Job
	byWeapon map[*loadout.Weapon]JobID
	active   *jobHeap
	nextSeq  uint64
}

// NewScheduler creates a scheduler that draws ammo from ammo and reports to
// bus. A nil bus discards events.
func NewScheduler(ammo AmmoSource, bus EventBus, log logrus.FieldLogger) *Scheduler {
	if bus == nil {
		bus = NewNullEventBus()
	}
	return &Scheduler{
		ammo:     ammo,
		bus:      bus,
		log:      log,
		jobs:     make(map[JobID]*Job),
		byWeapon: make(map[*loadout.Weapon]JobID),
		active:   newJobHeap(),
	}
}

// Start begins reloading w. A weapon that is already reloading restarts its
// timer. topUpPercent of the weapon's ammo capacity is added to its reserve
// when the reload completes.
func (s *Scheduler) Start(w *loadout.Weapon, topUpPercent int, now time.Time) (JobID, error) {
	if w == nil {
		return "", loadout.ErrNoWeapon
	}
	if w.Detached() {
		return "", ErrDetached
	}
	if w.ClipFull() && topUpPercent == 0 {
		return "", fmt.Errorf("%w: %s", ErrClipFull, w.Details.Name)
	}
	if !w.Details.InfiniteAmmo && s.ammo.AmmoCount(w.AmmoType()) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoAmmo, w.AmmoType())
	}

	if prev, ok := s.byWeapon[w]; ok {
		s.cancel(prev, now, "restarted")
	}

	s.nextSeq++
	job := &Job{
		ID:           JobID(uuid.NewString()),
		Weapon:       w,
		TopUpPercent: topUpPercent,
		State:        JobRunning,
		StartTime:    now,
		EndTime:      now.Add(w.Details.ReloadTime),
		seq:          s.nextSeq,
	}
	w.Reloading = true
	s.jobs[job.ID] = job
	s.byWeapon[w] = job.ID
	heap.Push(s.active, job)

	s.bus.Publish(Event{
		Type:      EventReloadStarted,
		Job:       job,
		Timestamp: now,
	})
	return job.ID, nil
}

// Update completes every job due by now, earliest first.
func (s *Scheduler) Update(now time.Time) {
	for _, job := range s.active.popDue(now) {
		s.complete(job, now)
	}
}

func (s *Scheduler) complete(job *Job, now time.Time) {
	w := job.Weapon
	delete(s.jobs, job.ID)
	delete(s.byWeapon, w)
	w.Reloading = false

	if w.Detached() {
		s.fail(job, now, "weapon unequipped")
		return
	}

	w.TopUp(job.TopUpPercent)

	var remaining int
	if w.Details.InfiniteAmmo {
		w.ClipRemaining = w.Details.ClipCapacity
		remaining = w.RemainingAmmo
	} else {
		available := s.ammo.AmmoCount(w.AmmoType())
		take := w.NeededAmmo()
		if take > available {
			take = available
		}
		if take > 0 {
			if err := s.ammo.RemoveAmmo(w.AmmoType(), take); err != nil {
				s.fail(job, now, err.Error())
				return
			}
		}
		w.ClipRemaining += take
		remaining = available - take
	}

	if err := s.ammo.UpdateClipAmmo(w); err != nil {
		s.log.WithError(err).WithField("weapon", w.Details.Name).Warn("Failed to store clip after reload")
	}

	job.State = JobComplete
	s.bus.Publish(Event{
		Type:               EventReloadCompleted,
		Job:                job,
		Timestamp:          now,
		TotalRemainingAmmo: remaining,
	})
}

func (s *Scheduler) fail(job *Job, now time.Time, reason string) {
	job.State = JobFailed
	s.log.WithFields(logrus.Fields{
		"job":    job.ID,
		"reason": reason,
	}).Debug("Reload failed")
	s.bus.Publish(Event{
		Type:      EventReloadFailed,
		Job:       job,
		Timestamp: now,
		Reason:    reason,
	})
}

// Cancel stops a running reload. The clip is left untouched.
func (s *Scheduler) Cancel(id JobID, now time.Time) error {
	if _, ok := s.jobs[id]; !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, id)
	}
	s.cancel(id, now, "cancelled")
	return nil
}

// CancelDetached cancels reloads of weapons that have left the equipped
// region and returns how many were cancelled.
func (s *Scheduler) CancelDetached(now time.Time) int {
	var ids []JobID
	for w, id := range s.byWeapon {
		if w.Detached() {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		s.cancel(id, now, "weapon unequipped")
	}
	return len(ids)
}

func (s *Scheduler) cancel(id JobID, now time.Time, reason string) {
	job := s.jobs[id]
	s.active.Remove(id)
	delete(s.jobs, id)
	delete(s.byWeapon, job.Weapon)
	job.Weapon.Reloading = false
	job.State = JobCancelled

	s.bus.Publish(Event{
		Type:      EventReloadCancelled,
		Job:       job,
		Timestamp: now,
		Reason:    reason,
	})
}

// Job returns a running job, or nil.
func (s *Scheduler) Job(id JobID) *Job {
	return s.jobs[id]
}

// Reloading reports whether w has a running job.
func (s *Scheduler) Reloading(w *loadout.Weapon) bool {
	_, ok := s.byWeapon[w]
	return ok
}

// JobCount returns the number of running jobs.
func (s *Scheduler) JobCount() int {
	return len(s.jobs)
}

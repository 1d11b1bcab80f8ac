// Package reload runs timed weapon reloads. Jobs are kept in a min-heap by
// completion time and finished by Update, which the owning game loop calls
// every tick.
package reload

import (
	"errors"
	"time"

	"github.com/gravitas-games/armory/internal/loadout"
	"github.com/gravitas-games/armory/pkg/inventory"
)

// JobID uniquely identifies a reload job.
type JobID string

// JobState represents the current state of a reload job.
type JobState int

const (
	// JobRunning indicates the reload timer is still counting down.
	JobRunning JobState = iota
	// JobComplete indicates the clip was refilled.
	JobComplete
	// JobFailed indicates the reload could not be applied.
	JobFailed
	// JobCancelled indicates the reload was cancelled or restarted.
	JobCancelled
)

// String returns a human-readable representation of the job state.
func (s JobState) String() string {
	switch s {
	case JobRunning:
		return "Running"
	case JobComplete:
		return "Complete"
	case JobFailed:
		return "Failed"
	case JobCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Job is a single reload in progress.
type Job struct {
	ID           JobID
	Weapon       *loadout.Weapon
	TopUpPercent int
	State        JobState
	StartTime    time.Time
	EndTime      time.Time

	seq uint64
}

// Progress returns completion in [0, 1] at now.
func (j *Job) Progress(now time.Time) float64 {
	total := j.EndTime.Sub(j.StartTime)
	if total <= 0 || !now.Before(j.EndTime) {
		return 1.0
	}
	elapsed := now.Sub(j.StartTime)
	if elapsed <= 0 {
		return 0.0
	}
	return float64(elapsed) / float64(total)
}

// AmmoSource is the slice of the inventory engine a reload needs.
type AmmoSource interface {
	AmmoCount(t inventory.AmmoType) int
	RemoveAmmo(t inventory.AmmoType, amount int) error
	UpdateClipAmmo(w inventory.ClipHolder) error
}

var (
	// ErrNoAmmo is returned when a finite-ammo weapon has nothing to load.
	ErrNoAmmo = errors.New("reload: no ammo")
	// ErrClipFull is returned when a reload would change nothing.
	ErrClipFull = errors.New("reload: clip already full")
	// ErrDetached is returned for weapons that are no longer equipped.
	ErrDetached = errors.New("reload: weapon is not equipped")
	// ErrJobNotFound is returned by Cancel for unknown or finished jobs.
	ErrJobNotFound = errors.New("reload: job not found")
)

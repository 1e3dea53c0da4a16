package system

import "time"

// Phase defines execution ordering within a single frame.
type Phase int

const (
	PhasePreUpdate  Phase = iota // 0: deliver last frame's events
	PhaseUpdate                  // 1: world tick
	PhasePostUpdate              // 2: draw list, frame stats
	PhasePersist                 // 3: journal flush
	PhaseCleanup                 // 4: expire and remove queued entities
)

var phaseNames = [...]string{"pre-update", "update", "post-update", "persist", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every loop-level system implements.
type System interface {
	Name() string
	Phase() Phase
	Update(dt time.Duration) error
}

// Package activation decides when a drag-and-release gesture on a launcher
// item becomes a launch. Each item owns one Machine, stepped once per frame
// by the presentation loop; nothing here blocks.
package activation

import (
	"github.com/chewxy/math32"

	"github.com/stardust-xr/protostar/internal/config"
)

type State int

const (
	StateIdle State = iota
	StateGrabbed
	StateReturning
	StateShrinking
	StateLaunching
	StateGrowing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGrabbed:
		return "grabbed"
	case StateReturning:
		return "returning"
	case StateShrinking:
		return "shrinking"
	case StateLaunching:
		return "launching"
	case StateGrowing:
		return "growing"
	default:
		return "unknown"
	}
}

// Handle is the external collaborator bundle for one launcher item: the
// spatial toolkit reports the handle's pose and applies visual changes.
type Handle interface {
	// RelativePosition is the handle's current position relative to its
	// rest pose.
	RelativePosition() [3]float32
	// SetOffset moves the visual along the animated return to rest.
	SetOffset(pos [3]float32)
	// SetScale scales the visual, 1 = full size.
	SetScale(scale float32)
	// CancelVelocity zeroes linear and angular velocity so a released
	// handle does not drift during the return animation.
	CancelVelocity()
}

// Machine is the per-item activation state machine.
//
// Re-grab policy: grabbing during Returning interrupts the return and resets
// to Grabbed. Grabbing during Shrinking, Launching, or Growing is ignored —
// the launch is already committed at that point.
type Machine struct {
	state    State
	handle   Handle
	launch   func()
	distance float32
	duration float64

	tween      *Tweener
	releasePos [3]float32
}

// NewMachine builds a machine around a handle. launch is invoked exactly once
// per committed gesture, fire-and-forget; it must not block.
func NewMachine(handle Handle, cfg *config.Config, launch func()) *Machine {
	return &Machine{
		state:    StateIdle,
		handle:   handle,
		launch:   launch,
		distance: cfg.Activation.Distance,
		duration: cfg.Activation.TweenDuration,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Frame advances the machine by delta seconds. grabbed reports whether user
// input currently seizes the handle.
func (m *Machine) Frame(delta float64, grabbed bool) {
	switch m.state {
	case StateIdle:
		if grabbed {
			m.state = StateGrabbed
		}

	case StateGrabbed:
		if grabbed {
			return
		}
		m.onRelease()

	case StateReturning:
		if grabbed {
			// The user wants the handle back; drop the tween.
			m.tween = nil
			m.state = StateGrabbed
			return
		}
		offset, done := m.tween.MoveBy(delta)
		m.handle.SetOffset(scale3(m.releasePos, offset))
		if done {
			m.tween = nil
			m.state = StateIdle
		}

	case StateShrinking:
		value, done := m.tween.MoveBy(delta)
		m.handle.SetScale(value)
		if done {
			m.tween = nil
			m.state = StateLaunching
			m.launch()
		}

	case StateLaunching:
		m.handle.SetOffset([3]float32{})
		m.tween = NewTweener(0, 1, m.duration)
		m.state = StateGrowing

	case StateGrowing:
		value, done := m.tween.MoveBy(delta)
		m.handle.SetScale(value)
		if done {
			m.tween = nil
			m.state = StateIdle
		}
	}
}

// onRelease runs the displacement check the moment the handle is let go.
func (m *Machine) onRelease() {
	pos := m.handle.RelativePosition()
	m.handle.CancelVelocity()

	if length3(pos) > m.distance {
		m.tween = NewTweener(1, 0, m.duration)
		m.state = StateShrinking
		return
	}

	m.releasePos = pos
	m.tween = NewTweener(1, 0, m.duration)
	m.state = StateReturning
}

func length3(v [3]float32) float32 {
	return math32.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func scale3(v [3]float32, s float32) [3]float32 {
	return [3]float32{v[0] * s, v[1] * s, v[2] * s}
}

package activation

// Tweener interpolates a value with quartic ease-in/out over a fixed
// duration, advanced by per-frame deltas.
type Tweener struct {
	from     float32
	to       float32
	duration float64
	elapsed  float64
}

func NewTweener(from, to float32, duration float64) *Tweener {
	return &Tweener{from: from, to: to, duration: duration}
}

// MoveBy advances the tween by delta seconds and returns the current value.
// The second return is true once the tween has reached its final value.
func (tw *Tweener) MoveBy(delta float64) (float32, bool) {
	tw.elapsed += delta

	t := tw.elapsed / tw.duration
	if t >= 1 {
		return tw.to, true
	}
	return tw.from + (tw.to-tw.from)*float32(quartInOut(t)), false
}

func quartInOut(t float64) float64 {
	if t < 0.5 {
		return 8 * t * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u*u/2
}

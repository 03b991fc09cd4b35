package dosmouse

import (
	"math"
	"time"
)

const (
	speedWindow     = 100 * time.Millisecond
	speedStopAfter  = time.Second
	speedBlendPrior = 0.5

	// The ballistics curve reaches its 2:1 plateau at 6, like PS/2 scaling.
	ballisticsPlateau = 6.0
)

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// SpeedEstimator smooths movement magnitude into a mickeys/second reading.
type SpeedEstimator struct {
	scaling  float32
	now      Clock
	start    time.Time
	distance float32
	speed    float32
}

// NewSpeedEstimator returns an estimator whose readings are multiplied by
// scaling. A nil clock uses time.Now.
func NewSpeedEstimator(scaling float32, now Clock) *SpeedEstimator {
	if now == nil {
		now = time.Now
	}
	return &SpeedEstimator{scaling: scaling, now: now, start: now()}
}

// Update feeds the magnitude of one movement, in mickeys.
func (s *SpeedEstimator) Update(delta float32) {
	now := s.now()
	elapsed := now.Sub(s.start)
	s.distance += delta

	switch {
	case elapsed >= speedStopAfter:
		// long pause, the previous estimate is meaningless
		s.speed = 0
		s.distance = delta
		s.start = now
	case elapsed >= speedWindow:
		current := s.scaling * s.distance / float32(elapsed.Seconds())
		s.speed = speedBlendPrior*s.speed + (1-speedBlendPrior)*current
		s.distance = 0
		s.start = now
	}
}

// Get returns the current estimate; 0 if the mouse has stopped.
func (s *SpeedEstimator) Get() float32 {
	if s.now().Sub(s.start) >= speedStopAfter {
		return 0
	}
	return s.speed
}

// Reset forgets all history.
func (s *SpeedEstimator) Reset() {
	s.start = s.now()
	s.distance = 0
	s.speed = 0
}

// Ballistics maps a normalised speed onto an acceleration coefficient:
// 0.5 when still, 1.0 from the plateau on, smooth in between.
func Ballistics(x float32) float32 {
	if x <= 0 || math.IsNaN(float64(x)) {
		return 0.5
	}
	if x >= ballisticsPlateau {
		return 1.0
	}
	t := x / ballisticsPlateau
	return 0.5 + 0.5*t*t*(3-2*t)
}

package systems

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/murmur/pattern"
)

// CaptureScanner tests agent paths against uncaptured target pixels.
type CaptureScanner struct {
	targets       pattern.TargetSet
	width, height float64
	radius        float64
	step          float64
}

// NewCaptureScanner creates a scanner over targets on a width x height
// canvas. step is the path sampling interval in pixels so fast agents cannot
// skip a one-pixel stroke.
func NewCaptureScanner(targets pattern.TargetSet, width, height int, radius, step float64) *CaptureScanner {
	return &CaptureScanner{
		targets: targets,
		width:   float64(width),
		height:  float64(height),
		radius:  radius,
		step:    step,
	}
}

// Scan returns every uncaptured target touched by an agent this tick, sorted
// by row then column with duplicates removed. It reads only the snapshot and
// the captured set; the caller merges the result after the scan.
func (s *CaptureScanner) Scan(agents []AgentState, captured *CapturedSet, dst []pattern.Point) []pattern.Point {
	dst = dst[:0]
	if captured.Complete() {
		return dst
	}

	for i := range agents {
		dst = s.scanPath(dst, agents[i].Prev, agents[i].Pos, captured)
	}

	slices.SortFunc(dst, pattern.ComparePoints)
	return slices.Compact(dst)
}

// scanPath samples the segment from a to b and appends touched targets.
// Samples off the canvas capture nothing.
func (s *CaptureScanner) scanPath(dst []pattern.Point, a, b r2.Vec, captured *CapturedSet) []pattern.Point {
	seg := r2.Sub(b, a)
	n := max(int(math.Ceil(r2.Norm(seg)/s.step)), 1)
	for k := 0; k <= n; k++ {
		p := r2.Add(a, r2.Scale(float64(k)/float64(n), seg))
		if !s.onCanvas(p) {
			continue
		}
		dst = s.scanPoint(dst, p, captured)
	}
	return dst
}

func (s *CaptureScanner) onCanvas(p r2.Vec) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < s.width && p.Y < s.height
}

// scanPoint appends targets within the capture radius of p, plus the pixel p rounds to.
func (s *CaptureScanner) scanPoint(dst []pattern.Point, p r2.Vec, captured *CapturedSet) []pattern.Point {
	rx, ry := roundPoint(p)
	rSq := s.radius * s.radius

	x0 := int(math.Floor(p.X - s.radius))
	x1 := int(math.Ceil(p.X + s.radius))
	y0 := int(math.Floor(p.Y - s.radius))
	y1 := int(math.Ceil(p.Y + s.radius))

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			t := pattern.Point{X: x, Y: y}
			if !s.targets.Contains(t) || captured.Has(t) {
				continue
			}
			dx := float64(x) - p.X
			dy := float64(y) - p.Y
			if (x == rx && y == ry) || dx*dx+dy*dy <= rSq {
				dst = append(dst, t)
			}
		}
	}
	return dst
}

// FinalSweep times the end of a cycle. The timer starts once few enough
// targets remain, or once no target has been captured for a full timeout.
// When the timer expires the remaining pixels are forced, so a cycle ends
// within twice the timeout of its last capture.
type FinalSweep struct {
	threshold int
	timeout   float64

	armed        bool
	stalled      bool
	elapsed      float64
	sinceCapture float64
}

// NewFinalSweep creates a sweep armed at threshold remaining pixels that
// fires after timeout simulated seconds.
func NewFinalSweep(threshold int, timeout float64) *FinalSweep {
	return &FinalSweep{threshold: threshold, timeout: timeout}
}

// Advance updates the timer with the remaining count after this tick's merge
// and the number of pixels that merge captured. started is true on the tick
// the timer arms; fire is true when the remaining pixels must be
// force-captured.
func (f *FinalSweep) Advance(remaining, captured int, dt float64) (started, fire bool) {
	if remaining == 0 {
		f.armed = false
		return false, false
	}

	if captured > 0 {
		f.sinceCapture = 0
	} else {
		f.sinceCapture += dt
	}

	if !f.armed {
		// Tolerance for accumulated float error in dt sums
		stalled := f.sinceCapture >= f.timeout-1e-9
		if remaining > f.threshold && !stalled {
			return false, false
		}
		f.armed = true
		f.stalled = remaining > f.threshold
		f.elapsed = 0
		started = true
	}
	f.elapsed += dt

	if f.elapsed >= f.timeout-1e-9 {
		f.armed = false
		return started, true
	}
	return started, false
}

// Armed reports whether the sweep timer is running.
func (f *FinalSweep) Armed() bool {
	return f.armed
}

// Stalled reports whether the timer was armed by a capture stall rather than
// by the remaining count.
func (f *FinalSweep) Stalled() bool {
	return f.stalled
}

// Elapsed returns the simulated seconds since the timer armed.
func (f *FinalSweep) Elapsed() float64 {
	return f.elapsed
}

// Reset disarms the timer and clears the stall clock.
func (f *FinalSweep) Reset() {
	f.armed = false
	f.stalled = false
	f.elapsed = 0
	f.sinceCapture = 0
}

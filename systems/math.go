package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Clamp functions for common value ranges

// clampFloat clamps a value between min and max.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a value to the [0, 1] range.
func clamp01(v float64) float64 {
	return clampFloat(v, 0, 1)
}

// clampInt clamps an int between min and max.
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// lerp interpolates between a and b by t in [0, 1].
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Vector helpers

// fromAngle returns a vector of the given length pointing along angle.
func fromAngle(angle, length float64) r2.Vec {
	return r2.Vec{X: math.Cos(angle) * length, Y: math.Sin(angle) * length}
}

// perp returns v rotated by 90 degrees.
func perp(v r2.Vec) r2.Vec {
	return r2.Vec{X: -v.Y, Y: v.X}
}

// unitOrZero returns the unit vector of v, or zero for a zero vector.
func unitOrZero(v r2.Vec) r2.Vec {
	n := r2.Norm(v)
	if n == 0 {
		return r2.Vec{}
	}
	return r2.Scale(1/n, v)
}

// ClampSpeed scales v down so its magnitude does not exceed maxSpeed.
func ClampSpeed(v r2.Vec, maxSpeed float64) r2.Vec {
	n := r2.Norm(v)
	if n <= maxSpeed || n == 0 {
		return v
	}
	return r2.Scale(maxSpeed/n, v)
}

// roundPoint rounds a continuous position to the nearest pixel.
func roundPoint(p r2.Vec) (x, y int) {
	return int(math.Round(p.X)), int(math.Round(p.Y))
}

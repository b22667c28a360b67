// Package valuenet implements the linear value-function approximator: a
// forward pass over one or many feature representations, and an
// average-reward TDC (TD with gradient correction) backward update.
package valuenet

import (
	"math"

	"dcasim/internal/gridfuncs"
)

// WDim is the flattened dimension of a single Frep: ROWS*COLS*(CHANNELS+1).
const WDim = gridfuncs.Rows * gridfuncs.Cols * (gridfuncs.Channels + 1)

// Net is a linear value function over flattened freps, trained online with
// average-reward TDC.
type Net struct {
	alpha     float32
	alphaGrad float32

	theta [WDim]float32 // weights, theta_t
	w     [WDim]float32 // gradient correction, w_t
}

// New returns a Net with zero-initialized weights.
func New(alpha, alphaGrad float32) *Net {
	return &Net{alpha: alpha, alphaGrad: alphaGrad}
}

// flatten copies a Frep's ROWS x COLS x (CHANNELS+1) entries into a flat
// vector in row-major order.
func flatten(f *gridfuncs.Frep) [WDim]float32 {
	var v [WDim]float32
	i := 0
	for r := 0; r < gridfuncs.Rows; r++ {
		for c := 0; c < gridfuncs.Cols; c++ {
			for ch := 0; ch < gridfuncs.Channels+1; ch++ {
				v[i] = f[r][c][ch]
				i++
			}
		}
	}
	return v
}

func dot(a, b [WDim]float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Value returns the scalar state value theta . vec(frep).
func (n *Net) Value(frep *gridfuncs.Frep) float32 {
	return dot(flatten(frep), n.theta)
}

// Forward returns the state value of each of the given freps, in order --
// the batched counterpart of Value.
func (n *Net) Forward(freps []*gridfuncs.Frep) []float32 {
	vals := make([]float32, len(freps))
	for i, f := range freps {
		vals[i] = n.Value(f)
	}
	return vals
}

// Backward performs one average-reward TDC update from (frep, reward,
// avgReward, nextFrep) and returns the TD error.
//
// This module uses c = 2*alpha with theta <- theta - grads (gradient
// descent on the squared projected Bellman error); see DESIGN.md for why the
// opposite sign is equally valid and was not chosen.
func (n *Net) Backward(frep *gridfuncs.Frep, reward, avgReward float32, nextFrep *gridfuncs.Frep) float32 {
	x := flatten(frep)
	xNext := flatten(nextFrep)

	v := dot(x, n.theta)
	vNext := dot(xNext, n.theta)
	tdErr := reward - avgReward + vNext - v

	wDot := dot(x, n.w)
	c := 2 * n.alpha

	for i := range n.theta {
		grad := c*tdErr*x[i] - c*avgReward + c*wDot*xNext[i]
		n.theta[i] -= grad
	}
	for i := range n.w {
		n.w[i] += n.alphaGrad * (tdErr - wDot) * x[i]
	}

	return tdErr
}

// IsNaN reports whether v is NaN, used to detect training divergence.
func IsNaN(v float32) bool {
	return math.IsNaN(float64(v))
}

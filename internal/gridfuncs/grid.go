// Package gridfuncs implements the hexagonal channel grid: the occupancy
// tensor, the reuse constraint, eligibility, afterstates, and the feature
// representation used by the value network.
package gridfuncs

import "fmt"

const (
	// Rows is the grid height.
	Rows = 7
	// Cols is the grid width.
	Cols = 7
	// Channels is the size of the channel pool shared by every cell.
	Channels = 70
)

// Cell identifies a grid position by row and column.
type Cell struct {
	Row, Col int
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// EType is the kind of call event a grid action responds to.
type EType int

const (
	ENew EType = iota
	EHoff
	EEnd
)

func (e EType) String() string {
	switch e {
	case ENew:
		return "NEW"
	case EHoff:
		return "HOFF"
	case EEnd:
		return "END"
	default:
		return "UNKNOWN"
	}
}

// Grid is the ROWS x COLS x CHANNELS occupancy tensor. grid[r][c][ch] is true
// when channel ch is in use at cell (r, c).
type Grid [Rows][Cols][Channels]bool

// Clone returns a deep copy of the grid.
func (g *Grid) Clone() *Grid {
	clone := *g
	return &clone
}

// NUsed returns the total number of channels in use across the whole grid,
// used as the per-step reward.
func NUsed(g *Grid) int {
	n := 0
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			for ch := 0; ch < Channels; ch++ {
				if g[r][c][ch] {
					n++
				}
			}
		}
	}
	return n
}

// InuseNeighs ORs together the channel-in-use rows of every cell within
// hex-distance 2 of cell, excluding cell itself.
func InuseNeighs(g *Grid, cell Cell) [Channels]bool {
	var alloc [Channels]bool
	for _, n := range Neighbors(2, cell.Row, cell.Col, false) {
		row := &g[n.Row][n.Col]
		for ch := 0; ch < Channels; ch++ {
			alloc[ch] = alloc[ch] || row[ch]
		}
	}
	return alloc
}

// EligibleMap returns, for each channel, whether it is free at cell and at
// every one of cell's reuse-distance (<=2) neighbors.
func EligibleMap(g *Grid, cell Cell) [Channels]bool {
	inuse := InuseNeighs(g, cell)
	own := &g[cell.Row][cell.Col]
	var elig [Channels]bool
	for ch := 0; ch < Channels; ch++ {
		elig[ch] = !(inuse[ch] || own[ch])
	}
	return elig
}

// GetEligibleChs returns the ascending list of channels eligible at cell.
func GetEligibleChs(g *Grid, cell Cell) []int {
	elig := EligibleMap(g, cell)
	return indicesOf(elig[:])
}

// GetInuseChs returns the ascending list of channels currently in use at cell.
func GetInuseChs(g *Grid, cell Cell) []int {
	row := &g[cell.Row][cell.Col]
	return indicesOf(row[:])
}

func indicesOf(mask []bool) []int {
	idxs := make([]int, 0, len(mask))
	for i, v := range mask {
		if v {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

// Afterstates returns, for each candidate channel in chs, a copy of grid with
// grid[cell][ch] toggled to the value the given event type would leave it in
// (false for END, true for NEW/HOFF).
func Afterstates(g *Grid, cell Cell, etype EType, chs []int) []*Grid {
	targVal := etype != EEnd
	out := make([]*Grid, len(chs))
	for i, ch := range chs {
		a := g.Clone()
		a[cell.Row][cell.Col][ch] = targVal
		out[i] = a
	}
	return out
}

// ValidateReuseConstraint returns an error naming the offending cell if any
// channel is simultaneously in use at a cell and at one of its reuse-distance
// neighbors.
func ValidateReuseConstraint(g *Grid) error {
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			cell := Cell{Row: r, Col: c}
			inuse := InuseNeighs(g, cell)
			own := &g[r][c]
			for ch := 0; ch < Channels; ch++ {
				if inuse[ch] && own[ch] {
					return fmt.Errorf("reuse constraint violated at (r,c): (%d, %d)", r, c)
				}
			}
		}
	}
	return nil
}

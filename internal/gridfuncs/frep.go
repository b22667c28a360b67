package gridfuncs

// Frep is the feature representation of a grid: for each cell, the first
// Channels entries count how many distance-<=4 neighbors (excluding self) use
// each channel, and the last entry counts the cell's eligible channels.
type Frep [Rows][Cols][Channels + 1]float32

// Clone returns a deep copy of the frep.
func (f *Frep) Clone() *Frep {
	clone := *f
	return &clone
}

// FeatureRep builds a Frep from scratch.
func FeatureRep(g *Grid) *Frep {
	var frep Frep
	for r := 0; r < Rows; r++ {
		for c := 0; c < Cols; c++ {
			var nUsed [Channels]int
			for _, n := range Neighbors(4, r, c, false) {
				row := &g[n.Row][n.Col]
				for ch := 0; ch < Channels; ch++ {
					if row[ch] {
						nUsed[ch]++
					}
				}
			}
			for ch := 0; ch < Channels; ch++ {
				frep[r][c][ch] = float32(nUsed[ch])
			}
			elig := EligibleMap(g, Cell{Row: r, Col: c})
			n := 0
			for _, e := range elig {
				if e {
					n++
				}
			}
			frep[r][c][Channels] = float32(n)
		}
	}
	return &frep
}

// IncrementalFreps derives, for each candidate channel in chs, the frep that
// would result from toggling grid[cell][ch] according to etype, starting from
// frep (which must already be consistent with grid). grid is mutated
// transiently but is always restored to its original contents before
// returning, even though the work happens in a single pass over chs.
//
// The returned freps satisfy, element-wise,
// IncrementalFreps(...)[i] == FeatureRep(Afterstates(grid, cell, etype, chs)[i]).
func IncrementalFreps(g *Grid, frep *Frep, cell Cell, etype EType, chs []int) []*Frep {
	r1, c1 := cell.Row, cell.Col
	neighs4 := Neighbors(4, r1, c1, false)
	neighs2 := Neighbors(2, r1, c1, true)

	usedDelta := float32(1)
	eligSelfDelta := float32(-1)
	if etype == EEnd {
		usedDelta = -1
		eligSelfDelta = 1
		for _, ch := range chs {
			g[r1][c1][ch] = false
		}
	}

	freps := make([]*Frep, len(chs))
	for i, ch := range chs {
		f := frep.Clone()
		for _, n := range neighs4 {
			f[n.Row][n.Col][ch] += usedDelta
		}
		for _, a := range neighs2 {
			r2, c2 := a.Row, a.Col
			notEligible := g[r2][c2][ch]
			if !notEligible {
				for _, b := range Neighbors(2, r2, c2, false) {
					if g[b.Row][b.Col][ch] {
						notEligible = true
						break
					}
				}
			}
			if !notEligible {
				f[r2][c2][Channels] += eligSelfDelta
			}
		}
		freps[i] = f
	}

	if etype == EEnd {
		for _, ch := range chs {
			g[r1][c1][ch] = true
		}
	}
	return freps
}

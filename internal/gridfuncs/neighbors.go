package gridfuncs

import "sync"

// neighborTables holds, for each of the three reuse/feature distances this
// module cares about (1, 2, 4), the list of cells within that hex-distance of
// every (row, col), self first. Built once, behind a guarded initializer, and
// never mutated after publication -- an immutable precomputed table rather
// than something recomputed per call.
type neighborTables struct {
	// byDist[d][row][col] is the list of neighbor cells at hex-distance <= the
	// d-th supported distance (1, 2, 4), self first.
	byDist [3][Rows][Cols][]Cell
}

var (
	neighOnce   sync.Once
	neighTables *neighborTables
)

func distIndex(dist int) int {
	switch dist {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	default:
		panic("neighbors for distances other than 1, 2 or 4 should never be needed")
	}
}

// hexDistance computes the hex-grid distance between two cells using
// signed integer arithmetic, per the axial-coordinate distance formula.
func hexDistance(r1, c1, r2, c2 int) int {
	return (abs(r1-r2) + abs(r1+c1-r2-c2) + abs(c1-c2)) / 2
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func buildNeighborTables() *neighborTables {
	nt := &neighborTables{}
	for r1 := 0; r1 < Rows; r1++ {
		for c1 := 0; c1 < Cols; c1++ {
			// Store the focal cell first so callers can trivially include or
			// exclude self by slicing at offset 0 or 1.
			for d := 0; d < 3; d++ {
				nt.byDist[d][r1][c1] = append(nt.byDist[d][r1][c1], Cell{Row: r1, Col: c1})
			}
			for r2 := 0; r2 < Rows; r2++ {
				for c2 := 0; c2 < Cols; c2++ {
					if r1 == r2 && c1 == c2 {
						continue
					}
					dist := hexDistance(r1, c1, r2, c2)
					if dist <= 4 {
						nt.byDist[2][r1][c1] = append(nt.byDist[2][r1][c1], Cell{Row: r2, Col: c2})
						if dist <= 2 {
							nt.byDist[1][r1][c1] = append(nt.byDist[1][r1][c1], Cell{Row: r2, Col: c2})
							if dist == 1 {
								nt.byDist[0][r1][c1] = append(nt.byDist[0][r1][c1], Cell{Row: r2, Col: c2})
							}
						}
					}
				}
			}
		}
	}
	return nt
}

func getNeighborTables() *neighborTables {
	neighOnce.Do(func() {
		neighTables = buildNeighborTables()
	})
	return neighTables
}

// Neighbors returns the cells within hex-distance dist (one of 1, 2, 4) of
// (row, col). When includeSelf is true the focal cell is the first element;
// otherwise it is omitted. Any other dist is a programming error.
func Neighbors(dist, row, col int, includeSelf bool) []Cell {
	nt := getNeighborTables()
	all := nt.byDist[distIndex(dist)][row][col]
	if includeSelf {
		return all
	}
	return all[1:]
}

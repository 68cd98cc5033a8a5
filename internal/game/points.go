package game

import "github.com/rocketscienceinc/knucklebones-backend/internal/dice"

// multipliers[v-1][m-1] is the score of value v seen m times in one column.
var multipliers = func() [dice.Faces][3]uint32 {
	var table [dice.Faces][3]uint32
	for v := range dice.Faces {
		for m := range 3 {
			table[v][m] = uint32((v + 1) * (m + 1) * (m + 1))
		}
	}

	return table
}()

// Points - scores every column of a row-major board of the given width.
// A value outside 1..6 makes the board malformed and an empty slice is returned.
func Points(board []uint32, width int) []uint32 {
	if width <= 0 {
		return []uint32{}
	}

	counts := make([][dice.Faces]int, width)
	for i, value := range board {
		if value == 0 {
			continue
		}

		if value > dice.Faces {
			return []uint32{}
		}

		counts[i%width][value-1]++
	}

	points := make([]uint32, width)
	for col, occurrences := range counts {
		for v, m := range occurrences {
			if m == 0 || m > len(multipliers[v]) {
				continue
			}

			points[col] += multipliers[v][m-1]
		}
	}

	return points
}

// Total - sums column points.
func Total(points []uint32) uint32 {
	var total uint32
	for _, p := range points {
		total += p
	}

	return total
}

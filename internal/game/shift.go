package game

// Float - direction in which the values of a column are compacted.
type Float int

const (
	// FloatUp moves values towards row 0.
	FloatUp Float = iota
	// FloatDown moves values towards the last row.
	FloatDown
)

// ShiftColumns - compacts every column of a row-major board in place, keeping
// the relative order of non-zero values. Boards whose length is not a multiple
// of height are left untouched.
func ShiftColumns(board []uint32, height int, direction Float) {
	if height <= 0 || len(board)%height != 0 {
		return
	}

	width := len(board) / height
	column := make([]uint32, 0, height)

	for col := range width {
		column = column[:0]
		for row := range height {
			if value := board[row*width+col]; value != 0 {
				column = append(column, value)
			}
		}

		zeros := height - len(column)
		for row := range height {
			var value uint32

			switch direction {
			case FloatUp:
				if row < len(column) {
					value = column[row]
				}
			case FloatDown:
				if row >= zeros {
					value = column[row-zeros]
				}
			}

			board[row*width+col] = value
		}
	}
}

package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoints(t *testing.T) {
	tests := []struct {
		name  string
		board []uint32
		width int
		want  []uint32
	}{
		{"single die", []uint32{1, 0, 0, 0, 0, 0, 0, 0, 0}, 3, []uint32{1, 0, 0}},
		{"three sixes in one column", []uint32{6, 1, 2, 6, 0, 0, 6, 0, 0}, 3, []uint32{54, 1, 2}},
		{"pair doubles twice", []uint32{5, 0, 0, 5, 0, 0, 2, 0, 0}, 3, []uint32{22, 0, 0}},
		{"multiplicity past the table scores nothing", []uint32{1, 1, 1, 1}, 1, []uint32{0}},
		{"empty board", []uint32{0, 0, 0, 0, 0, 0, 0}, 2, []uint32{0, 0}},
		{"value out of range", []uint32{7}, 1, []uint32{}},
		{"value out of range anywhere", []uint32{1, 2, 3, 4, 5, 6, 1, 2, 9}, 3, []uint32{}},
		{"no columns", []uint32{1}, 0, []uint32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.board, tt.width))
		})
	}
}

func TestPoints_MalformedEncodesAsEmptyArray(t *testing.T) {
	raw, err := json.Marshal(Columns{Me: Points([]uint32{8}, 1), Other: Points(nil, 1)})

	require.NoError(t, err)
	assert.JSONEq(t, `{"me":[],"other":[0]}`, string(raw))
}

func TestTotal(t *testing.T) {
	assert.Equal(t, uint32(57), Total([]uint32{54, 1, 2}))
	assert.Equal(t, uint32(0), Total(nil))
}

package bufview_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regfhive/internal/bufview"
)

func TestSliceBounds(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	out, ok := bufview.Slice(buf, 1, 2)
	require.True(t, ok)
	require.Equal(t, []byte{2, 3}, out)

	_, ok = bufview.Slice(buf, 3, 2)
	require.False(t, ok)

	_, ok = bufview.Slice(buf, -1, 2)
	require.False(t, ok)
}

func TestU32LEShortBuffer(t *testing.T) {
	_, ok := bufview.U32LE([]byte{1, 2}, 0)
	require.False(t, ok)

	v, ok := bufview.U32LE([]byte{0x78, 0x56, 0x34, 0x12}, 0)
	require.True(t, ok)
	require.Equal(t, uint32(0x12345678), v)
}

func TestAddOverflowSafe(t *testing.T) {
	_, ok := bufview.AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok)

	sum, ok := bufview.AddOverflowSafe(4096, 10)
	require.True(t, ok)
	require.Equal(t, 4106, sum)
}

func TestI32LENegative(t *testing.T) {
	v, ok := bufview.I32LE([]byte{0x00, 0x00, 0x00, 0x80}, 0)
	require.True(t, ok)
	require.Equal(t, int32(math.MinInt32), v)
}

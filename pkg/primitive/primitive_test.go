package primitive

import (
	"errors"
	"math"
	"testing"

	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromKnownEncodings(t *testing.T) {
	tests := []struct {
		name string
		kind layout.Kind
		v    layout.Value
		want []byte
	}{
		{"BoolFalse", layout.KindBool, layout.Bool(false), []byte{0}},
		{"BoolTrue", layout.KindBool, layout.Bool(true), []byte{1}},
		{"Text", layout.KindText, layout.String("abc"), []byte{97, 98, 99}},
		{"Byte", layout.KindByte, layout.Int(100), []byte{100}},
		{"NegativeInt", layout.KindInt, layout.Int(-100), []byte{156, 255, 255, 255}},
		{"Float", layout.KindFloat, layout.Float(5.5), []byte{0, 0, 176, 64}},
		{"NegativeFloat", layout.KindFloat, layout.Float(-7.9), []byte{205, 204, 252, 192}},
		{"MinusFifteen", layout.KindInt, layout.Int(-15), []byte{241, 255, 255, 255}},
		{"MaxInt32", layout.KindInt, layout.Int(2147483647), []byte{255, 255, 255, 127}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := From(tt.kind, layout.Little, tt.v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromBigReverses(t *testing.T) {
	got, err := From(layout.KindInt, layout.Big, layout.Int(-100))
	require.NoError(t, err)
	assert.Equal(t, []byte{255, 255, 255, 156}, got)

	got, err = From(layout.KindText, layout.Big, layout.String("abc"))
	require.NoError(t, err)
	assert.Equal(t, []byte("cba"), got)
}

func TestFromDouble(t *testing.T) {
	got, err := From(layout.KindDouble, layout.Little, layout.Float(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, got)
}

func TestFromNumericVariantsInterchange(t *testing.T) {
	got, err := From(layout.KindInt, layout.Little, layout.Float(7))
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 0, 0, 0}, got)

	got, err = From(layout.KindFloat, layout.Little, layout.Int(2))
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 64}, got)
}

func TestFromErrors(t *testing.T) {
	_, err := From(layout.KindInt, layout.Little, layout.String("1"))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = From(layout.KindText, layout.Little, layout.Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = From(layout.KindBool, layout.Little, layout.Int(1))
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = From(layout.KindInvalid, layout.Little, layout.Int(1))
	assert.True(t, errors.Is(err, ErrUnsupportedKind))
}

func TestToKnownDecodings(t *testing.T) {
	v, ok := To(layout.KindBool, layout.Little, []byte{0})
	require.True(t, ok)
	assert.Equal(t, layout.Bool(false), v)

	v, ok = To(layout.KindBool, layout.Little, []byte{2})
	require.True(t, ok)
	assert.Equal(t, layout.Bool(true), v)

	v, ok = To(layout.KindByte, layout.Little, []byte{200})
	require.True(t, ok)
	assert.Equal(t, layout.Int(200), v)

	v, ok = To(layout.KindInt, layout.Little, []byte{156, 255, 255, 255})
	require.True(t, ok)
	assert.Equal(t, layout.Int(-100), v)

	v, ok = To(layout.KindInt, layout.Big, []byte{255, 255, 255, 156})
	require.True(t, ok)
	assert.Equal(t, layout.Int(-100), v)

	v, ok = To(layout.KindFloat, layout.Little, []byte{0, 0, 176, 64})
	require.True(t, ok)
	assert.Equal(t, layout.Float(5.5), v)

	v, ok = To(layout.KindFloat, layout.Little, []byte{205, 204, 252, 192})
	require.True(t, ok)
	assert.InDelta(t, -7.9, float64(v.(layout.Float)), 1e-6)

	v, ok = To(layout.KindText, layout.Little, []byte("abc"))
	require.True(t, ok)
	assert.Equal(t, layout.String("abc"), v)
}

func TestToShortIntZeroExtends(t *testing.T) {
	v, ok := To(layout.KindInt, layout.Little, []byte{0x34, 0x12})
	require.True(t, ok)
	assert.Equal(t, layout.Int(0x1234), v)
}

func TestToDoubleWidthSelectsFormat(t *testing.T) {
	v, ok := To(layout.KindDouble, layout.Little, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F})
	require.True(t, ok)
	assert.Equal(t, layout.Float(1), v)

	v, ok = To(layout.KindDouble, layout.Little, []byte{0, 0, 176, 64})
	require.True(t, ok)
	assert.Equal(t, layout.Float(5.5), v)
}

func TestToNoValue(t *testing.T) {
	_, ok := To(layout.KindFloat, layout.Little, []byte{1, 2})
	assert.False(t, ok)

	_, ok = To(layout.KindInt, layout.Little, nil)
	assert.False(t, ok)

	_, ok = To(layout.KindBool, layout.Little, []byte{})
	assert.False(t, ok)

	_, ok = To(layout.KindInvalid, layout.Little, []byte{1})
	assert.False(t, ok)
}

func TestToDoesNotMutateInput(t *testing.T) {
	in := []byte{1, 2, 3, 4}
	_, ok := To(layout.KindInt, layout.Big, in)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, in)
}

func TestToInvalidUTF8(t *testing.T) {
	v, ok := To(layout.KindText, layout.Little, []byte{'a', 0xFF, 'b'})
	require.True(t, ok)
	assert.Equal(t, layout.String("a�b"), v)
}

func TestFromWidth(t *testing.T) {
	t.Run("Truncates", func(t *testing.T) {
		got, err := FromWidth(layout.KindInt, layout.Little, layout.Int(0x01020304), 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x04, 0x03}, got)
	})

	t.Run("ZeroExtends", func(t *testing.T) {
		got, err := FromWidth(layout.KindByte, layout.Little, layout.Int(7), 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{7, 0, 0, 0}, got)
	})

	t.Run("BigFitsBeforeReversal", func(t *testing.T) {
		got, err := FromWidth(layout.KindInt, layout.Big, layout.Int(0x0102), 2)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02}, got)

		got, err = FromWidth(layout.KindByte, layout.Big, layout.Int(7), 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 7}, got)
	})

	t.Run("FloatInEightBytesIsDouble", func(t *testing.T) {
		got, err := FromWidth(layout.KindFloat, layout.Little, layout.Float(1), 8)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}, got)

		v, ok := To(layout.KindFloat, layout.Little, got)
		require.True(t, ok)
		assert.Equal(t, layout.Float(1), v)
	})

	t.Run("FloatOddWidthFails", func(t *testing.T) {
		for _, n := range []int{1, 3, 5, 16} {
			_, err := FromWidth(layout.KindFloat, layout.Little, layout.Float(1.5), n)
			assert.ErrorIs(t, err, ErrUnsupportedWidth, "width %d", n)

			_, err = FromWidth(layout.KindDouble, layout.Big, layout.Float(1.5), n)
			assert.ErrorIs(t, err, ErrUnsupportedWidth, "width %d", n)
		}
	})

	t.Run("DoubleInFourBytesIsFloat", func(t *testing.T) {
		got, err := FromWidth(layout.KindDouble, layout.Little, layout.Float(5.5), 4)
		require.NoError(t, err)
		assert.Equal(t, []byte{0, 0, 176, 64}, got)
	})

	t.Run("RoundTripsInt", func(t *testing.T) {
		for _, n := range []int64{0, 1, -1, math.MaxInt32, math.MinInt32} {
			b, err := FromWidth(layout.KindInt, layout.Big, layout.Int(n), 4)
			require.NoError(t, err)
			v, ok := To(layout.KindInt, layout.Big, b)
			require.True(t, ok)
			assert.Equal(t, layout.Int(n), v)
		}
	})
}

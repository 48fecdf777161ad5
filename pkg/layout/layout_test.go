package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrlen(t *testing.T) {
	assert.Equal(t, 3, Strlen([]byte{65, 66, 67, 0, 88}))
	assert.Equal(t, 3, Strlen([]byte{1, 2, 3}))
	assert.Equal(t, 0, Strlen([]byte{0}))
	assert.Equal(t, 0, Strlen(nil))
}

func TestSize(t *testing.T) {
	tests := []struct {
		name string
		desc Descriptor
		want int
	}{
		{"OneBit", NewScalar("a", KindBool, Bits(1)), 1},
		{"NineBits", NewScalar("a", KindInt, Bits(9)), 2},
		{"FourBytes", NewScalar("a", KindInt, Bytes(4)), 4},
		{"ArrayOfFourBytes", NewArray("a", NewScalar("e", KindByte, Bytes(1)), 4), 4},
		{"Struct", NewStruct("s",
			NewScalar("a", KindByte, Bytes(1)),
			NewScalar("b", KindInt, Bytes(4)),
		), 5},
		{"FixedText", NewFixedText("t", 12), 12},
		{"UnterminatedText", NewText("t"), 0},
		{"NestedArrayOfStruct", NewArray("points", NewStruct("p",
			NewScalar("x", KindFloat, Bytes(4)),
			NewScalar("y", KindFloat, Bytes(4)),
		), 2), 16},
		{"EmptyArray", NewArray("a", NewScalar("e", KindDouble, Bytes(8)), 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Size(tt.desc))
		})
	}
}

func TestSizeSaturates(t *testing.T) {
	wide := NewScalar("e", KindByte, Bytes(1<<62))
	assert.Equal(t, math.MaxInt, Size(NewArray("a", wide, 4)))
	assert.Equal(t, math.MaxInt, Size(NewStruct("s", wide, wide, wide, wide)))
	assert.Equal(t, math.MaxInt, SizeAt(NewArray("a", wide, 4), []byte{1, 2}))

	assert.Positive(t, Bits(math.MaxInt).ByteLen())
	assert.Equal(t, math.MaxInt, Bytes(math.MaxInt).BitLen())
}

func TestSizeAt(t *testing.T) {
	t.Run("UnterminatedTextScansForZero", func(t *testing.T) {
		assert.Equal(t, 3, SizeAt(NewText("t"), []byte{'a', 'b', 'c', 0, 'd'}))
	})

	t.Run("UnterminatedTextWithoutZeroUsesRemainder", func(t *testing.T) {
		assert.Equal(t, 4, SizeAt(NewText("t"), []byte{'a', 'b', 'c', 'd'}))
	})

	t.Run("HugeDynamicArrayStopsAtEndOfBuffer", func(t *testing.T) {
		elem := NewStruct("e", NewText("s"), NewScalar("z", KindByte, Bytes(1)))
		assert.Equal(t, 1<<40+2, SizeAt(NewArray("a", elem, 1<<40), []byte{'a', 0, 1}))
	})

	t.Run("FixedTextIgnoresBuffer", func(t *testing.T) {
		assert.Equal(t, 2, SizeAt(NewFixedText("t", 2), []byte{0, 0, 0}))
	})

	t.Run("StructMeasuresFieldsInPlace", func(t *testing.T) {
		d := NewStruct("s",
			NewScalar("id", KindByte, Bytes(1)),
			NewText("name"),
			NewScalar("n", KindByte, Bytes(1)),
		)
		// id=7, name="hi" stops at the zero which the byte field then reads.
		buf := []byte{7, 'h', 'i', 0, 9}
		assert.Equal(t, 4, SizeAt(d, buf))
		assert.Equal(t, 2, Size(d))
	})

	t.Run("ArrayOfText", func(t *testing.T) {
		d := NewArray("names", NewStruct("e", NewText("s"), NewScalar("z", KindByte, Bytes(1))), 2)
		buf := []byte{'a', 'b', 0, 'c', 0}
		assert.Equal(t, 5, SizeAt(d, buf))
	})

	t.Run("StaticLayoutMatchesSize", func(t *testing.T) {
		d := NewStruct("s", NewScalar("a", KindInt, Bytes(4)))
		assert.Equal(t, 4, SizeAt(d, nil))
	})
}

func TestWidth(t *testing.T) {
	assert.Equal(t, 1, Bits(1).ByteLen())
	assert.Equal(t, 1, Bits(8).ByteLen())
	assert.Equal(t, 2, Bits(9).ByteLen())
	assert.Equal(t, 9, Bits(9).BitLen())
	assert.Equal(t, 32, Bytes(4).BitLen())
	assert.Equal(t, 0, Width{}.ByteLen())
	assert.Equal(t, "bits:3", Bits(3).String())
	assert.Equal(t, "bytes:2", Bytes(2).String())
}

func TestParseEndianness(t *testing.T) {
	for in, want := range map[string]Endianness{"": Little, "LE": Little, "little": Little, "Big": Big, "be": Big} {
		got, err := ParseEndianness(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseEndianness("middle")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		d := NewStruct("s",
			NewScalar("a", KindByte, Bytes(1)),
			NewArray("b", NewText("t"), 3),
			NewFixedText("c", 4),
			NewScalar("f", KindFloat, Bits(32)),
			NewScalar("g", KindDouble, Bits(64)),
			NewArray("h", NewScalar("e", KindByte, Bytes(1)), MaxCount),
		)
		assert.NoError(t, Validate(d))
	})

	invalid := map[string]Descriptor{
		"MissingWidth":   &Scalar{Name: "a", Kind: KindInt},
		"ZeroWidth":      NewScalar("a", KindInt, Bytes(0)),
		"TextKindScalar": NewScalar("a", KindText, Bytes(1)),
		"NegativeCount":  NewArray("a", NewScalar("e", KindByte, Bytes(1)), -1),
		"ZeroFixedText":  NewFixedText("t", 0),
		"UnnamedField":   NewStruct("s", NewScalar("", KindByte, Bytes(1))),
		"DuplicateField": NewStruct("s", NewScalar("a", KindByte, Bytes(1)), NewScalar("a", KindInt, Bytes(4))),
		"NilElement":     NewArray("a", nil, 1),
		"OddFloatWidth":  NewScalar("f", KindFloat, Bits(20)),
		"FloatBytes2":    NewScalar("f", KindFloat, Bytes(2)),
		"HugeCount":      NewArray("a", NewScalar("e", KindByte, Bytes(1)), MaxCount+1),
		"HugeWidth":      NewScalar("a", KindByte, Bytes(MaxSize+1)),
		"HugeFixedText":  NewFixedText("t", MaxSize+1),
		"HugeLayout":     NewArray("a", NewScalar("e", KindInt, Bytes(1<<10)), 1<<21),
		"OverflowLayout": NewArray("a", NewArray("b", NewScalar("e", KindByte, Bytes(1<<20)), 1<<22), 1<<22),
	}
	for name, d := range invalid {
		t.Run(name, func(t *testing.T) {
			err := Validate(d)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDescriptor))
		})
	}
}

func TestValueConversion(t *testing.T) {
	v := Map{
		"a": Int(10),
		"b": List{Float(1.5), Bool(true)},
		"c": String("x"),
	}

	plain := ToAny(v)
	back, err := FromAny(plain)
	require.NoError(t, err)
	assert.Equal(t, v, back)

	_, err = FromAny(struct{}{})
	assert.Error(t, err)

	yamlish := map[any]any{"k": 1}
	got, err := FromAny(yamlish)
	require.NoError(t, err)
	assert.Equal(t, Map{"k": Int(1)}, got)
}

func TestZeroValue(t *testing.T) {
	assert.Equal(t, Bool(false), ZeroValue(KindBool))
	assert.Equal(t, Int(0), ZeroValue(KindByte))
	assert.Equal(t, Int(0), ZeroValue(KindInt))
	assert.Equal(t, Float(0), ZeroValue(KindDouble))
	assert.Equal(t, String(""), ZeroValue(KindText))
}

func TestWithOrderDoesNotMutate(t *testing.T) {
	s := NewScalar("a", KindInt, Bytes(4))
	b := s.WithOrder(Big)
	assert.Nil(t, s.Order)
	require.NotNil(t, b.Order)
	assert.Equal(t, Big, *b.Order)
}

package handex

// variant captures everything that differs between the Wide and Short
// stores: handle bit layout, bit-width range, and whether alternate-row
// overflow applies. The engine in store.go is written once against this
// configuration rather than duplicated per variant.
type variant struct {
	name string

	minBitWidth     int
	maxBitWidth     int
	defaultBitWidth int

	// shiftBits is the amount the row number is shifted by when packing a
	// handle: 32 for Wide ((row<<32)|index, index in [0,2^24)), 8 for
	// Short ((row<<8)|index, index in [0,256)). This is the wire-layout
	// shift, not the valid index range — Wide reserves a 32-bit low field
	// but only ever populates its low 24 bits, since rowThreshold never
	// lets fill(row) exceed 31^2.
	shiftBits uint

	// rowThreshold bounds fill(row) as a function of the current bit
	// width: bitWidth^2 for Wide, (bitWidth-8)^2 for Short.
	rowThreshold func(bitWidth int) int32

	// alternateRows enables the Short-store 4-way overflow scheme once
	// rowThreshold(bitWidth) >= 256 and bitWidth is at its maximum.
	alternateRows bool
}

func (vr variant) clampBitWidth(bitWidth int) int {
	if bitWidth < vr.minBitWidth {
		return vr.minBitWidth
	}
	if bitWidth > vr.maxBitWidth {
		return vr.maxBitWidth
	}
	return bitWidth
}

// packHandle combines a row number and in-row index into the handle value.
// Both variants use the same shift-and-or shape; only shiftBits differs.
func (vr variant) packHandle(row uint64, index int32) uint64 {
	return (row << vr.shiftBits) | uint64(uint32(index))
}

// unpackHandle splits a handle back into its row and index parts.
func (vr variant) unpackHandle(handle uint64) (row uint64, index int32) {
	mask := (uint64(1) << vr.shiftBits) - 1
	return handle >> vr.shiftBits, int32(handle & mask)
}

var wideVariant = variant{
	name:            "wide",
	minBitWidth:     8,
	maxBitWidth:     31,
	defaultBitWidth: 8, // spec default of 4 is clamped up to the minimum of 8
	shiftBits:       32,
	rowThreshold: func(bitWidth int) int32 {
		return int32(bitWidth) * int32(bitWidth)
	},
}

var shortVariant = variant{
	name:            "short",
	minBitWidth:     9,
	maxBitWidth:     24,
	defaultBitWidth: 10,
	shiftBits:       8,
	alternateRows:   true,
	rowThreshold: func(bitWidth int) int32 {
		d := int32(bitWidth - 8)
		return d * d
	},
}

package handex

// Encoder produces the canonical byte encoding of a value, used both to
// compute its fingerprint and (by an external persistence layer) to write it
// to durable media. The encoding must be deterministic: two values that
// compare equal under V's own equality must encode identically. The
// encoding only selects a value's row and signature; the store matches
// stored values with V's == operator, so two values that encode
// identically but compare unequal are interned as separate values.
//
// Implementations must be pure and safe for concurrent use; the store calls
// Encode from many goroutines without synchronization.
type Encoder[V comparable] interface {
	Encode(v V) []byte
}

// StringEncoder is the Encoder for V = string. It returns a zero-copy view
// of the string's bytes.
type StringEncoder struct{}

// Encode returns the UTF-8 bytes of v without copying.
func (StringEncoder) Encode(v string) []byte {
	return unsafeStringBytes(v)
}


package mathutil

import "cmp"

// Number is any ordered numeric type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Sign returns 1 for x >= 0 and -1 otherwise. Zero is positive; NaN is negative.
func Sign[T Number](x T) int {
	if cmp.Less(x, 0) {
		return -1
	}
	return 1
}

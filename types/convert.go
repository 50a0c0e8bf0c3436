package types

import (
	"fmt"
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// NarrowInt converts v to the signed integer type T, failing with
// ErrUnsupportedValue when v does not fit.
func NarrowInt[T constraints.Signed](v int64) (T, error) {
	t := T(v)
	if int64(t) != v {
		return 0, Unsupported(v, typeName[T](), "out of range")
	}
	return t, nil
}

// NarrowUint converts v to the unsigned integer type T, failing with
// ErrUnsupportedValue when v does not fit.
func NarrowUint[T constraints.Unsigned](v uint64) (T, error) {
	t := T(v)
	if uint64(t) != v {
		return 0, Unsupported(v, typeName[T](), "out of range")
	}
	return t, nil
}

// IntToUint converts a native signed value to uint64, rejecting negatives.
func IntToUint(v int64) (uint64, error) {
	if v < 0 {
		return 0, Unsupported(v, "uint64", "negative value")
	}
	return uint64(v), nil
}

// UintToInt converts v to int64, rejecting values above math.MaxInt64.
func UintToInt(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, Unsupported(v, "int64", "exceeds the largest signed 64-bit integer")
	}
	return int64(v), nil
}

// FloatToInt converts an integral float to int64. Fractional or out of range
// values fail instead of being truncated.
func FloatToInt(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, Unsupported(v, "int64", "not an integral value")
	}
	// 2^63 is exactly representable, MaxInt64 is not.
	if v < math.MinInt64 || v >= math.Exp2(63) {
		return 0, Unsupported(v, "int64", "out of range")
	}
	return int64(v), nil
}

// NarrowFloat32 converts v to float32. Finite values beyond the float32 range
// fail; precision loss within range is accepted.
func NarrowFloat32(v float64) (float32, error) {
	if !math.IsInf(v, 0) && !math.IsNaN(v) && math.Abs(v) > math.MaxFloat32 {
		return 0, Unsupported(v, "float32", "out of range")
	}
	return float32(v), nil
}

func typeName[T any]() string {
	return fmt.Sprint(reflect.TypeFor[T]())
}

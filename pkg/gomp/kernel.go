package gomp

import (
	"encoding/binary"
	"math"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// kernelFunc folds right into left, in place, over two equal-length typed
// byte slices. The element size is implied by the datatype that produced
// it; the match engine never sees this — it is byte-oriented, per
// spec.md §4.8.
//
// Grounded on the teacher's types/state_machine.go Commit-by-Operation-
// kind switch (dispatch by a kind tag, never by reflection), generalized
// from a two-case (Command, Query) switch to the full (op-kind,
// datatype-kind) product this spec's reductions require.
type kernelFunc func(left, right []byte)

var errUnsupportedCombo = func(op types.OpKind, dt types.DatatypeKind) *types.Error {
	return types.NewError(types.KindInvalidDatatype, "operation %d not supported for datatype kind %d", op, dt)
}

// lookupKernel returns the fold function for (op, dtype), or an
// invalid-datatype error if the combination is unsupported.
func lookupKernel(op Operation, dtype Datatype) (kernelFunc, error) {
	switch dtype.Kind() {
	case types.KindInt8:
		return kernelFor(op.Kind(), dtype.Kind(), foldInt8)
	case types.KindUint8:
		return kernelFor(op.Kind(), dtype.Kind(), foldUint8)
	case types.KindInt16:
		return kernelFor(op.Kind(), dtype.Kind(), foldInt16)
	case types.KindUint16:
		return kernelFor(op.Kind(), dtype.Kind(), foldUint16)
	case types.KindInt32:
		return kernelFor(op.Kind(), dtype.Kind(), foldInt32)
	case types.KindUint32:
		return kernelFor(op.Kind(), dtype.Kind(), foldUint32)
	case types.KindInt64:
		return kernelFor(op.Kind(), dtype.Kind(), foldInt64)
	case types.KindUint64:
		return kernelFor(op.Kind(), dtype.Kind(), foldUint64)
	case types.KindFloat32:
		return kernelForFloat(op.Kind(), dtype.Kind(), foldFloat32)
	case types.KindFloat64:
		return kernelForFloat(op.Kind(), dtype.Kind(), foldFloat64)
	case types.KindByte, types.KindPacked:
		return kernelBitwiseOnly(op.Kind(), dtype.Kind(), foldUint8)
	case types.KindBool:
		return kernelBool(op.Kind(), dtype.Kind())
	case kindLocInt:
		return kernelLocInt(op.Kind())
	case kindLocFloat:
		return kernelLocFloat(op.Kind())
	default:
		return nil, errUnsupportedCombo(op.Kind(), dtype.Kind())
	}
}

// ---- ordered (max/min/sum/prod) + bitwise (and/or/xor) integer combos ----

func kernelFor[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64](
	op types.OpKind, dt types.DatatypeKind, fold func([]byte, []byte, func(a, b T) T),
) (kernelFunc, error) {
	if c, ok := orderedCombine[T](op); ok {
		return func(l, r []byte) { fold(l, r, c) }, nil
	}
	if c, ok := bitwiseCombine[T](op); ok {
		return func(l, r []byte) { fold(l, r, c) }, nil
	}
	return nil, errUnsupportedCombo(op, dt)
}

func kernelBitwiseOnly[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64](
	op types.OpKind, dt types.DatatypeKind, fold func([]byte, []byte, func(a, b T) T),
) (kernelFunc, error) {
	if c, ok := bitwiseCombine[T](op); ok {
		return func(l, r []byte) { fold(l, r, c) }, nil
	}
	return nil, errUnsupportedCombo(op, dt)
}

func kernelForFloat[T float32 | float64](
	op types.OpKind, dt types.DatatypeKind, fold func([]byte, []byte, func(a, b T) T),
) (kernelFunc, error) {
	if c, ok := orderedFloatCombine[T](op); ok {
		return func(l, r []byte) { fold(l, r, c) }, nil
	}
	return nil, errUnsupportedCombo(op, dt)
}

func kernelBool(op types.OpKind, dt types.DatatypeKind) (kernelFunc, error) {
	switch op {
	case types.OpLogicalAnd:
		return func(l, r []byte) { foldBool(l, r, func(a, b bool) bool { return a && b }) }, nil
	case types.OpLogicalOr:
		return func(l, r []byte) { foldBool(l, r, func(a, b bool) bool { return a || b }) }, nil
	case types.OpLogicalXor:
		return func(l, r []byte) { foldBool(l, r, func(a, b bool) bool { return a != b }) }, nil
	default:
		return nil, errUnsupportedCombo(op, dt)
	}
}

func orderedCombine[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64](op types.OpKind) (func(a, b T) T, bool) {
	switch op {
	case types.OpMax:
		return func(a, b T) T {
			if a > b {
				return a
			}
			return b
		}, true
	case types.OpMin:
		return func(a, b T) T {
			if a < b {
				return a
			}
			return b
		}, true
	case types.OpSum:
		return func(a, b T) T { return a + b }, true
	case types.OpProd:
		return func(a, b T) T { return a * b }, true
	default:
		return nil, false
	}
}

func orderedFloatCombine[T float32 | float64](op types.OpKind) (func(a, b T) T, bool) {
	switch op {
	case types.OpMax:
		return func(a, b T) T {
			if a > b {
				return a
			}
			return b
		}, true
	case types.OpMin:
		return func(a, b T) T {
			if a < b {
				return a
			}
			return b
		}, true
	case types.OpSum:
		return func(a, b T) T { return a + b }, true
	case types.OpProd:
		return func(a, b T) T { return a * b }, true
	default:
		return nil, false
	}
}

func bitwiseCombine[T int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64](op types.OpKind) (func(a, b T) T, bool) {
	switch op {
	case types.OpBitwiseAnd:
		return func(a, b T) T { return a & b }, true
	case types.OpBitwiseOr:
		return func(a, b T) T { return a | b }, true
	case types.OpBitwiseXor:
		return func(a, b T) T { return a ^ b }, true
	default:
		return nil, false
	}
}

// ---- fixed-width byte <-> numeric folds ----

func foldInt8(left, right []byte, combine func(a, b int8) int8) {
	for i := 0; i < len(left); i++ {
		left[i] = byte(combine(int8(left[i]), int8(right[i])))
	}
}

func foldUint8(left, right []byte, combine func(a, b uint8) uint8) {
	for i := 0; i < len(left); i++ {
		left[i] = combine(left[i], right[i])
	}
}

func foldInt16(left, right []byte, combine func(a, b int16) int16) {
	for i := 0; i+2 <= len(left); i += 2 {
		a := int16(binary.LittleEndian.Uint16(left[i:]))
		b := int16(binary.LittleEndian.Uint16(right[i:]))
		binary.LittleEndian.PutUint16(left[i:], uint16(combine(a, b)))
	}
}

func foldUint16(left, right []byte, combine func(a, b uint16) uint16) {
	for i := 0; i+2 <= len(left); i += 2 {
		a := binary.LittleEndian.Uint16(left[i:])
		b := binary.LittleEndian.Uint16(right[i:])
		binary.LittleEndian.PutUint16(left[i:], combine(a, b))
	}
}

func foldInt32(left, right []byte, combine func(a, b int32) int32) {
	for i := 0; i+4 <= len(left); i += 4 {
		a := int32(binary.LittleEndian.Uint32(left[i:]))
		b := int32(binary.LittleEndian.Uint32(right[i:]))
		binary.LittleEndian.PutUint32(left[i:], uint32(combine(a, b)))
	}
}

func foldUint32(left, right []byte, combine func(a, b uint32) uint32) {
	for i := 0; i+4 <= len(left); i += 4 {
		a := binary.LittleEndian.Uint32(left[i:])
		b := binary.LittleEndian.Uint32(right[i:])
		binary.LittleEndian.PutUint32(left[i:], combine(a, b))
	}
}

func foldInt64(left, right []byte, combine func(a, b int64) int64) {
	for i := 0; i+8 <= len(left); i += 8 {
		a := int64(binary.LittleEndian.Uint64(left[i:]))
		b := int64(binary.LittleEndian.Uint64(right[i:]))
		binary.LittleEndian.PutUint64(left[i:], uint64(combine(a, b)))
	}
}

func foldUint64(left, right []byte, combine func(a, b uint64) uint64) {
	for i := 0; i+8 <= len(left); i += 8 {
		a := binary.LittleEndian.Uint64(left[i:])
		b := binary.LittleEndian.Uint64(right[i:])
		binary.LittleEndian.PutUint64(left[i:], combine(a, b))
	}
}

func foldFloat32(left, right []byte, combine func(a, b float32) float32) {
	for i := 0; i+4 <= len(left); i += 4 {
		a := math.Float32frombits(binary.LittleEndian.Uint32(left[i:]))
		b := math.Float32frombits(binary.LittleEndian.Uint32(right[i:]))
		binary.LittleEndian.PutUint32(left[i:], math.Float32bits(combine(a, b)))
	}
}

func foldFloat64(left, right []byte, combine func(a, b float64) float64) {
	for i := 0; i+8 <= len(left); i += 8 {
		a := math.Float64frombits(binary.LittleEndian.Uint64(left[i:]))
		b := math.Float64frombits(binary.LittleEndian.Uint64(right[i:]))
		binary.LittleEndian.PutUint64(left[i:], math.Float64bits(combine(a, b)))
	}
}

func foldBool(left, right []byte, combine func(a, b bool) bool) {
	for i := 0; i < len(left); i++ {
		if combine(left[i] != 0, right[i] != 0) {
			left[i] = 1
		} else {
			left[i] = 0
		}
	}
}

// identity returns the identity element for (op, dtype), replicated count
// times, used by Exscan on rank 0 per spec.md §4.7.
func identity(op Operation, dtype Datatype, count int) ([]byte, error) {
	size := dtype.Size() * count
	buf := make([]byte, size)
	switch op.Kind() {
	case types.OpSum, types.OpLogicalOr, types.OpLogicalXor, types.OpBitwiseOr, types.OpBitwiseXor:
		return buf, nil // zero value
	case types.OpBitwiseAnd:
		for i := range buf {
			buf[i] = 0xFF
		}
		return buf, nil
	case types.OpLogicalAnd:
		for i := range buf {
			buf[i] = 1
		}
		return buf, nil
	case types.OpProd:
		return identityOne(dtype, count)
	case types.OpMax:
		return identityExtreme(dtype, count, false)
	case types.OpMin:
		return identityExtreme(dtype, count, true)
	default:
		return nil, types.NewError(types.KindInvalidDatatype, "operation %d has no identity element", op.Kind())
	}
}

func identityOne(dtype Datatype, count int) ([]byte, error) {
	buf := make([]byte, dtype.Size()*count)
	for i := 0; i < count; i++ {
		switch dtype.Kind() {
		case types.KindInt8, types.KindUint8, types.KindByte, types.KindPacked, types.KindBool:
			buf[i] = 1
		case types.KindInt16, types.KindUint16:
			binary.LittleEndian.PutUint16(buf[i*2:], 1)
		case types.KindInt32, types.KindUint32:
			binary.LittleEndian.PutUint32(buf[i*4:], 1)
		case types.KindInt64, types.KindUint64:
			binary.LittleEndian.PutUint64(buf[i*8:], 1)
		case types.KindFloat32:
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(1))
		case types.KindFloat64:
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(1))
		default:
			return nil, types.NewError(types.KindInvalidDatatype, "product identity undefined for datatype kind %d", dtype.Kind())
		}
	}
	return buf, nil
}

func identityExtreme(dtype Datatype, count int, wantMax bool) ([]byte, error) {
	buf := make([]byte, dtype.Size()*count)
	put := func(i int, max64, min64 int64, umax64, umin64 uint64, maxF, minF float64) error {
		switch dtype.Kind() {
		case types.KindInt8:
			v := int8(math.MinInt8)
			if wantMax {
				v = math.MaxInt8
			}
			buf[i] = byte(v)
		case types.KindUint8:
			v := uint8(umin64)
			if wantMax {
				v = uint8(umax64)
			}
			buf[i] = v
		case types.KindInt16:
			v := int16(math.MinInt16)
			if wantMax {
				v = math.MaxInt16
			}
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(v))
		case types.KindUint16:
			v := uint16(umin64)
			if wantMax {
				v = uint16(umax64)
			}
			binary.LittleEndian.PutUint16(buf[i*2:], v)
		case types.KindInt32:
			v := int32(math.MinInt32)
			if wantMax {
				v = math.MaxInt32
			}
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
		case types.KindUint32:
			v := uint32(umin64)
			if wantMax {
				v = uint32(umax64)
			}
			binary.LittleEndian.PutUint32(buf[i*4:], v)
		case types.KindInt64:
			v := min64
			if wantMax {
				v = max64
			}
			binary.LittleEndian.PutUint64(buf[i*8:], uint64(v))
		case types.KindUint64:
			v := umin64
			if wantMax {
				v = umax64
			}
			binary.LittleEndian.PutUint64(buf[i*8:], v)
		case types.KindFloat32:
			v := minF
			if wantMax {
				v = maxF
			}
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)))
		case types.KindFloat64:
			v := minF
			if wantMax {
				v = maxF
			}
			binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
		default:
			return types.NewError(types.KindInvalidDatatype, "max/min identity undefined for datatype kind %d", dtype.Kind())
		}
		return nil
	}
	for i := 0; i < count; i++ {
		if err := put(i, math.MaxInt64, math.MinInt64, math.MaxUint64, 0, math.MaxFloat64, -math.MaxFloat64); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

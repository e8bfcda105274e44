package gomp

import (
	"encoding/binary"
	"math"

	"github.com/jabolina/gomp/pkg/gomp/types"
)

// kindLocInt and kindLocFloat tag the value+index paired records MinLoc and
// MaxLoc reduce over. They live outside the types package's predefined
// datatype enumeration since they are a derived record shape, not a scalar
// wire type — the same way MPI's MPI_2INT/MPI_DOUBLE_INT are a distinct
// family from the scalar predefined types.
const (
	kindLocInt  types.DatatypeKind = 200
	kindLocFloat types.DatatypeKind = 201
)

// locRecordSize is 8 bytes of value followed by 8 bytes of index (int64),
// little-endian, for both LocInt and LocFloat.
const locRecordSize = 16

var (
	// LocInt is the record datatype for MinLoc/MaxLoc over integer values:
	// an int64 value followed by an int64 index.
	LocInt = types.NewDatatype(kindLocInt, locRecordSize)

	// LocFloat is the record datatype for MinLoc/MaxLoc over floating-point
	// values: a float64 value followed by an int64 index.
	LocFloat = types.NewDatatype(kindLocFloat, locRecordSize)
)

// PackLocInt encodes a (value, index) pair into a LocInt record.
func PackLocInt(value int64, index int64) []byte {
	buf := make([]byte, locRecordSize)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(value))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(index))
	return buf
}

// UnpackLocInt decodes a LocInt record back into its (value, index) pair.
func UnpackLocInt(buf []byte) (value int64, index int64) {
	return int64(binary.LittleEndian.Uint64(buf[0:8])), int64(binary.LittleEndian.Uint64(buf[8:16]))
}

// PackLocFloat encodes a (value, index) pair into a LocFloat record.
func PackLocFloat(value float64, index int64) []byte {
	buf := make([]byte, locRecordSize)
	binary.LittleEndian.PutUint64(buf[0:8], math.Float64bits(value))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(index))
	return buf
}

// UnpackLocFloat decodes a LocFloat record back into its (value, index) pair.
func UnpackLocFloat(buf []byte) (value float64, index int64) {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[0:8])), int64(binary.LittleEndian.Uint64(buf[8:16]))
}

// kernelLocInt folds LocInt records: the winning record is the one with the
// smaller (MinLoc) or larger (MaxLoc) value; ties keep the lower index, per
// spec.md §4.8's minloc/maxloc tie-break rule.
func kernelLocInt(op types.OpKind) (kernelFunc, error) {
	if op != types.OpMinLoc && op != types.OpMaxLoc {
		return nil, errUnsupportedCombo(op, kindLocInt)
	}
	wantMin := op == types.OpMinLoc
	return func(left, right []byte) {
		for i := 0; i+locRecordSize <= len(left); i += locRecordSize {
			lv, li := UnpackLocInt(left[i : i+locRecordSize])
			rv, ri := UnpackLocInt(right[i : i+locRecordSize])
			if locWins(lv < rv, lv > rv, li, ri, wantMin) {
				continue
			}
			copy(left[i:i+locRecordSize], PackLocInt(rv, ri))
		}
	}, nil
}

// kernelLocFloat is kernelLocInt's floating-point twin.
func kernelLocFloat(op types.OpKind) (kernelFunc, error) {
	if op != types.OpMinLoc && op != types.OpMaxLoc {
		return nil, errUnsupportedCombo(op, kindLocFloat)
	}
	wantMin := op == types.OpMinLoc
	return func(left, right []byte) {
		for i := 0; i+locRecordSize <= len(left); i += locRecordSize {
			lv, li := UnpackLocFloat(left[i : i+locRecordSize])
			rv, ri := UnpackLocFloat(right[i : i+locRecordSize])
			if locWins(lv < rv, lv > rv, li, ri, wantMin) {
				continue
			}
			copy(left[i:i+locRecordSize], PackLocFloat(rv, ri))
		}
	}, nil
}

// locWins reports whether the left record should be kept in place of the
// right one, given whether left compared less-than or greater-than right.
func locWins(lessThan, greaterThan bool, leftIndex, rightIndex int64, wantMin bool) bool {
	if wantMin {
		if lessThan {
			return true
		}
		if greaterThan {
			return false
		}
	} else {
		if greaterThan {
			return true
		}
		if lessThan {
			return false
		}
	}
	// Equal values: keep the lower index.
	return leftIndex <= rightIndex
}

package gomp

import "github.com/jabolina/gomp/pkg/gomp/types"

// Datatype is re-exported from types so callers write gomp.Int32 rather
// than reaching into the internal package.
type Datatype = types.Datatype

var (
	Int8       = types.Int8
	Uint8      = types.Uint8
	Int16      = types.Int16
	Uint16     = types.Uint16
	Int32      = types.Int32
	Uint32     = types.Uint32
	Int64      = types.Int64
	Uint64     = types.Uint64
	Float32    = types.Float32
	Float64    = types.Float64
	LongDouble = types.LongDouble
	Byte       = types.Byte
	Packed     = types.Packed
	Bool       = types.Bool

	ComplexFloat  = types.ComplexFloat
	ComplexDouble = types.ComplexDouble
	ComplexLong   = types.ComplexLong
)

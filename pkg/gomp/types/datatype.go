package types

// DatatypeKind tags a Datatype with the element kind reduction kernels
// dispatch on. The match engine never looks at this value — it only ever
// sees byte counts — but the kernel table keyed in pkg/gomp does.
type DatatypeKind uint8

const (
	KindInvalid DatatypeKind = iota
	KindInt8
	KindUint8
	KindInt16
	KindUint16
	KindInt32
	KindUint32
	KindInt64
	KindUint64
	KindFloat32
	KindFloat64
	KindLongDouble
	KindByte
	KindPacked
	KindBool
	KindComplexFloat
	KindComplexDouble
	KindComplexLongDouble
)

// Datatype is an opaque, value-like, immutable descriptor: an element size
// in bytes and a kind tag. Predefined datatypes below are the only ones
// this runtime needs — derived/strided datatypes are out of scope.
type Datatype struct {
	kind DatatypeKind
	size int
}

// Kind returns the datatype's kind tag.
func (d Datatype) Kind() DatatypeKind { return d.kind }

// Size returns the element size in bytes.
func (d Datatype) Size() int { return d.size }

// NewDatatype constructs a Datatype value. Exported so user code can define
// additional fixed-width datatypes (e.g. the minloc/maxloc pair records)
// without reaching into package-private fields.
func NewDatatype(kind DatatypeKind, size int) Datatype {
	return Datatype{kind: kind, size: size}
}

var (
	Int8          = NewDatatype(KindInt8, 1)
	Uint8         = NewDatatype(KindUint8, 1)
	Int16         = NewDatatype(KindInt16, 2)
	Uint16        = NewDatatype(KindUint16, 2)
	Int32         = NewDatatype(KindInt32, 4)
	Uint32        = NewDatatype(KindUint32, 4)
	Int64         = NewDatatype(KindInt64, 8)
	Uint64        = NewDatatype(KindUint64, 8)
	Float32       = NewDatatype(KindFloat32, 4)
	Float64       = NewDatatype(KindFloat64, 8)
	LongDouble    = NewDatatype(KindLongDouble, 16)
	Byte          = NewDatatype(KindByte, 1)
	Packed        = NewDatatype(KindPacked, 1)
	Bool          = NewDatatype(KindBool, 1)
	ComplexFloat  = NewDatatype(KindComplexFloat, 8)
	ComplexDouble = NewDatatype(KindComplexDouble, 16)
	ComplexLong   = NewDatatype(KindComplexLongDouble, 32)
)

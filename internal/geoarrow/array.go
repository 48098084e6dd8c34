package geoarrow

// Array is the shared contract every geometry array variant satisfies
// (spec §4.3).
type Array interface {
	DataType() GeoArrowType
	Len() int
	IsNull(i int) bool
	IsValid(i int) bool
	NullCount() int
	Slice(offset, length int) Array
}

// arrayBase holds the fields common to every variant: its logical
// type and validity bitmap. Embedded by each concrete array.
type arrayBase struct {
	dataType GeoArrowType
	length   int
	nulls    *nullBitmap
}

func (a *arrayBase) DataType() GeoArrowType { return a.dataType }
func (a *arrayBase) Len() int               { return a.length }
func (a *arrayBase) IsNull(i int) bool      { return !a.nulls.isValid(i) }
func (a *arrayBase) IsValid(i int) bool     { return a.nulls.isValid(i) }
func (a *arrayBase) NullCount() int         { return a.nulls.nullCount() }

func (a *arrayBase) sliceBase(offset, length int) arrayBase {
	return arrayBase{dataType: a.dataType, length: length, nulls: a.nulls.slice(offset, length)}
}

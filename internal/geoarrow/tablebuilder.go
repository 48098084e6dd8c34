package geoarrow

// TableBuilder is the record-batch-oriented streaming contract spec
// §6.6 describes for file-format frontends that live outside the core
// (FlatGeobuf, Shapefile, CSV, GeoJSON sinks, ...): a frontend opens a
// row's properties, pushes its geometry, closes the row, and repeats,
// finishing into a Table once the source is exhausted. The core
// exposes the interface; no adapter implementing it lives here.
type TableBuilder interface {
	// PropertiesBegin starts a new row's non-geometry property values.
	PropertiesBegin() error
	// PropertiesEnd closes the row's property values.
	PropertiesEnd() error
	// PushGeometry appends the row's geometry value.
	PushGeometry(g AnyGeometryTrait) error
	// FeatureEnd finalizes the row identified by rowID.
	FeatureEnd(rowID int) error
	// Finish seals every buffered row into an immutable Table.
	Finish() (*Table, error)
}

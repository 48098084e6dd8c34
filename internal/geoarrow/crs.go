package geoarrow

import (
	"bytes"
	"encoding/json"
)

// ProjJSONTransform extracts a PROJJSON document from the opaque CRS
// value carried by Metadata.CRS (spec §6.5: "extract_projjson(opaque_crs)
// -> Option<JSON>"). It returns false when no PROJJSON can be produced
// from the input, e.g. a bare authority:code string rather than a full
// PROJJSON object. Hosts inject their own transform at construction
// (spec §9 "Global state: none"); the core never installs one globally.
type ProjJSONTransform func(opaque json.RawMessage) (json.RawMessage, bool)

// DefaultProjJSONTransform is the system-provided §6.5 implementation:
// it passes already-PROJJSON inputs through unchanged and returns false
// for anything else.
func DefaultProjJSONTransform(opaque json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(opaque)
	if len(trimmed) == 0 || !json.Valid(trimmed) || trimmed[0] != '{' {
		return nil, false
	}
	return opaque, true
}

package geoarrow

import "fmt"

// Kind classifies the errors the core can produce. See spec §7.
type Kind uint8

const (
	// InvalidGeoArrow covers physical/extension type mismatches, bad
	// metadata JSON, and unsupported dimension arity.
	InvalidGeoArrow Kind = iota
	// Overflow reports that an offset would not fit in 32 bits.
	Overflow
	// TypeMismatch reports a builder receiving an incompatible variant.
	TypeMismatch
	// InvalidStatistics reports a missing or wrongly-typed row-group statistic.
	InvalidStatistics
	// ParseError reports malformed WKB or WKT.
	ParseError
	// IOError is surfaced verbatim from the object-store/file layer.
	IOError
	// External wraps a dependency error not otherwise classifiable.
	External
)

func (k Kind) String() string {
	switch k {
	case InvalidGeoArrow:
		return "InvalidGeoArrow"
	case Overflow:
		return "Overflow"
	case TypeMismatch:
		return "TypeMismatch"
	case InvalidStatistics:
		return "InvalidStatistics"
	case ParseError:
		return "ParseError"
	case IOError:
		return "IO"
	case External:
		return "External"
	default:
		return "Unknown"
	}
}

// Error is the single typed error the core returns. It carries a
// classification plus a human-readable message, and optionally wraps
// an underlying cause so errors.Is/errors.As keep working.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrapError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

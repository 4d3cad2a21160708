package record

import (
	"fmt"
	"strconv"
	"strings"
)

// State classifies one cell into exactly one of five variants. Every
// component pattern-matches over these states rather than testing raw
// strings for emptiness.
type State string

const (
	// StatePresent means the cell holds real data.
	StatePresent State = "present"
	// StateNA means the source explicitly marked the cell not-applicable.
	StateNA State = "na"
	// StateNo means the source recorded an explicit "no". A recorded no is
	// valid data, not missing data.
	StateNo State = "no"
	// StateUnknown means the source explicitly marked the cell unknown.
	StateUnknown State = "unknown"
	// StateAbsent means the cell was empty, null, or never supplied.
	StateAbsent State = "absent"
)

// Value is the typed content of one canonical cell.
type Value struct {
	State State  `json:"state"`
	Raw   string `json:"raw,omitempty"` // original scalar text, set only when present
}

// Present creates a value holding real data
func Present(raw string) Value {
	return Value{State: StatePresent, Raw: raw}
}

// NA creates an explicit not-applicable value
func NA() Value {
	return Value{State: StateNA}
}

// No creates an explicit "no" value
func No() Value {
	return Value{State: StateNo}
}

// Unknown creates an explicit unknown value
func Unknown() Value {
	return Value{State: StateUnknown}
}

// Absent creates an absent value
func Absent() Value {
	return Value{State: StateAbsent}
}

// IsPresent returns true only for real data
func (v Value) IsPresent() bool {
	return v.State == StatePresent
}

// MissingForRequired reports whether the value counts as missing when the
// field is required. Explicit-NO counts as present: this distinction is the
// reason explicit missing-value classification exists.
func (v Value) MissingForRequired() bool {
	switch v.State {
	case StateAbsent, StateNA, StateUnknown:
		return true
	default:
		return false
	}
}

// String returns the display form of the value
func (v Value) String() string {
	switch v.State {
	case StatePresent:
		return v.Raw
	case StateNA:
		return "NA"
	case StateNo:
		return "NO"
	case StateUnknown:
		return "UNKNOWN"
	default:
		return "<absent>"
	}
}

// MissingVocab holds the literal vocabularies that map raw cell text onto
// explicit missing states. Matching is case-sensitive after whitespace trim.
type MissingVocab struct {
	NAValues      []string `json:"na_values" yaml:"na_values"`
	NoValues      []string `json:"no_values" yaml:"no_values"`
	UnknownValues []string `json:"unknown_values" yaml:"unknown_values"`
}

// Classify maps one raw scalar onto exactly one Value variant. It is total
// and deterministic: nil and blank cells are absent, vocabulary matches are
// applied in the stable order unknown, no, na, and anything else is present.
func (mv MissingVocab) Classify(raw interface{}) Value {
	if raw == nil {
		return Absent()
	}
	s := strings.TrimSpace(scalarString(raw))
	if s == "" {
		return Absent()
	}
	if matchVocab(s, mv.UnknownValues) {
		return Unknown()
	}
	if matchVocab(s, mv.NoValues) {
		return No()
	}
	if matchVocab(s, mv.NAValues) {
		return NA()
	}
	return Present(s)
}

func matchVocab(s string, vocab []string) bool {
	for _, v := range vocab {
		if s == strings.TrimSpace(v) {
			return true
		}
	}
	return false
}

// scalarString renders a raw scalar deterministically. Numeric formatting
// must not depend on locale or float printing modes.
func scalarString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

package record

import (
	"sort"
	"strconv"

	"impactproof/domain/core"
)

// Well-known logical role names. Configurations may add their own.
const (
	RoleEntityID  = "entity_id"
	RoleRecordID  = "record_id"
	RoleEventDate = "event_date"
)

// Roles maps logical role names onto physical column names. Role names are
// unique by construction; a role may be left unmapped when no check needs it.
type Roles map[string]string

// Column resolves a logical role to its physical column, falling back to the
// name itself so checks can address unmapped columns directly.
func (r Roles) Column(role string) string {
	if col, ok := r[role]; ok && col != "" {
		return col
	}
	return role
}

// RawRow is one source row as delivered by an input adapter: physical column
// name to raw scalar (string, number, bool, or nil for a missing marker).
type RawRow map[string]interface{}

// Record is one canonical row. Records are immutable after standardization;
// the engine never writes back to the source.
type Record struct {
	position int
	key      core.RecordKey
	values   map[string]Value
}

// NewRecord builds a canonical record. The values map is owned by the record
// after the call.
func NewRecord(position int, key core.RecordKey, values map[string]Value) Record {
	return Record{position: position, key: key, values: values}
}

// Position returns the record's zero-based position in the source batch
func (r Record) Position() int {
	return r.position
}

// Key returns the record identifier: the record_id role value when mapped
// and present, otherwise the row position rendered as "row:<n>".
func (r Record) Key() core.RecordKey {
	return r.key
}

// Value returns the classified value for a physical column. Columns the
// source never supplied classify as absent.
func (r Record) Value(column string) Value {
	if v, ok := r.values[column]; ok {
		return v
	}
	return Absent()
}

// Has reports whether the source supplied this column at all
func (r Record) Has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Columns returns the number of classified cells
func (r Record) Columns() int {
	return len(r.values)
}

// FieldNames returns the record's column names in sorted order
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.values))
	for col := range r.values {
		names = append(names, col)
	}
	sort.Strings(names)
	return names
}

// PositionKey renders a position-based record key
func PositionKey(position int) core.RecordKey {
	return core.RecordKey("row:" + strconv.Itoa(position))
}

package record

import (
	"fmt"

	"impactproof/domain/core"
)

// Standardize maps raw source rows onto canonical records. Classification is
// total (every cell lands in exactly one Value state) and deterministic, and
// output preserves input row order: drift bucketing and duplicate tie-breaks
// depend on it.
//
// Every mapped role must name a column present in at least one row's keys,
// otherwise the run is misconfigured and aborts with an unmapped-role error.
func Standardize(rows []RawRow, roles Roles, vocab MissingVocab) ([]Record, []string, error) {
	if len(rows) == 0 {
		return nil, nil, core.ErrEmptyDataset
	}

	seen := map[string]bool{}
	for _, row := range rows {
		for col := range row {
			seen[col] = true
		}
	}
	for role, col := range roles {
		if col == "" {
			continue // unmapped roles are allowed when no check needs them
		}
		if !seen[col] {
			return nil, nil, core.NewUnmappedRoleError(role, col)
		}
	}

	var warnings []string
	idColumn := ""
	if col, ok := roles[RoleRecordID]; ok && col != "" {
		idColumn = col
	}

	records := make([]Record, 0, len(rows))
	ragged := 0
	for i, row := range rows {
		values := make(map[string]Value, len(row))
		for col, raw := range row {
			values[col] = vocab.Classify(raw)
		}
		if len(row) != len(seen) {
			ragged++
		}

		key := PositionKey(i)
		if idColumn != "" {
			if v := values[idColumn]; v.IsPresent() {
				key = core.RecordKey(v.Raw)
			}
		}
		records = append(records, NewRecord(i, key, values))
	}

	if ragged > 0 {
		warnings = append(warnings, fmt.Sprintf("%d of %d rows are missing one or more columns; absent values assumed", ragged, len(rows)))
	}
	return records, warnings, nil
}

package models

// HydrateReport lists what Hydrate had to repair in persisted data.
type HydrateReport struct {
	// Replaced ids failed the shape check and were reset to catalog defaults.
	Replaced []string
	// Dropped ids failed the shape check (or collided) and had no default.
	Dropped []string
}

// Clean reports whether the persisted data was accepted verbatim.
func (r HydrateReport) Clean() bool {
	return len(r.Replaced) == 0 && len(r.Dropped) == 0
}

// Hydrate rebuilds a State from persisted lists and re-establishes the State
// invariants. Records failing Validate fall back to their catalog defaults
// when the id is a built-in, and are dropped otherwise. Duplicate ids keep
// their first occurrence; ledger entries already present in the field list
// are dropped.
func Hydrate(fields, deleted []IdentifierField) (State, HydrateReport) {
	var report HydrateReport
	state := State{
		Fields:  make([]IdentifierField, 0, len(fields)),
		Deleted: make([]IdentifierField, 0, len(deleted)),
	}
	seen := make(map[string]struct{}, len(fields)+len(deleted))

	accept := func(f IdentifierField) (IdentifierField, bool) {
		if _, dup := seen[f.ID]; dup {
			report.Dropped = append(report.Dropped, f.ID)
			return f, false
		}
		if f.Validate() == nil {
			seen[f.ID] = struct{}{}
			return f, true
		}
		if def, ok := CatalogEntry(f.ID); ok {
			seen[f.ID] = struct{}{}
			report.Replaced = append(report.Replaced, f.ID)
			return def, true
		}
		report.Dropped = append(report.Dropped, f.ID)
		return f, false
	}

	for _, f := range fields {
		if out, ok := accept(f); ok {
			state.Fields = append(state.Fields, out)
		}
	}
	for _, f := range deleted {
		if out, ok := accept(f); ok {
			state.Deleted = append(state.Deleted, out)
		}
	}
	return state, report
}

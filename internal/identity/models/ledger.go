package models

// Offer records a removed field in the ledger. Inserting an id that is
// already present is a no-op.
func (s State) Offer(field IdentifierField) State {
	if s.LedgerIndexOf(field.ID) >= 0 {
		return s
	}
	next := s.Clone()
	next.Deleted = append(next.Deleted, field)
	return next
}

// Restore moves the ledger entry for id to the end of the field list. When
// the field list already carries that id the entry is dropped without
// appending. found is false when the ledger has no such entry.
func (s State) Restore(id string) (next State, found bool) {
	li := s.LedgerIndexOf(id)
	if li < 0 {
		return s, false
	}
	next = s.Clone()
	entry := next.Deleted[li]
	next.Deleted = append(next.Deleted[:li:li], next.Deleted[li+1:]...)
	if next.IndexOf(id) < 0 {
		next.Fields = append(next.Fields, entry)
	}
	return next, true
}

// ClearLedger discards every pending soft delete.
func (s State) ClearLedger() State {
	next := s.Clone()
	next.Deleted = []IdentifierField{}
	return next
}

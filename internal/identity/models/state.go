package models

import (
	"strings"

	dErrors "idres/pkg/domain-errors"
)

// State is the whole identity-resolution configuration: the ordered field
// list and the soft-delete ledger.
//
// Invariants:
//   - ids in Fields are unique
//   - ids in Fields and ids in Deleted are disjoint
//   - every MatchLimit is >= 1
//
// Transitions are pure: each method returns a new State and leaves the
// receiver untouched, so callers can swap state only after a transition
// succeeds.
type State struct {
	Fields  []IdentifierField `json:"fields"`
	Deleted []IdentifierField `json:"deleted"`
}

// DefaultState is the first-ever configuration: catalog seed, empty ledger.
func DefaultState() State {
	return State{Fields: Catalog(), Deleted: []IdentifierField{}}
}

// Clone deep-copies both lists.
func (s State) Clone() State {
	out := State{
		Fields:  make([]IdentifierField, len(s.Fields)),
		Deleted: make([]IdentifierField, len(s.Deleted)),
	}
	copy(out.Fields, s.Fields)
	copy(out.Deleted, s.Deleted)
	return out
}

// IndexOf returns the position of id in the field list, or -1.
func (s State) IndexOf(id string) int {
	for i, f := range s.Fields {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// LedgerIndexOf returns the position of id in the ledger, or -1.
func (s State) LedgerIndexOf(id string) int {
	for i, f := range s.Deleted {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s State) checkIndex(i int) error {
	if i < 0 || i >= len(s.Fields) {
		return dErrors.New(dErrors.CodeInvalidInput, "field index out of range")
	}
	return nil
}

// Reorder moves the field at src so that it ends up at dst.
func (s State) Reorder(src, dst int) (State, error) {
	if err := s.checkIndex(src); err != nil {
		return s, err
	}
	if err := s.checkIndex(dst); err != nil {
		return s, err
	}
	next := s.Clone()
	if src == dst {
		return next, nil
	}
	moved := next.Fields[src]
	fields := append(next.Fields[:src:src], next.Fields[src+1:]...)
	fields = append(fields[:dst], append([]IdentifierField{moved}, fields[dst:]...)...)
	next.Fields = fields
	return next, nil
}

// ToggleEnabled flips the enabled flag at i.
func (s State) ToggleEnabled(i int) (State, error) {
	if err := s.checkIndex(i); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Fields[i].Enabled = !next.Fields[i].Enabled
	return next, nil
}

// SetMatchLimit sets the limit at i, clamped to MinMatchLimit.
func (s State) SetMatchLimit(i, limit int) (State, error) {
	if err := s.checkIndex(i); err != nil {
		return s, err
	}
	next := s.Clone()
	next.Fields[i].MatchLimit = max(MinMatchLimit, limit)
	return next, nil
}

// SetMatchFrequency sets the frequency at i. Unknown frequencies are rejected.
func (s State) SetMatchFrequency(i int, f MatchFrequency) (State, error) {
	if err := s.checkIndex(i); err != nil {
		return s, err
	}
	if !f.IsValid() {
		return s, dErrors.New(dErrors.CodeInvalidInput, "unknown match frequency: "+string(f))
	}
	next := s.Clone()
	next.Fields[i].MatchFrequency = f
	return next, nil
}

// AddCustom appends a user-defined identifier built from rawName.
// A name that is blank or normalizes to nothing is a no-op (added=false).
// A normalized id that is already configured or sitting in the ledger is
// rejected as a conflict.
func (s State) AddCustom(rawName string) (next State, added bool, err error) {
	if strings.TrimSpace(rawName) == "" {
		return s, false, nil
	}
	field := NewCustomField(rawName)
	if field.ID == "" {
		return s, false, nil
	}
	if s.IndexOf(field.ID) >= 0 {
		return s, false, dErrors.New(dErrors.CodeConflict, "identifier "+field.ID+" is already configured")
	}
	if s.LedgerIndexOf(field.ID) >= 0 {
		return s, false, dErrors.New(dErrors.CodeConflict, "identifier "+field.ID+" was removed; restore it instead")
	}
	next = s.Clone()
	next.Fields = append(next.Fields, field)
	return next, true, nil
}

// Remove deletes the field at i. Ledger-eligible fields are offered to the
// ledger; other custom fields are gone for good.
func (s State) Remove(i int) (next State, removed IdentifierField, ledgered bool, err error) {
	if err := s.checkIndex(i); err != nil {
		return s, IdentifierField{}, false, err
	}
	next = s.Clone()
	removed = next.Fields[i]
	next.Fields = append(next.Fields[:i:i], next.Fields[i+1:]...)
	if removed.LedgerEligible() {
		next = next.Offer(removed)
		ledgered = true
	}
	return next, removed, ledgered, nil
}

// RestoreDefaults appends every catalog entry missing from the field list,
// in catalog order, then clears the ledger.
func (s State) RestoreDefaults() (next State, appended []string) {
	next = s.Clone()
	for _, def := range catalog {
		if next.IndexOf(def.ID) >= 0 {
			continue
		}
		next.Fields = append(next.Fields, def)
		appended = append(appended, def.ID)
	}
	return next.ClearLedger(), appended
}

package models

import (
	"regexp"
	"strings"

	dErrors "idres/pkg/domain-errors"
)

// MatchFrequency is the window over which matches on an identifier are
// counted before they roll off.
type MatchFrequency string

const (
	FrequencyDaily    MatchFrequency = "Daily"
	FrequencyWeekly   MatchFrequency = "Weekly"
	FrequencyMonthly  MatchFrequency = "Monthly"
	FrequencyAnnually MatchFrequency = "Annually"
	FrequencyEver     MatchFrequency = "Ever"
)

// Frequencies lists every valid frequency, shortest window first.
var Frequencies = []MatchFrequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyMonthly,
	FrequencyAnnually,
	FrequencyEver,
}

func (f MatchFrequency) String() string {
	return string(f)
}

// IsValid checks whether the frequency is one of the five known windows.
func (f MatchFrequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyAnnually, FrequencyEver:
		return true
	}
	return false
}

// ParseMatchFrequency accepts any casing of a known frequency.
func ParseMatchFrequency(s string) (MatchFrequency, error) {
	for _, f := range Frequencies {
		if strings.EqualFold(strings.TrimSpace(s), string(f)) {
			return f, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "match frequency must be one of Daily, Weekly, Monthly, Annually, Ever")
}

// MinMatchLimit is the floor applied to every match limit.
const MinMatchLimit = 1

var idPattern = regexp.MustCompile(`^[a-z0-9_.]+$`)

// IdentifierField is one configurable identity dimension.
//
// Invariants:
//   - ID is non-empty and only contains [a-z0-9_.]
//   - MatchLimit >= 1
//   - MatchFrequency is one of the five known windows
//
// Position in the field list is the priority rank and lives outside the record.
type IdentifierField struct {
	ID             string         `json:"id"`
	DisplayName    string         `json:"display_name"`
	Enabled        bool           `json:"enabled"`
	IsCustom       bool           `json:"is_custom"`
	MatchLimit     int            `json:"match_limit"`
	MatchFrequency MatchFrequency `json:"match_frequency"`
}

// Validate checks the record shape. It is applied to persisted data on load.
func (f IdentifierField) Validate() error {
	if !idPattern.MatchString(f.ID) {
		return dErrors.New(dErrors.CodeValidation, "identifier id must be non-empty and match [a-z0-9_.]")
	}
	if f.MatchLimit < MinMatchLimit {
		return dErrors.New(dErrors.CodeValidation, "match limit must be at least 1")
	}
	if !f.MatchFrequency.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "unknown match frequency")
	}
	return nil
}

// LedgerEligible reports whether removing this field keeps it restorable.
// Catalog fields always are; custom fields only when allow-listed.
func (f IdentifierField) LedgerEligible() bool {
	return !f.IsCustom || IsAlwaysRestorable(f.ID)
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	disallowedID  = regexp.MustCompile(`[^a-z0-9_.]`)
)

// NormalizeID turns a display name into an identifier id: lowercase, runs of
// whitespace become "_", anything outside [a-z0-9_.] is dropped.
//
//	NormalizeID("Loyalty Card #") == "loyalty_card_"
func NormalizeID(raw string) string {
	id := strings.ToLower(strings.TrimSpace(raw))
	id = whitespaceRun.ReplaceAllString(id, "_")
	return disallowedID.ReplaceAllString(id, "")
}

// NewCustomField builds the record appended by "add custom field".
func NewCustomField(rawName string) IdentifierField {
	return IdentifierField{
		ID:             NormalizeID(rawName),
		DisplayName:    rawName,
		Enabled:        true,
		IsCustom:       true,
		MatchLimit:     MinMatchLimit,
		MatchFrequency: FrequencyEver,
	}
}

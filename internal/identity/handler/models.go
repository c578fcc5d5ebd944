package handler

import (
	"idres/internal/identity/models"
)

type AddFieldRequest struct {
	Name string `json:"name"`
}

type ReorderRequest struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

type SetLimitRequest struct {
	Limit int `json:"limit"`
}

type SetFrequencyRequest struct {
	Frequency string `json:"frequency"`
}

// FieldResponse is one identifier as shown to operators. Priority is the
// 1-based rank; deleted entries have none.
type FieldResponse struct {
	Priority        int    `json:"priority,omitempty" yaml:"priority,omitempty"`
	ID              string `json:"id" yaml:"id"`
	DisplayName     string `json:"display_name" yaml:"display_name"`
	Enabled         bool   `json:"enabled" yaml:"enabled"`
	IsCustom        bool   `json:"is_custom" yaml:"is_custom"`
	MatchLimit      int    `json:"match_limit" yaml:"match_limit"`
	MatchFrequency  string `json:"match_frequency" yaml:"match_frequency"`
	PayloadLocation string `json:"payload_location,omitempty" yaml:"payload_location,omitempty"`
}

type ConfigResponse struct {
	Fields  []FieldResponse `json:"fields" yaml:"fields"`
	Deleted []FieldResponse `json:"deleted" yaml:"deleted"`
}

type CatalogResponse struct {
	Identifiers []FieldResponse `json:"identifiers" yaml:"identifiers"`
	Frequencies []string        `json:"frequencies" yaml:"frequencies"`
}

func toFieldResponse(f models.IdentifierField, priority int) FieldResponse {
	return FieldResponse{
		Priority:        priority,
		ID:              f.ID,
		DisplayName:     f.DisplayName,
		Enabled:         f.Enabled,
		IsCustom:        f.IsCustom,
		MatchLimit:      f.MatchLimit,
		MatchFrequency:  string(f.MatchFrequency),
		PayloadLocation: models.PayloadLocation(f.ID),
	}
}

// ToConfigResponse renders a state for the API and the CLI.
func ToConfigResponse(st models.State) ConfigResponse {
	resp := ConfigResponse{
		Fields:  make([]FieldResponse, len(st.Fields)),
		Deleted: make([]FieldResponse, len(st.Deleted)),
	}
	for i, f := range st.Fields {
		resp.Fields[i] = toFieldResponse(f, i+1)
	}
	for i, f := range st.Deleted {
		resp.Deleted[i] = toFieldResponse(f, 0)
	}
	return resp
}

// ToCatalogResponse renders the built-in identifiers.
func ToCatalogResponse() CatalogResponse {
	cat := models.Catalog()
	resp := CatalogResponse{
		Identifiers: make([]FieldResponse, len(cat)),
		Frequencies: make([]string, len(models.Frequencies)),
	}
	for i, f := range cat {
		resp.Identifiers[i] = toFieldResponse(f, i+1)
	}
	for i, f := range models.Frequencies {
		resp.Frequencies[i] = string(f)
	}
	return resp
}

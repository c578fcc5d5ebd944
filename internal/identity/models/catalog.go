package models

// catalog is the built-in identifier table. Order matters: it seeds the field
// list and fixes the append order of "restore defaults".
var catalog = []IdentifierField{
	{ID: "user_id", DisplayName: "User ID", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "email", DisplayName: "Email", Enabled: true, MatchLimit: 5, MatchFrequency: FrequencyWeekly},
	{ID: "phone", DisplayName: "Phone", Enabled: true, IsCustom: true, MatchLimit: 5, MatchFrequency: FrequencyWeekly},
	{ID: "android.id", DisplayName: "Android ID", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "android.idfa", DisplayName: "Android IDFA", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "android.push_token", DisplayName: "Android Push Token", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "anonymous_id", DisplayName: "Anonymous ID", Enabled: true, MatchLimit: 5, MatchFrequency: FrequencyWeekly},
	{ID: "ga_client_id", DisplayName: "GA Client ID", Enabled: true, MatchLimit: 5, MatchFrequency: FrequencyWeekly},
	{ID: "ios.id", DisplayName: "iOS ID", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "ios.idfa", DisplayName: "iOS IDFA", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
	{ID: "ios.push_token", DisplayName: "iOS Push Token", Enabled: true, MatchLimit: 1, MatchFrequency: FrequencyEver},
}

// alwaysRestorable lists custom-flagged ids that still go to the ledger on
// removal.
var alwaysRestorable = map[string]struct{}{
	"phone": {},
}

// payloadLocations describes where each built-in identifier shows up in a
// tracked event. Display only.
var payloadLocations = map[string]string{
	"user_id":            "userId",
	"email":              "traits.email, context.traits.email, properties.email",
	"phone":              "traits.phone, context.traits.phone, properties.phone",
	"android.id":         "context.device.id (when context.device.type = android)",
	"android.idfa":       "context.device.advertisingId (when context.device.type = android)",
	"android.push_token": "context.device.token (when context.device.type = android)",
	"anonymous_id":       "anonymousId",
	"ga_client_id":       "context.integrations['Google Analytics'].clientId",
	"ios.id":             "context.device.id (when context.device.type = ios)",
	"ios.idfa":           "context.device.advertisingId (when context.device.type = ios)",
	"ios.push_token":     "context.device.token (when context.device.type = ios)",
}

// Catalog returns a copy of the built-in identifiers in seed order.
func Catalog() []IdentifierField {
	out := make([]IdentifierField, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogEntry looks up the built-in defaults for id.
func CatalogEntry(id string) (IdentifierField, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return IdentifierField{}, false
}

// IsAlwaysRestorable reports whether a custom-flagged id is kept in the ledger.
func IsAlwaysRestorable(id string) bool {
	_, ok := alwaysRestorable[id]
	return ok
}

// PayloadLocation returns where id appears in event payloads, or "" for
// custom identifiers.
func PayloadLocation(id string) string {
	return payloadLocations[id]
}

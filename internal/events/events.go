package events

import (
	"context"
	"time"
)

// Event topic constants
const (
	TopicConfigChanged    = "idres.config.changed"
	TopicWorkspaceChanged = "idres.workspace.changed"
)

// Config operations reported in ConfigChanged.Operation.
const (
	OpAddCustom         = "add_custom"
	OpRemove            = "remove"
	OpReorder           = "reorder"
	OpToggleEnabled     = "toggle_enabled"
	OpSetMatchLimit     = "set_match_limit"
	OpSetMatchFrequency = "set_match_frequency"
	OpRestore           = "restore"
	OpRestoreDefaults   = "restore_defaults"
)

// Event types

// ConfigChanged is emitted after every identity configuration mutation.
type ConfigChanged struct {
	EventID    string    `json:"event_id"`
	SessionID  string    `json:"session_id"`
	Operation  string    `json:"operation"`
	FieldID    string    `json:"field_id,omitempty"`
	Operator   string    `json:"operator,omitempty"`
	Order      []string  `json:"order"`   // field ids, highest priority first
	Deleted    []string  `json:"deleted"` // ledger ids
	Persisted  bool      `json:"persisted"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WorkspaceChanged is emitted when the workspace .env file changes on disk
// or through the API.
type WorkspaceChanged struct {
	EventID    string    `json:"event_id"`
	Source     string    `json:"source"` // "file" or "api"
	Keys       []string  `json:"keys"`   // keys whose values changed
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

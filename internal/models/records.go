package models

import "time"

// Version is one entry of the coarse undo log.
type Version struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry is one entry of the fine-grained operation log. Snapshot holds
// the document text from before the action ran.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Snapshot  string    `json:"snapshot"`
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
}

// SyncStatus records which view, if any, failed to parse.
type SyncStatus string

const (
	StatusSynced      SyncStatus = "synced"
	StatusErrorJSON   SyncStatus = "error-json"
	StatusErrorString SyncStatus = "error-string"
)

// ErrorSource names the view an ErrorInfo belongs to.
type ErrorSource string

const (
	SourceJSON   ErrorSource = "json"
	SourceString ErrorSource = "string"
)

// ErrorInfo describes a parse failure for display. Index is -1 and Line/Col
// are zero when the failure position is unknown.
type ErrorInfo struct {
	Source  ErrorSource `json:"source"`
	Message string      `json:"message"`
	Index   int         `json:"index"`
	Line    int         `json:"line,omitempty"`
	Col     int         `json:"col,omitempty"`
}

// HasPosition reports whether the error carries a location.
func (e ErrorInfo) HasPosition() bool { return e.Index >= 0 && e.Line > 0 }

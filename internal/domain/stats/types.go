package stats

import (
	"context"
	"time"

	"github.com/dermalens/skin-advisor/pkg/metrics"
)

// Entry is one usage log record. Entries are organized into per-day
// lists in the key-value store and expire after the retention period.
type Entry struct {
	ID          string             `json:"id"`
	Timestamp   time.Time          `json:"timestamp"`
	User        string             `json:"user"`
	Action      string             `json:"action"`
	ImageHash   string             `json:"imageHash,omitempty"`
	SkinType    string             `json:"skinType,omitempty"`
	Confidence  float64            `json:"confidence,omitempty"`
	DurationMS  int64              `json:"durationMs,omitempty"`
	Status      string             `json:"status"`
	ErrorDetail string             `json:"errorDetail,omitempty"`
	IP          string             `json:"ip,omitempty"`
	UserAgent   string             `json:"userAgent,omitempty"`
	Tokens      metrics.TokenUsage `json:"tokens"`
}

// Entry actions and statuses.
const (
	ActionAnalyze = "analyze"
	ActionLogin   = "login"

	StatusSuccess = "success"
	StatusError   = "error"
)

// UserStat aggregates one user's recorded activity.
type UserStat struct {
	User          string    `json:"user"`
	TotalAnalyses int64     `json:"totalAnalyses"`
	LastUsed      time.Time `json:"lastUsed"`
}

// Overview is the headline block of the admin dashboard.
type Overview struct {
	TotalAnalyses    int64 `json:"totalAnalyses"`
	UniqueImages     int64 `json:"uniqueImages"`
	Duplicates       int64 `json:"duplicates"`
	DuplicatePercent int   `json:"duplicatePercent"`
	Users            int   `json:"users"`
}

// Store is the opaque key-value backend. Every write used on the
// request path is best-effort; the service layer owns the swallowing.
type Store interface {
	AppendEntry(ctx context.Context, day string, entry Entry, retention time.Duration) error
	BumpUser(ctx context.Context, user string, lastUsed time.Time) error
	MarkImage(ctx context.Context, hash string) error
	EntriesByDay(ctx context.Context, day string, limit int) ([]Entry, error)
	Users(ctx context.Context) ([]UserStat, error)
	UniqueImageCount(ctx context.Context) (int64, error)
	IncrementAttempt(ctx context.Context, key string, window time.Duration) (int64, error)
}

package storagemodels

import (
	"log/slog"
	"time"
)

// LegacySource names one ad-hoc key a previous persistence scheme used for
// whole-draft snapshots. Reconciliation scans these alongside current keys.
type LegacySource struct {
	Source string `json:"source" yaml:"source"`
	Key    string `json:"key" yaml:"key"`
}

// EngineOptions configures one draft persistence session
type EngineOptions struct {
	Namespace            string          // Key namespace for section payloads (default: "proposal_drafts")
	SchemaVersion        string          // Envelope schema version stamped on writes (default: "2")
	DebounceInterval     time.Duration   // Quiet period before a pending save flushes (default: 500ms)
	RetentionWindow      time.Duration   // Age beyond which cleanup evicts entries (default: 24h)
	CompressionThreshold int             // Encoded size above which file content is dropped (default: 100 KB)
	MaxBytes             int64           // Storage byte budget for health reporting (default: 5 MB)
	LegacySources        []LegacySource  // Legacy snapshot keys scanned on reconciliation
	Clock                func() time.Time // Time source (default: time.Now)
	Logger               *slog.Logger    // Structured logger (default: slog.Default())
}

// DefaultEngineOptions returns default engine options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		Namespace:            "proposal_drafts",
		SchemaVersion:        "2",
		DebounceInterval:     500 * time.Millisecond,
		RetentionWindow:      24 * time.Hour,
		CompressionThreshold: 100 * 1024,
		MaxBytes:             5 * 1024 * 1024,
		Clock:                time.Now,
	}
}

// EngineOption is a functional option for configuring a session
type EngineOption func(*EngineOptions)

// WithNamespace sets the key namespace for section payloads
func WithNamespace(ns string) EngineOption {
	return func(opts *EngineOptions) {
		opts.Namespace = ns
	}
}

// WithSchemaVersion sets the envelope schema version stamped on writes
func WithSchemaVersion(v string) EngineOption {
	return func(opts *EngineOptions) {
		opts.SchemaVersion = v
	}
}

// WithDebounce sets the quiet period before a pending save flushes
func WithDebounce(d time.Duration) EngineOption {
	return func(opts *EngineOptions) {
		opts.DebounceInterval = d
	}
}

// WithRetention sets the age beyond which cleanup evicts entries
func WithRetention(d time.Duration) EngineOption {
	return func(opts *EngineOptions) {
		opts.RetentionWindow = d
	}
}

// WithCompressionThreshold sets the encoded size above which file content is dropped
func WithCompressionThreshold(bytes int) EngineOption {
	return func(opts *EngineOptions) {
		opts.CompressionThreshold = bytes
	}
}

// WithMaxBytes sets the storage byte budget used for health reporting
func WithMaxBytes(n int64) EngineOption {
	return func(opts *EngineOptions) {
		opts.MaxBytes = n
	}
}

// WithLegacySources sets the legacy snapshot keys scanned on reconciliation
func WithLegacySources(sources ...LegacySource) EngineOption {
	return func(opts *EngineOptions) {
		opts.LegacySources = sources
	}
}

// WithClock sets the time source, primarily for tests
func WithClock(clock func() time.Time) EngineOption {
	return func(opts *EngineOptions) {
		opts.Clock = clock
	}
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) EngineOption {
	return func(opts *EngineOptions) {
		opts.Logger = logger
	}
}

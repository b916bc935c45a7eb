// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

// Indexing pipeline constants
const (
	// DefaultConcurrency is the default number of photos indexed in parallel
	DefaultConcurrency = 200

	// DefaultChunkSize is the number of photos per chunk in chunked mode
	DefaultChunkSize = 500

	// DefaultRetryAttempts is the default number of attempts for retryable steps
	DefaultRetryAttempts = 4

	// DefaultRetryBaseDelayMs is the base delay in milliseconds before the first retry
	DefaultRetryBaseDelayMs = 500

	// MetricsLogInterval is the number of photos between throughput log lines
	MetricsLogInterval = 50
)

// Per-call deadlines on external services, in seconds. Each pipeline step
// carries its own deadline, so a hung call burns one retry attempt instead
// of stalling the whole run.
const (
	// StorageCallTimeoutSec bounds a single object store call
	StorageCallTimeoutSec = 60

	// RecognitionCallTimeoutSec bounds a single recognition service call
	RecognitionCallTimeoutSec = 120

	// DatabaseCallTimeoutSec bounds a single record store call
	DatabaseCallTimeoutSec = 30
)

// Canonical name constraints
const (
	// MaxCollectionIDLength is the maximum length of a recognition collection id
	MaxCollectionIDLength = 100

	// MaxExternalImageIDLength is the maximum length of a per-photo external image id
	MaxExternalImageIDLength = 255
)

// Remote listing constants
const (
	// FaceListPageSize is the page size when listing faces from the recognition service
	FaceListPageSize = 4096
)

// Cache TTLs in seconds
const (
	// EventListTTL is how long the event list stays cached
	EventListTTL = 300

	// EventStructureTTL is how long a single event structure stays cached
	EventStructureTTL = 600

	// PhotoListTTL is how long a photo listing stays cached
	PhotoListTTL = 120
)

// Web constants
const (
	// TokenLifetimeHours is the validity period of issued auth tokens
	TokenLifetimeHours = 2

	// DefaultPageSize is the default number of photos per listing page
	DefaultPageSize = 100
)

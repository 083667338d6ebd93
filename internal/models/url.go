package models

import "time"

// URLMapping represents a persisted association between a short key and
// its target URL.
type URLMapping struct {
	// ID is the internal identifier assigned by the store on creation.
	ID int64
	// Key is the short, URL-safe public identifier of the mapping.
	Key string
	// TargetURL is the original URL the key resolves to. It is immutable
	// after creation.
	TargetURL string
	// IsActive reports whether the mapping resolves for redirect purposes.
	// Inactive mappings remain visible to inspection.
	IsActive bool
	// Clicks counts successful resolutions of the mapping while it is active.
	Clicks int64
	// CreatedAt is the timestamp indicating when the mapping was created.
	CreatedAt time.Time
	// UpdatedAt is the timestamp indicating when the mapping was last touched.
	UpdatedAt time.Time
}

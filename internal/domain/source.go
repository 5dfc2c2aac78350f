package domain

import (
	"maps"
	"slices"
	"time"
)

// Platform types a source can point at.
const (
	PlatformGoogle      = "google"
	PlatformYelp        = "yelp"
	PlatformFacebook    = "facebook"
	PlatformTripAdvisor = "tripadvisor"
	PlatformTrustpilot  = "trustpilot"
	PlatformCustom      = "custom"
)

// Sync frequencies.
const (
	SyncHourly = "hourly"
	SyncDaily  = "daily"
	SyncWeekly = "weekly"
	SyncNever  = "never"
)

// ReviewSource is an external platform configuration. Disabled sources are
// meant to be skipped by sync; nothing syncs yet.
type ReviewSource struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Type          string            `json:"type"`
	URL           string            `json:"url,omitempty"`
	APIKey        string            `json:"api_key,omitempty"`
	Credentials   map[string]string `json:"credentials,omitempty"`
	Enabled       bool              `json:"enabled"`
	LastSync      *time.Time        `json:"last_sync,omitempty"`
	SyncFrequency string            `json:"sync_frequency"`
}

// Clone returns a deep copy.
func (s ReviewSource) Clone() ReviewSource {
	s.Credentials = maps.Clone(s.Credentials)
	if s.LastSync != nil {
		t := *s.LastSync
		s.LastSync = &t
	}
	return s
}

// SourcePatch is a shallow partial update of a ReviewSource.
type SourcePatch struct {
	Name          *string
	Type          *string
	URL           *string
	APIKey        *string
	Credentials   map[string]string
	Enabled       *bool
	LastSync      *time.Time
	SyncFrequency *string
}

// Apply merges the patch into s.
func (p SourcePatch) Apply(s *ReviewSource) {
	setIf(&s.Name, p.Name)
	setIf(&s.Type, p.Type)
	setIf(&s.URL, p.URL)
	setIf(&s.APIKey, p.APIKey)
	setIf(&s.Enabled, p.Enabled)
	setIf(&s.SyncFrequency, p.SyncFrequency)
	if p.Credentials != nil {
		s.Credentials = maps.Clone(p.Credentials)
	}
	if p.LastSync != nil {
		t := *p.LastSync
		s.LastSync = &t
	}
}

// ValidPlatforms returns the closed set of platform types.
func ValidPlatforms() []string {
	return []string{
		PlatformGoogle,
		PlatformYelp,
		PlatformFacebook,
		PlatformTripAdvisor,
		PlatformTrustpilot,
		PlatformCustom,
	}
}

// IsValidPlatform checks whether p is a known platform type.
func IsValidPlatform(p string) bool {
	return slices.Contains(ValidPlatforms(), p)
}

// ValidSyncFrequencies returns the set of sync frequencies.
func ValidSyncFrequencies() []string {
	return []string{SyncHourly, SyncDaily, SyncWeekly, SyncNever}
}

// IsValidSyncFrequency checks whether f is a known sync frequency.
func IsValidSyncFrequency(f string) bool {
	return slices.Contains(ValidSyncFrequencies(), f)
}

// Package credentials persists the console's session tuple between runs.
package credentials

import (
	"github.com/veridocs/go-kyc-console/users"
)

// RecordVersion is the current schema version of the persisted tuple.
// Records written under a different version load as empty so that schema
// changes never surface stale or misshapen credentials.
const RecordVersion = 1

// Record is the serialized session tuple. An empty Record means
// "no persisted session".
type Record struct {
	Version      int         `json:"version"`
	User         *users.User `json:"user,omitempty"`
	AccessToken  string      `json:"access_token,omitempty"`
	RefreshToken string      `json:"refresh_token,omitempty"`
}

// Empty reports whether the record carries no credentials at all.
func (r Record) Empty() bool {
	return r.User == nil && r.AccessToken == "" && r.RefreshToken == ""
}

// Consistent reports whether the record satisfies the session invariant:
// a user is present exactly when an access token is present. Inconsistent
// records indicate a corrupted write and must be discarded, not repaired.
func (r Record) Consistent() bool {
	return (r.User != nil) == (r.AccessToken != "")
}

// Store persists the credential tuple. Implementations must treat missing or
// corrupt data as an empty Record on Load rather than returning an error;
// Load errors are reserved for the underlying storage being unavailable.
// Clear is idempotent.
type Store interface {
	Save(record Record) error
	Load() (Record, error)
	Clear() error
}

package models

import (
	"net/mail"
	"strings"
	"time"

	dErrors "smartbin/pkg/domain-errors"
)

// Role gates privileged operations.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the supported values.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// ParseRole validates a role coming from an untrusted payload.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeValidation, "role must be 'user' or 'admin'")
	}
	return r, nil
}

// ScanEvent records one credited scan. Immutable once appended.
type ScanEvent struct {
	DustbinID string    `json:"dustbinId"`
	Timestamp time.Time `json:"timestamp"`
}

// Identity is a registered citizen or administrator.
//
// Invariants:
//   - Email is unique case-insensitively (enforced by the store)
//   - TotalPoints is never negative
//   - ScanHistory is newest first and bounded by the configured history limit
//   - PasswordHash never leaves the process
type Identity struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	TotalPoints  int
	ScanHistory  []ScanEvent
	Role         Role
	CreatedAt    time.Time
}

// NewIdentity builds a fresh identity with zero points and empty history.
func NewIdentity(id, name, email, passwordHash string, role Role, now time.Time) (*Identity, error) {
	if id == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "identity id cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name cannot be empty")
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, err.Error())
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &Identity{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		ScanHistory:  []ScanEvent{},
		Role:         role,
		CreatedAt:    now,
	}, nil
}

// IsAdmin reports whether the identity holds the privileged role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// RecordScan credits award points and prepends the event, keeping at most
// limit entries.
func (i *Identity) RecordScan(event ScanEvent, award, limit int) {
	i.TotalPoints += award
	history := make([]ScanEvent, 0, min(len(i.ScanHistory)+1, limit))
	history = append(history, event)
	for _, e := range i.ScanHistory {
		if len(history) >= limit {
			break
		}
		history = append(history, e)
	}
	i.ScanHistory = history
}

// LastScan returns the most recent scan instant, if any.
func (i *Identity) LastScan() (time.Time, bool) {
	if len(i.ScanHistory) == 0 {
		return time.Time{}, false
	}
	return i.ScanHistory[0].Timestamp, true
}

// Clone returns a deep copy so callers never share the store's history slice.
func (i *Identity) Clone() *Identity {
	c := *i
	c.ScanHistory = append([]ScanEvent(nil), i.ScanHistory...)
	return &c
}

// EmailKey is the case-insensitive uniqueness key for an email.
func EmailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeEmail trims and validates an address, preserving its case.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", dErrors.New(dErrors.CodeValidation, "email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", dErrors.New(dErrors.CodeValidation, "email is not a valid address")
	}
	return email, nil
}

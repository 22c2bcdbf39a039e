package admin

import (
	"time"

	idmodels "smartbin/internal/identity/models"
)

// DefaultRecentScans is used when no positive limit is given.
const DefaultRecentScans = 50

// MaxListLimit caps list endpoints.
const MaxListLimit = 1000

type UserSummary struct {
	ID          string
	Name        string
	Email       string
	TotalPoints int
	ScanCount   int
	Role        idmodels.Role
	CreatedAt   time.Time
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	Email       *string
	TotalPoints *int
	Role        *string
}

func (p Patch) empty() bool {
	return p.Name == nil && p.Email == nil && p.TotalPoints == nil && p.Role == nil
}

func (p Patch) fields() []string {
	var out []string
	if p.Name != nil {
		out = append(out, "name")
	}
	if p.Email != nil {
		out = append(out, "email")
	}
	if p.TotalPoints != nil {
		out = append(out, "totalPoints")
	}
	if p.Role != nil {
		out = append(out, "role")
	}
	return out
}

type DustbinStat struct {
	DustbinID string
	Location  string
	Scans     int
}

// Stats aggregates retained scan histories, so counts cover at most the
// newest entries kept per identity.
type Stats struct {
	TotalScans   int
	TotalUsers   int
	DustbinStats []DustbinStat
}

type RecentScan struct {
	UserID    string
	UserName  string
	UserEmail string
	DustbinID string
	Timestamp time.Time
}

package ledger

import (
	"fmt"
	"time"

	"smartbin/internal/dustbin"
	idmodels "smartbin/internal/identity/models"
)

// ScanResult is the outcome of a credited scan.
type ScanResult struct {
	Message     string
	IdentityID  string
	Dustbin     dustbin.Dustbin
	Awarded     int
	TotalPoints int
	Scan        idmodels.ScanEvent
}

// CooldownError reports a scan denied by policy. It is carried inside a
// rate_limited domain error; use errors.As to recover the wait.
type CooldownError struct {
	DustbinID  string
	RetryAfter time.Duration
	Minutes    int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("You recently scanned this dustbin. Try again in about %d minute(s).", e.Minutes)
}

// remainingWait returns how long until the pair may earn again, and that
// duration rounded up to whole minutes. A last instant in the future (clock
// skew) is treated as a scan at now.
func remainingWait(window, elapsed time.Duration) (time.Duration, int) {
	remaining := min(window-max(elapsed, 0), window)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return remaining, minutes
}

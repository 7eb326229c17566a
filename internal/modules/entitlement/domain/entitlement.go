package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	sharedErrors "github.com/reshetovitsme/tagless-channel-bot/internal/shared/errors"
	"github.com/samber/oops"
)

// Entitlement is a premium grant for one user with an absolute expiry.
type Entitlement struct {
	SubjectID int64     `json:"subject_id" gorm:"primaryKey;autoIncrement:false"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
	GrantedBy int64     `json:"granted_by"`
	GrantedAt time.Time `json:"granted_at"`
}

// Active reports whether the grant is still in force at now.
// Expiry is exclusive: at ExpiresAt the grant is already over.
func (e *Entitlement) Active(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

// Remaining returns the time left, zero once expired.
func (e *Entitlement) Remaining(now time.Time) time.Duration {
	if !e.Active(now) {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

// RemainingDays counts whole days left. It works on Unix seconds because
// time.Duration saturates for grants longer than about 292 years.
func (e *Entitlement) RemainingDays(now time.Time) int {
	if !e.Active(now) {
		return 0
	}
	return int((e.ExpiresAt.Unix() - now.Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// MaxDays is the longest grant accepted, one thousand years.
const MaxDays = 1000 * 365

var durationPattern = regexp.MustCompile(`^(\d+)\s*([a-z]*)$`)

// ParseDuration turns "30", "30d", "2w", "3months" or "1y" into a number of days.
// A month counts as 30 days and a year as 365.
func ParseDuration(s string) (int, error) {
	m := durationPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, oops.With("input", s).Wrap(sharedErrors.ErrInvalidDuration)
	}

	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, oops.With("input", s).Wrap(sharedErrors.ErrInvalidDuration)
	}

	var unit int
	switch m[2] {
	case "", "d", "day", "days":
		unit = 1
	case "w", "week", "weeks":
		unit = 7
	case "m", "month", "months":
		unit = 30
	case "y", "year", "years":
		unit = 365
	default:
		return 0, oops.With("input", s, "unit", m[2]).Wrap(sharedErrors.ErrInvalidDuration)
	}

	if n > MaxDays/unit {
		return 0, oops.With("input", s, "max_days", MaxDays).Wrap(sharedErrors.ErrInvalidDuration)
	}

	return n * unit, nil
}

// FormatDays renders a day count for replies.
func FormatDays(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

package gameday

import (
	"fmt"
	"time"
)

const (
	DefaultTimezone    = "America/New_York"
	DefaultCutoverHour = 1
	DateLayout         = "2006-01-02"
)

// Calendar maps instants onto game days. A game day starts at CutoverHour in
// Location rather than at local midnight.
type Calendar struct {
	Location    *time.Location
	CutoverHour int
}

func NewCalendar(timezone string, cutoverHour int) (Calendar, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Calendar{}, fmt.Errorf("load game day timezone %q: %w", timezone, err)
	}
	if cutoverHour < 0 || cutoverHour > 23 {
		return Calendar{}, fmt.Errorf("game day cutover hour must be within [0,23], got %d", cutoverHour)
	}
	return Calendar{Location: loc, CutoverHour: cutoverHour}, nil
}

func (c Calendar) location() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// Day returns the YYYY-MM-DD game day containing t.
func (c Calendar) Day(t time.Time) string {
	local := t.In(c.location())
	if local.Hour() < c.CutoverHour {
		local = local.AddDate(0, 0, -1)
	}
	return local.Format(DateLayout)
}

// IsNewGameDay reports whether now falls on a later game day than stored.
// An empty stored day counts as new.
func (c Calendar) IsNewGameDay(stored string, now time.Time) bool {
	if stored == "" {
		return true
	}
	return c.Day(now) > stored
}

// NextCutover returns the first cutover strictly after now.
func (c Calendar) NextCutover(now time.Time) time.Time {
	local := now.In(c.location())
	next := time.Date(local.Year(), local.Month(), local.Day(), c.CutoverHour, 0, 0, 0, c.location())
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, c.CutoverHour, 0, 0, 0, c.location())
	}
	return next
}

// CronSpec returns a daily cron expression firing at the cutover.
func (c Calendar) CronSpec() string {
	return fmt.Sprintf("CRON_TZ=%s 0 %d * * *", c.location().String(), c.CutoverHour)
}

func ValidDate(raw string) bool {
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

// Package clock provides an injectable zoned time source. All closure,
// review and avance timestamps are taken in a configured reporting
// timezone so that records read consistently regardless of server locale.
package clock

import (
	"fmt"
	"time"
)

// DefaultZone is the reporting timezone used when none is configured.
const DefaultZone = "America/Santiago"

// Clock supplies the current time in the reporting timezone.
type Clock interface {
	Now() time.Time
}

// Zoned is a Clock pinned to a named timezone.
type Zoned struct {
	loc *time.Location
}

// NewZoned creates a Zoned clock for the named timezone.
func NewZoned(zone string) (*Zoned, error) {
	if zone == "" {
		zone = DefaultZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", zone, err)
	}
	return &Zoned{loc: loc}, nil
}

// Now returns the current time in the configured zone.
func (c *Zoned) Now() time.Time {
	return time.Now().In(c.loc)
}

// Location returns the configured zone.
func (c *Zoned) Location() *time.Location {
	return c.loc
}

// Fixed is a Clock that returns a preset instant, for deterministic tests.
type Fixed struct {
	T time.Time
}

// Now returns the preset instant.
func (c *Fixed) Now() time.Time {
	return c.T
}

// Advance moves the preset instant forward and returns the new value.
func (c *Fixed) Advance(d time.Duration) time.Time {
	c.T = c.T.Add(d)
	return c.T
}

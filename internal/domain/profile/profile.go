// Package profile derives a Profile from raw request inputs: it parses the
// birth date, computes the age and splits the phone list.
package profile

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/okian/apidemo/internal/domain/model"
)

// Derivation constants.
const (
	// BirthDateLayout is the only accepted birth date shape (YYYY-MM-DD).
	BirthDateLayout = "2006-01-02"

	// PhoneSeparator splits the phone_numbers query value.
	PhoneSeparator = ","

	daysPerYear   = 365
	secondsPerDay = 24 * 60 * 60
)

// Input carries the raw, unvalidated request values.
type Input struct {
	Name         string
	BirthDate    string
	PhoneNumbers string
}

// Builder composes profiles. It holds no per-request state and is safe for
// concurrent use.
type Builder struct {
	now func() time.Time
}

// NewBuilder creates a Builder that reads the wall clock unless overridden.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses and derives a profile from in.
func (b *Builder) Build(_ context.Context, in Input) (model.Profile, error) {
	birth, err := ParseBirthDate(in.BirthDate)
	if err != nil {
		return model.Profile{}, err
	}
	// "today" is the UTC calendar date.
	age, err := AgeInYears(birth, b.now().UTC())
	if err != nil {
		return model.Profile{}, err
	}
	return model.Profile{
		Name:   in.Name,
		Age:    age,
		Phones: SplitPhones(in.PhoneNumbers),
	}, nil
}

// ParseBirthDate parses text strictly as a YYYY-MM-DD calendar date.
// Impossible dates such as 2023-13-01 or 2023-02-30 are rejected.
func ParseBirthDate(text string) (time.Time, error) {
	t, err := time.Parse(BirthDateLayout, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBirthDate, text)
	}
	return t, nil
}

// AgeInYears returns floor(days(today - birth) / 365), counting whole calendar
// days between the two dates in UTC. Leap days are not compensated for, so the
// result can run ahead of the calendar age around birthdays.
func AgeInYears(birth, today time.Time) (uint8, error) {
	days := DaysBetween(birth, today)
	if days < 0 {
		return 0, fmt.Errorf("%w: %s", ErrBirthDateInFuture, birth.Format(BirthDateLayout))
	}
	years := days / daysPerYear
	if years > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %d years", ErrAgeOutOfRange, years)
	}
	return uint8(years), nil
}

// DaysBetween counts calendar days from a to b; negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int((civilDate(b).Unix() - civilDate(a).Unix()) / secondsPerDay)
}

// SplitPhones splits text on commas. Tokens are neither trimmed nor
// validated, and empty segments are kept: "a," yields ["a" ""].
func SplitPhones(text string) []string {
	return strings.Split(text, PhoneSeparator)
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package smoke

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/okian/apidemo/internal/domain/model"
	"github.com/okian/apidemo/internal/domain/profile"
)

// ErrMismatch reports a response that disagrees with the expected profile.
var ErrMismatch = errors.New("profile mismatch")

// Verify checks got against the profile derived locally from c and today.
func Verify(c Case, got model.Profile, today time.Time) error {
	birth, err := profile.ParseBirthDate(c.BirthDate)
	if err != nil {
		return err
	}
	age, err := profile.AgeInYears(birth, today)
	if err != nil {
		return err
	}

	if got.Name != c.Name {
		return fmt.Errorf("%w: name %q, want %q", ErrMismatch, got.Name, c.Name)
	}
	if got.Age != age {
		return fmt.Errorf("%w: age %d, want %d", ErrMismatch, got.Age, age)
	}
	if want := profile.SplitPhones(c.Phones); !slices.Equal(got.Phones, want) {
		return fmt.Errorf("%w: phones %q, want %q", ErrMismatch, got.Phones, want)
	}
	return nil
}

package smoke

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/apidemo/internal/domain/profile"
	"github.com/okian/apidemo/pkg/logger"
)

// randomInt returns a uniform value in [0, n) using crypto/rand.
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// GenerateCases creates n cases with unique names and birth dates on or before today.
func GenerateCases(ctx context.Context, n int, today time.Time) ([]Case, error) {
	logger.Get().Debug(ctx, "generating cases", logger.Int("count", n))

	cases := make([]Case, n)
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("case generation cancelled: %w", err)
		}
		cases[i] = generateCase(today)
	}
	return cases, nil
}

func generateCase(today time.Time) Case {
	birth := today.AddDate(0, 0, -int(randomInt(maxAgeDays)))

	phones := make([]string, 1+randomInt(maxPhones))
	for i := range phones {
		phones[i] = fmt.Sprintf("%03d-%04d", randomInt(phoneDigitsHigh), randomInt(phoneDigitsLow))
	}

	return Case{
		Name:      "user-" + uuid.NewString(),
		BirthDate: birth.Format(profile.BirthDateLayout),
		Phones:    strings.Join(phones, profile.PhoneSeparator),
	}
}

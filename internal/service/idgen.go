package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"

	"gorm.io/gorm"

	"github.com/datara/scholarhub/internal/domain"
)

const (
	ApprovedApplicantPrefix = "APP"
	ScholarPrefix           = "SCH"

	idDigits     = 8
	idMaxRetries = 5
)

var (
	approvedApplicantIDPattern = regexp.MustCompile(`^APP\d{8}$`)
	scholarIDPattern           = regexp.MustCompile(`^SCH\d{8}$`)
	idSpace                    = big.NewInt(100_000_000)
)

// randomDigits is replaced in tests to force collisions.
var randomDigits = func() (string, error) {
	n, err := rand.Int(rand.Reader, idSpace)
	if err != nil {
		return "", fmt.Errorf("reading random digits: %w", err)
	}
	return fmt.Sprintf("%0*d", idDigits, n.Int64()), nil
}

// allocateID draws prefixed ids until exists reports a free one, then hands
// it to insert. A duplicate key from insert is a collision only when the id
// itself turned out to be taken; any other unique violation means the row
// already exists and is reported as ErrInvalidTransition.
func allocateID(ctx context.Context, prefix string, exists func(context.Context, string) (bool, error), insert func(id string) error) (string, error) {
	for attempt := 0; attempt < idMaxRetries; attempt++ {
		digits, err := randomDigits()
		if err != nil {
			return "", err
		}
		id := prefix + digits

		taken, err := exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("checking id %s: %w", id, err)
		}
		if taken {
			continue
		}

		if err := insert(id); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				return "", err
			}
			taken, recheckErr := exists(ctx, id)
			if recheckErr != nil {
				return "", fmt.Errorf("checking id %s: %w", id, recheckErr)
			}
			if taken {
				continue
			}
			return "", fmt.Errorf("%w: %v", domain.ErrInvalidTransition, err)
		}
		return id, nil
	}
	return "", domain.ErrIDSpaceExhausted
}

// IsApprovedApplicantID reports whether id has the APP######## form.
func IsApprovedApplicantID(id string) bool {
	return approvedApplicantIDPattern.MatchString(id)
}

// IsScholarID reports whether id has the SCH######## form.
func IsScholarID(id string) bool {
	return scholarIDPattern.MatchString(id)
}

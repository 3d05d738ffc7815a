// Package store persists UserData per user key.
package store

import (
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jarvis/internal/models"
)

// Provider loads and saves a user's data. Load returns nil, nil when the
// key has nothing stored.
type Provider interface {
	Load(ctx context.Context, userKey string) (*models.UserData, error)
	Save(ctx context.Context, userKey string, data *models.UserData) error
}

var userKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._@-]+$`)

// ValidateUserKey rejects keys that cannot be used as a file name or row key.
func ValidateUserKey(key string) error {
	return validation.Validate(key,
		validation.Required,
		validation.Length(1, 128),
		validation.Match(userKeyPattern),
		validation.NotIn(".", ".."),
	)
}

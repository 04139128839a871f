package repository

import (
	"context"
	"time"
)

type NewsletterRepository interface {
	Subscribe(ctx context.Context, email string, at time.Time) error
}

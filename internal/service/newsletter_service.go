package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
)

type NewsletterService interface {
	Subscribe(ctx context.Context, email string) error
}

type newsletterService struct {
	subscribers repository.NewsletterRepository
	publisher   EventPublisher
	mailer      Mailer
	log         logger.Logger
}

// NewNewsletterService builds the newsletter service. publisher and mailer may be nil.
func NewNewsletterService(subscribers repository.NewsletterRepository, publisher EventPublisher, mailer Mailer, log logger.Logger) NewsletterService {
	return &newsletterService{
		subscribers: subscribers,
		publisher:   publisher,
		mailer:      mailer,
		log:         log.Named("NewsletterService"),
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := s.subscribers.Subscribe(ctx, email, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return fmt.Errorf("subscriber %s: %w", email, repository.ErrAlreadyExists)
		}
		s.log.Errorf("Subscribe: email=%s: %v", email, err)
		return fmt.Errorf("failed to store subscriber: %w", err)
	}

	if s.mailer != nil {
		mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
		err := s.mailer.Send(mailCtx, email, "You're subscribed to Davici Furniture news",
			"<p>Thanks for subscribing. New arrivals and sales will land in your inbox.</p>",
			"Thanks for subscribing. New arrivals and sales will land in your inbox.")
		cancel()
		if err != nil {
			s.log.Warnf("Failed to send subscription confirmation to %s: %v", email, err)
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, SubjectNewsletterSubscribed, entity.NewsletterSubscribed{
			Email:      email,
			OccurredAt: now,
		}); err != nil {
			s.log.Warnf("Failed to publish %s: %v", SubjectNewsletterSubscribed, err)
		}
	}

	s.log.Infof("Subscribe: %s subscribed to the newsletter", email)
	return nil
}

package service

import (
	"context"
	"testing"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewsletterService_Subscribe(t *testing.T) {
	repo := new(MockNewsletterRepository)
	publisher := new(MockEventPublisher)
	mailer := new(MockMailer)
	svc := NewNewsletterService(repo, publisher, mailer, logger.NewNop())

	repo.On("Subscribe", mock.Anything, "fan@example.com", mock.Anything).Return(nil).Once()
	mailer.On("Send", mock.Anything, "fan@example.com", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	publisher.On("Publish", mock.Anything, SubjectNewsletterSubscribed, mock.Anything).Return(nil).Once()

	require.NoError(t, svc.Subscribe(context.Background(), " Fan@Example.com"))
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestNewsletterService_Subscribe_Duplicate(t *testing.T) {
	repo := new(MockNewsletterRepository)
	svc := NewNewsletterService(repo, nil, nil, logger.NewNop())

	repo.On("Subscribe", mock.Anything, "fan@example.com", mock.Anything).Return(repository.ErrAlreadyExists).Once()

	err := svc.Subscribe(context.Background(), "fan@example.com")
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestNewsletterService_Subscribe_InvalidEmail(t *testing.T) {
	repo := new(MockNewsletterRepository)
	svc := NewNewsletterService(repo, nil, nil, logger.NewNop())

	for _, email := range []string{"", "nope", "Fan <fan@example.com>"} {
		err := svc.Subscribe(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidInput, email)
	}
	repo.AssertNotCalled(t, "Subscribe", mock.Anything, mock.Anything, mock.Anything)
}

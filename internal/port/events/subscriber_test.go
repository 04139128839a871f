package events

import (
	"context"
	"errors"
	"testing"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Dispatch(ctx context.Context, event entity.AuthStateChanged) (*service.SessionResult, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SessionResult), args.Error(1)
}

func newMsg(data string) *nats.Msg {
	msg := nats.NewMsg(service.SubjectAuthStateChanged)
	msg.Data = []byte(data)
	msg.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	return msg
}

func TestAuthStateSubscriber_DispatchesSignIn(t *testing.T) {
	d := new(mockDispatcher)
	s := NewAuthStateSubscriber(nil, d, "storefront", logger.NewNop())

	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(e entity.AuthStateChanged) bool {
		return e.UserID == "user-1" && e.GuestID == "guest-1" && !e.OccurredAt.IsZero()
	})).Return(&service.SessionResult{UserID: "user-1", Cart: &service.CartView{}}, nil).Once()

	s.HandleMessage(newMsg(`{"user_id":"user-1","guest_id":"guest-1"}`))
	d.AssertExpectations(t)
}

func TestAuthStateSubscriber_DispatchesSignOut(t *testing.T) {
	d := new(mockDispatcher)
	s := NewAuthStateSubscriber(nil, d, "storefront", logger.NewNop())

	d.On("Dispatch", mock.Anything, mock.MatchedBy(func(e entity.AuthStateChanged) bool {
		return !e.SignedIn()
	})).Return(&service.SessionResult{}, nil).Once()

	s.HandleMessage(newMsg(`{"user_id":"","guest_id":"guest-1"}`))
	d.AssertExpectations(t)
}

func TestAuthStateSubscriber_MalformedMessage(t *testing.T) {
	d := new(mockDispatcher)
	s := NewAuthStateSubscriber(nil, d, "storefront", logger.NewNop())

	assert.NotPanics(t, func() { s.HandleMessage(newMsg(`{not json`)) })
	d.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestAuthStateSubscriber_DispatchErrorIsSwallowed(t *testing.T) {
	d := new(mockDispatcher)
	s := NewAuthStateSubscriber(nil, d, "storefront", logger.NewNop())

	d.On("Dispatch", mock.Anything, mock.Anything).Return(nil, errors.New("mongo down")).Once()

	assert.NotPanics(t, func() { s.HandleMessage(newMsg(`{"user_id":"user-1","guest_id":"g"}`)) })
	d.AssertExpectations(t)
}

func TestAuthStateSubscriber_StopWithoutStart(t *testing.T) {
	s := NewAuthStateSubscriber(nil, new(mockDispatcher), "storefront", logger.NewNop())
	assert.NotPanics(t, s.Stop)
}

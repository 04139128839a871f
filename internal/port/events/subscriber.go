package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsadapter "github.com/Abdurahmanit/GroupProject/storefront-service/internal/adapter/nats"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultHandleTimeout = 15 * time.Second

var tracer = otel.Tracer("storefront-service/events")

// AuthStateSubscriber feeds auth.state_changed notifications from NATS into
// the session dispatcher.
type AuthStateSubscriber struct {
	conn          *nats.Conn
	dispatcher    service.SessionDispatcher
	log           logger.Logger
	queueGroup    string
	handleTimeout time.Duration
	sub           *nats.Subscription
}

func NewAuthStateSubscriber(conn *nats.Conn, dispatcher service.SessionDispatcher, queueGroup string, log logger.Logger) *AuthStateSubscriber {
	return &AuthStateSubscriber{
		conn:          conn,
		dispatcher:    dispatcher,
		log:           log.Named("AuthStateSubscriber"),
		queueGroup:    queueGroup,
		handleTimeout: defaultHandleTimeout,
	}
}

func (s *AuthStateSubscriber) Start() error {
	sub, err := s.conn.QueueSubscribe(service.SubjectAuthStateChanged, s.queueGroup, s.HandleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", service.SubjectAuthStateChanged, err)
	}
	s.sub = sub
	s.log.Infof("Subscribed to %s (queue group %q)", service.SubjectAuthStateChanged, s.queueGroup)
	return nil
}

// Stop drains the subscription so in-flight messages finish.
func (s *AuthStateSubscriber) Stop() {
	if s.sub == nil {
		return
	}
	if err := s.sub.Drain(); err != nil {
		s.log.Warnf("Failed to drain %s subscription: %v", service.SubjectAuthStateChanged, err)
	}
}

func (s *AuthStateSubscriber) HandleMessage(msg *nats.Msg) {
	ctx := context.Background()
	if msg.Header != nil {
		ctx = otel.GetTextMapPropagator().Extract(ctx, natsadapter.HeaderCarrier(msg.Header))
	}
	ctx, cancel := context.WithTimeout(ctx, s.handleTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "NATS.Consume."+msg.Subject, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	var event entity.AuthStateChanged
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		s.log.Errorf("Dropping malformed %s message: %v", msg.Subject, err)
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	span.SetAttributes(
		attribute.String("user.id", event.UserID),
		attribute.String("guest.id", event.GuestID),
	)

	result, err := s.dispatcher.Dispatch(ctx, event)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch failed")
		s.log.Errorf("Failed to handle auth state change for user %q guest %q: %v", event.UserID, event.GuestID, err)
		return
	}

	if result != nil && result.Cart != nil {
		s.log.Infof("Session for user %s restored with %d cart lines", event.UserID, len(result.Cart.Items))
	}
}

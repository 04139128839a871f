package service

import "context"

const (
	SubjectUserSignedIn         = "user.signed_in"
	SubjectUserSignedOut        = "user.signed_out"
	SubjectCartReconciled       = "cart.reconciled"
	SubjectNewsletterSubscribed = "newsletter.subscribed"
	SubjectAuthStateChanged     = "auth.state_changed"
)

type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
}

type Mailer interface {
	Send(ctx context.Context, to, subject, bodyHTML, bodyText string) error
}

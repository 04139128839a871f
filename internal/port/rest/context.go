package rest

import (
	"context"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/service"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

const (
	GuestIDCtxKey = ContextKey("guest_id")
	ClaimsCtxKey  = ContextKey("claims")
	TokenCtxKey   = ContextKey("token")
)

func GuestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(GuestIDCtxKey).(string)
	return id
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(ClaimsCtxKey).(*service.Claims)
	return claims, ok && claims != nil
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenCtxKey).(string)
	return token
}

// ownerFromContext prefers the signed-in user over the guest id.
func ownerFromContext(ctx context.Context) service.Owner {
	owner := service.Owner{GuestID: GuestIDFromContext(ctx)}
	if claims, ok := ClaimsFromContext(ctx); ok {
		owner.UserID = claims.UserID
	}
	return owner
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/domain/entity"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/logger"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/platform/metrics"
	"github.com/Abdurahmanit/GroupProject/storefront-service/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	defaultTokenTTL   = 24 * time.Hour
	mailTimeout       = 10 * time.Second
)

// Claims is the payload of storefront access tokens. RegisteredClaims.ID
// is the token id used for revocation.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type LoginResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *entity.User   `json:"-"`
	Session   *SessionResult `json:"session"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*entity.User, error)
	// Login checks credentials, merges the guest's cart and wishlist into the
	// user's and issues an access token.
	Login(ctx context.Context, email, password, guestID string) (*LoginResult, error)
	Logout(ctx context.Context, token, guestID string) error
	Authenticate(ctx context.Context, token string) (*Claims, error)
	GetUser(ctx context.Context, userID string) (*entity.User, error)
}

type AuthServiceConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type authService struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	sessions  SessionDispatcher
	publisher EventPublisher
	mailer    Mailer
	log       logger.Logger
	metrics   *metrics.Metrics
	secret    []byte
	issuer    string
	tokenTTL  time.Duration
}

// NewAuthService builds the identity service. publisher and mailer may be nil.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	sessions SessionDispatcher,
	publisher EventPublisher,
	mailer Mailer,
	log logger.Logger,
	m *metrics.Metrics,
	cfg AuthServiceConfig,
) (AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT secret must be configured")
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	return &authService{
		users:     users,
		tokens:    tokens,
		sessions:  sessions,
		publisher: publisher,
		mailer:    mailer,
		log:       log.Named("AuthService"),
		metrics:   m,
		secret:    []byte(cfg.JWTSecret),
		issuer:    cfg.Issuer,
		tokenTTL:  tokenTTL,
	}, nil
}

func (s *authService) Register(ctx context.Context, email, password, name string) (*entity.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	s.log.Infof("Register: email=%s", email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := entity.NewUser(email, name, string(hash))
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, fmt.Errorf("user with email %s: %w", email, repository.ErrAlreadyExists)
		}
		s.log.Errorf("Register: failed to create user %s: %v", email, err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.sendMail(ctx, email, "Welcome to Davici Furniture",
		fmt.Sprintf("<p>Hi %s,</p><p>Your Davici Furniture account is ready.</p>", name),
		fmt.Sprintf("Hi %s,\n\nYour Davici Furniture account is ready.", name))

	s.log.Infof("Register: user %s created with id %s", email, user.ID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, email, password, guestID string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.log.Infof("Login: email=%s, guestID=%s", email, guestID)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.ObserveLogin(false)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user %s: %w", email, err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.ObserveLogin(false)
		s.log.Warnf("Login: wrong password for %s", email)
		return nil, ErrInvalidCredentials
	}

	session, err := s.sessions.Dispatch(ctx, entity.AuthStateChanged{
		UserID:     user.ID,
		GuestID:    guestID,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		s.metrics.ObserveLogin(false)
		return nil, fmt.Errorf("failed to restore session for user %s: %w", user.ID, err)
	}

	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveLogin(true)
	s.publish(ctx, SubjectUserSignedIn, entity.UserSignedIn{
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	})

	s.log.Infof("Login: user %s signed in", user.ID)
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Session:   session,
	}, nil
}

func (s *authService) Logout(ctx context.Context, token, guestID string) error {
	claims, err := s.Authenticate(ctx, token)
	if err != nil {
		return err
	}

	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
		if err := s.tokens.Revoke(ctx, claims.ID, ttl); err != nil {
			s.log.Errorf("Logout: failed to revoke token %s: %v", claims.ID, err)
			return fmt.Errorf("failed to revoke token: %w", err)
		}
	}

	if _, err := s.sessions.Dispatch(ctx, entity.AuthStateChanged{
		GuestID:    guestID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.log.Warnf("Logout: session dispatch failed: %v", err)
	}

	s.publish(ctx, SubjectUserSignedOut, entity.UserSignedOut{
		UserID:     claims.UserID,
		OccurredAt: time.Now().UTC(),
	})

	s.log.Infof("Logout: user %s signed out", claims.UserID)
	return nil
}

func (s *authService) Authenticate(ctx context.Context, tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: missing token", ErrUnauthorized)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		s.log.Debugf("Authenticate: invalid token: %v", err)
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.UserID == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: incomplete token claims", ErrUnauthorized)
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token has been revoked", ErrUnauthorized)
	}
	return claims, nil
}

func (s *authService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, repository.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *authService) issueToken(user *entity.User) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.tokenTTL)

	claims := Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *authService) publish(ctx context.Context, subject string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, subject, payload); err != nil {
		s.log.Warnf("Failed to publish %s: %v", subject, err)
	}
}

func (s *authService) sendMail(ctx context.Context, to, subject, bodyHTML, bodyText string) {
	if s.mailer == nil {
		return
	}
	mailCtx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()

	if err := s.mailer.Send(mailCtx, to, subject, bodyHTML, bodyText); err != nil {
		s.log.Warnf("Failed to send %q to %s: %v", subject, to, err)
	}
}

// Package authlocal is a self-contained credential backend: bcrypt password
// hashes, email confirmation and recovery tokens, HS256 session tokens. It
// stands in for an external identity provider in single-node deployments.
package authlocal

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"chalak/internal/registration"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

const defaultSessionTTL = 24 * time.Hour

type account struct {
	id           string
	email        string
	passwordHash []byte
	metadata     map[string]string
	confirmed    bool

	confirmationToken string
	recoveryToken     string
}

// Provider holds accounts in memory and issues signed session tokens.
type Provider struct {
	mu      sync.Mutex
	byEmail map[string]*account
	byID    map[string]*account

	signingKey []byte
	sessionTTL time.Duration
	logger     *slog.Logger
}

type Option func(*Provider)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(p *Provider) { p.sessionTTL = ttl }
}

func NewProvider(signingKey []byte, opts ...Option) *Provider {
	p := &Provider{
		byEmail:    make(map[string]*account),
		byID:       make(map[string]*account),
		signingKey: signingKey,
		sessionTTL: defaultSessionTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateAccount registers credentials for a new citizen. The account starts
// unconfirmed; the returned state includes a confirmation token that would be
// emailed out of band.
func (p *Provider) CreateAccount(_ context.Context, email, password string, metadata map[string]string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	normalized := normalizeEmail(email)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.byEmail[normalized]; exists {
		return "", fmt.Errorf("account %s: %w", normalized, sentinel.ErrConflict)
	}

	acct := &account{
		id:                uuid.NewString(),
		email:             normalized,
		passwordHash:      hash,
		metadata:          metadata,
		confirmationToken: uuid.NewString(),
	}
	p.byEmail[normalized] = acct
	p.byID[acct.id] = acct

	p.logger.Info("account registered", "user_id", acct.id)
	return acct.id, nil
}

// ConfirmEmail redeems a confirmation token.
func (p *Provider) ConfirmEmail(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, acct := range p.byID {
		if acct.confirmationToken != "" && acct.confirmationToken == token {
			acct.confirmed = true
			acct.confirmationToken = ""
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "Confirmation link is invalid or has already been used.")
}

// ResendConfirmation issues a fresh confirmation token for an unconfirmed
// account. Confirmed accounts are refused so the endpoint cannot be used to
// probe which addresses are registered and active.
func (p *Provider) ResendConfirmation(_ context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.byEmail[normalizeEmail(email)]
	if !ok || acct.confirmed {
		return "", dErrors.New(dErrors.CodeNotFound, "No unconfirmed account found for this email.")
	}
	acct.confirmationToken = uuid.NewString()
	return acct.confirmationToken, nil
}

// Session is the result of a successful sign-in.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignIn checks credentials and issues a session token. Wrong email and
// wrong password are indistinguishable to the caller.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Session, error) {
	p.mu.Lock()
	acct, ok := p.byEmail[normalizeEmail(email)]
	p.mu.Unlock()

	if !ok {
		return Session{}, invalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)); err != nil {
		return Session{}, invalidCredentials()
	}
	if !acct.confirmed {
		return Session{}, dErrors.New(dErrors.CodePolicyRefusal,
			"Please confirm your email address before signing in.")
	}

	now := requestcontext.Now(ctx)
	expiresAt := now.Add(p.sessionTTL)
	claims := jwt.RegisteredClaims{
		Subject:   acct.id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.signingKey)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}

	return Session{
		UserID:    acct.id,
		Email:     acct.email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifySessionToken validates a bearer token and returns the subject.
func (p *Provider) VerifySessionToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return p.signingKey, nil
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "Session is invalid or expired.")
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", dErrors.New(dErrors.CodeUnauthorized, "Session is invalid or expired.")
	}
	return claims.Subject, nil
}

// StartPasswordRecovery issues a recovery token for the account. The token
// would be emailed; unknown addresses still succeed so the endpoint does not
// reveal registration status.
func (p *Provider) StartPasswordRecovery(_ context.Context, email string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	acct, ok := p.byEmail[normalizeEmail(email)]
	if !ok {
		return "", nil
	}
	acct.recoveryToken = uuid.NewString()
	return acct.recoveryToken, nil
}

// ResetPassword redeems a recovery token and sets a new password, applying
// the same password rules as signup.
func (p *Provider) ResetPassword(_ context.Context, token, password, confirm string) error {
	if !registration.ValidPasswordLength(password) {
		return dErrors.New(dErrors.CodeValidation, registration.RulePasswordTooShort.Message())
	}
	if password != confirm {
		return dErrors.New(dErrors.CodeValidation, registration.RulePasswordMismatch.Message())
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, acct := range p.byID {
		if token != "" && acct.recoveryToken == token {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			acct.passwordHash = hash
			acct.recoveryToken = ""
			// Recovery proves mailbox ownership.
			acct.confirmed = true
			return nil
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "Recovery link is invalid or has already been used.")
}

// ConfirmationTokenFor exposes the pending confirmation token. Intended for
// tests and local tooling standing in for the email channel.
func (p *Provider) ConfirmationTokenFor(email string) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if acct, ok := p.byEmail[normalizeEmail(email)]; ok {
		return acct.confirmationToken
	}
	return ""
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "Invalid email or password.")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

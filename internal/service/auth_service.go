package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pabloleguizamon/dragon-challenge/internal/auth"
	"github.com/pabloleguizamon/dragon-challenge/internal/domain"
	"github.com/pabloleguizamon/dragon-challenge/internal/repository"
)

type PasswordHasher interface {
	Hash(raw string) (string, error)
	Compare(hash, raw string) error
}

type TokenSigner interface {
	Issue(u *domain.User) (string, error)
	Parse(raw string) (*auth.Claims, error)
}

// AuthPayload is returned by Register and Login.
type AuthPayload struct {
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}

// AuthService registers accounts, checks credentials and resolves bearer
// tokens into caller identities.
type AuthService struct {
	users   repository.UserRepository
	hasher  PasswordHasher
	tokens  TokenSigner
	refresh bool
	log     *slog.Logger
}

type AuthOption func(*AuthService)

// WithIdentityRefresh makes Identify reload the user on every request
// instead of trusting the token claims.
func WithIdentityRefresh(on bool) AuthOption {
	return func(s *AuthService) { s.refresh = on }
}

func WithAuthLogger(l *slog.Logger) AuthOption {
	return func(s *AuthService) { s.log = l }
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens TokenSigner, opts ...AuthOption) *AuthService {
	s := &AuthService{users: users, hasher: hasher, tokens: tokens, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthPayload, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: Email already exists", ErrConflict)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{Email: in.Email, PasswordHash: hash, Role: domain.RoleUser}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: Email already exists", ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.InfoContext(ctx, "user registered", "user_id", u.ID)
	return s.payload(&u)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthPayload, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return s.payload(u)
}

// Authenticate checks credentials. Unknown email and wrong password fail
// the same way and cost the same bcrypt work.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	hash := ""
	if u != nil {
		hash = u.PasswordHash
	}
	if err := s.hasher.Compare(hash, password); err != nil || u == nil {
		s.log.DebugContext(ctx, "login rejected")
		return nil, fmt.Errorf("%w: Invalid credentials", ErrUnauthorized)
	}
	return u, nil
}

// IssueToken signs a session token for u.
func (s *AuthService) IssueToken(u *domain.User) (string, error) {
	tok, err := s.tokens.Issue(u)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// Identify turns a bearer token into the caller identity. With refresh on,
// the user is reloaded so deleted accounts and role changes take effect
// before the token expires.
func (s *AuthService) Identify(ctx context.Context, raw string) (auth.Identity, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	id, err := claims.Identity()
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !s.refresh {
		return id, nil
	}
	u, err := s.users.GetByID(ctx, id.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Identity{}, fmt.Errorf("%w: user no longer exists", ErrUnauthenticated)
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("load user: %w", err)
	}
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}, nil
}

// EnsureUser creates the account unless the email is taken. It reports
// whether a user was created.
func (s *AuthService) EnsureUser(ctx context.Context, email, password string, role domain.Role) (*domain.User, bool, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	u = &domain.User{Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return u, true, nil
}

func (s *AuthService) payload(u *domain.User) (*AuthPayload, error) {
	tok, err := s.IssueToken(u)
	if err != nil {
		return nil, err
	}
	return &AuthPayload{AccessToken: tok, User: u}, nil
}

package auth

import (
	"context"
	"errors"
	"strings"

	domuser "example.com/coffee-shop/app/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	UserID   int64
	Username string
	Email    string
	Roles    []domuser.RoleCode
}

// Session turns verified token claims into the session the storefront reads.
func (c *Claims) Session() domuser.Session {
	return domuser.Authenticated(domuser.Identity{
		ID:       c.UserID,
		Username: c.Username,
		Email:    c.Email,
		Roles:    c.Roles,
	})
}

type TokenService interface {
	GenerateToken(u *domuser.User) (string, error)
	ParseToken(token string) (*Claims, error)
}

type Service struct {
	userRepo domuser.Repository
	hasher   PasswordHasher
	tokens   TokenService
}

func NewService(
	userRepo domuser.Repository,
	hasher PasswordHasher,
	tokens TokenService,
) *Service {
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// SignInInput.Login is either a username or an email address.
type SignInInput struct {
	Login    string
	Password string
}

type SignInResult struct {
	Token string
	User  *domuser.User
}

func (s *Service) SignIn(ctx context.Context, in SignInInput) (*SignInResult, error) {
	login := strings.TrimSpace(in.Login)
	if login == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	var (
		u   *domuser.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.userRepo.GetByEmail(ctx, strings.ToLower(login))
	} else {
		u, err = s.userRepo.GetByUsername(ctx, login)
	}
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Token: token,
		User:  u,
	}, nil
}

type SignUpInput struct {
	Username string
	Email    string
	Password string
}

// SignUp registers a customer account. It does not sign the user in.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*domuser.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if username == "" || email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, domuser.ErrUsernameTaken
	} else if !errors.Is(err, domuser.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domuser.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(ctx, &domuser.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Roles:        []domuser.RoleCode{domuser.RoleUser},
	})
}

// Authenticate resolves a bearer token to a session.
func (s *Service) Authenticate(token string) (domuser.Session, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}
	return claims.Session(), nil
}

package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domuser "example.com/coffee-shop/app/internal/domain/user"
)

type mockUserRepository struct {
	users     []*domuser.User
	getErr    error
	createErr error
}

func newMockUserRepository(users ...*domuser.User) *mockUserRepository {
	return &mockUserRepository{users: users}
}

func (m *mockUserRepository) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	cloned := *u
	cloned.ID = int64(len(m.users) + 1)
	m.users = append(m.users, &cloned)
	return &cloned, nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*domuser.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Username == username {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			cloned := *u
			return &cloned, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

type mockHasher struct {
	compareErr error
	hashErr    error
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashErr != nil {
		return "", m.hashErr
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Compare(hash string, password string) error {
	if m.compareErr != nil {
		return m.compareErr
	}
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type mockTokenService struct {
	generateErr error
	claims      *Claims
	parseErr    error
}

func (m *mockTokenService) GenerateToken(u *domuser.User) (string, error) {
	if m.generateErr != nil {
		return "", m.generateErr
	}
	return "mock-token-" + u.Username, nil
}

func (m *mockTokenService) ParseToken(token string) (*Claims, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return m.claims, nil
}

func alice() *domuser.User {
	return &domuser.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: "hashed:secret1",
		Roles:        []domuser.RoleCode{domuser.RoleUser},
	}
}

func TestSignIn_ByUsername(t *testing.T) {
	svc := NewService(newMockUserRepository(alice()), &mockHasher{}, &mockTokenService{})

	result, err := svc.SignIn(context.Background(), SignInInput{Login: "alice", Password: "secret1"})

	require.NoError(t, err)
	require.Equal(t, "mock-token-alice", result.Token)
	require.Equal(t, int64(1), result.User.ID)
}

func TestSignIn_ByEmail_CaseInsensitive(t *testing.T) {
	svc := NewService(newMockUserRepository(alice()), &mockHasher{}, &mockTokenService{})

	result, err := svc.SignIn(context.Background(), SignInInput{Login: " Alice@Example.com ", Password: "secret1"})

	require.NoError(t, err)
	require.Equal(t, "alice", result.User.Username)
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name    string
		input   SignInInput
		wantErr error
	}{
		{name: "Empty login", input: SignInInput{Password: "secret1"}, wantErr: domuser.ErrInvalidCredential},
		{name: "Empty password", input: SignInInput{Login: "alice"}, wantErr: domuser.ErrInvalidCredential},
		{name: "Unknown user", input: SignInInput{Login: "bob", Password: "secret1"}, wantErr: domuser.ErrUnauthorized},
		{name: "Wrong password", input: SignInInput{Login: "alice", Password: "nope"}, wantErr: domuser.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockUserRepository(alice()), &mockHasher{}, &mockTokenService{})
			result, err := svc.SignIn(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, result)
		})
	}
}

func TestSignIn_TokenError(t *testing.T) {
	tokenErr := errors.New("signing failed")
	svc := NewService(newMockUserRepository(alice()), &mockHasher{}, &mockTokenService{generateErr: tokenErr})

	_, err := svc.SignIn(context.Background(), SignInInput{Login: "alice", Password: "secret1"})

	require.ErrorIs(t, err, tokenErr)
}

func TestSignUp_CreatesCustomer(t *testing.T) {
	repo := newMockUserRepository(alice())
	svc := NewService(repo, &mockHasher{}, &mockTokenService{})

	u, err := svc.SignUp(context.Background(), SignUpInput{
		Username: "bob",
		Email:    "Bob@Example.com",
		Password: "hunter22",
	})

	require.NoError(t, err)
	require.Equal(t, "bob@example.com", u.Email)
	require.Equal(t, "hashed:hunter22", u.PasswordHash)
	require.Equal(t, []domuser.RoleCode{domuser.RoleUser}, u.Roles)
	require.Len(t, repo.users, 2)
}

func TestSignUp_Conflicts(t *testing.T) {
	tests := []struct {
		name    string
		input   SignUpInput
		wantErr error
	}{
		{
			name:    "Username taken",
			input:   SignUpInput{Username: "alice", Email: "other@example.com", Password: "secret1"},
			wantErr: domuser.ErrUsernameTaken,
		},
		{
			name:    "Email taken",
			input:   SignUpInput{Username: "alice2", Email: "alice@example.com", Password: "secret1"},
			wantErr: domuser.ErrEmailAlreadyUsed,
		},
		{
			name:    "Missing fields",
			input:   SignUpInput{Username: "carol"},
			wantErr: domuser.ErrInvalidCredential,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(newMockUserRepository(alice()), &mockHasher{}, &mockTokenService{})
			_, err := svc.SignUp(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignUp_RepositoryError(t *testing.T) {
	repo := newMockUserRepository()
	repo.getErr = errors.New("db down")
	svc := NewService(repo, &mockHasher{}, &mockTokenService{})

	_, err := svc.SignUp(context.Background(), SignUpInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})

	require.EqualError(t, err, "db down")
}

func TestAuthenticate(t *testing.T) {
	tokens := &mockTokenService{claims: &Claims{
		UserID:   7,
		Username: "admin",
		Email:    "admin@example.com",
		Roles:    []domuser.RoleCode{domuser.RoleAdmin},
	}}
	svc := NewService(newMockUserRepository(), &mockHasher{}, tokens)

	session, err := svc.Authenticate("any")
	require.NoError(t, err)
	require.True(t, session.IsAuthenticated())
	identity, ok := session.CurrentUser()
	require.True(t, ok)
	require.Equal(t, int64(7), identity.ID)
	require.True(t, identity.IsAdmin())

	tokens.parseErr = errors.New("expired")
	_, err = svc.Authenticate("any")
	require.ErrorIs(t, err, domuser.ErrUnauthorized)
}

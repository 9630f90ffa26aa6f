package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/usecase/auth"
)

type fakeSessions struct {
	loginCalls    int
	registerCalls int
	logoutCalls   int
	user          *domain.User
}

func (f *fakeSessions) Login(ctx context.Context, email, password string) (*domain.User, error) {
	f.loginCalls++
	return domain.NewUserFromLogin("uid-1", email), nil
}

func (f *fakeSessions) Register(ctx context.Context, username, email, password, confirmPassword string) error {
	f.registerCalls++
	if password != confirmPassword {
		return domain.ErrPasswordMismatch
	}
	return nil
}

func (f *fakeSessions) Logout(ctx context.Context) error {
	f.logoutCalls++
	return nil
}

func (f *fakeSessions) Current() (*domain.User, bool) {
	if f.user == nil {
		return nil, false
	}
	return f.user, true
}

type connectivity bool

func (c connectivity) IsConnected() bool { return bool(c) }

func TestLoginValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		message  string
	}{
		{name: "missing at sign", email: "budi", password: "pw", message: "email tidak valid"},
		{name: "at sign first", email: "@example.com", password: "pw", message: "email tidak valid"},
		{name: "at sign last", email: "budi@", password: "pw", message: "email tidak valid"},
		{name: "empty password", email: "budi@example.com", password: "", message: "password tidak boleh kosong"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{}
			uc := auth.New(sessions, connectivity(true), nil)

			_, err := uc.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
			assert.Contains(t, err.Error(), tt.message)
			assert.Zero(t, sessions.loginCalls)
		})
	}
}

func TestLoginOfflineGate(t *testing.T) {
	sessions := &fakeSessions{}
	uc := auth.New(sessions, connectivity(false), nil)

	_, err := uc.Login(context.Background(), "budi@example.com", "pw")
	assert.ErrorIs(t, err, domain.ErrNoConnection)
	assert.Zero(t, sessions.loginCalls)
}

func TestLoginDelegates(t *testing.T) {
	sessions := &fakeSessions{}
	uc := auth.New(sessions, connectivity(true), nil)

	user, err := uc.Login(context.Background(), "budi@example.com", "rahasia")
	require.NoError(t, err)
	assert.Equal(t, "budi", user.Username)
	assert.Equal(t, 1, sessions.loginCalls)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   auth.RegisterInput
		message string
	}{
		{
			name:    "empty username",
			input:   auth.RegisterInput{Username: " ", Email: "budi@example.com", Password: "panjang6", ConfirmPassword: "panjang6"},
			message: "username tidak boleh kosong",
		},
		{
			name:    "invalid email",
			input:   auth.RegisterInput{Username: "budi", Email: "budi", Password: "panjang6", ConfirmPassword: "panjang6"},
			message: "email tidak valid",
		},
		{
			name:    "short password",
			input:   auth.RegisterInput{Username: "budi", Email: "budi@example.com", Password: "lima5", ConfirmPassword: "lima5"},
			message: "password minimal 6 karakter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sessions := &fakeSessions{}
			uc := auth.New(sessions, connectivity(true), nil)

			err := uc.Register(context.Background(), tt.input)
			require.Error(t, err)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeValidation))
			assert.Contains(t, err.Error(), tt.message)
			assert.Zero(t, sessions.registerCalls)
		})
	}
}

func TestRegisterPassesMismatchThrough(t *testing.T) {
	sessions := &fakeSessions{}
	uc := auth.New(sessions, connectivity(true), nil)

	err := uc.Register(context.Background(), auth.RegisterInput{
		Username:        "budi",
		Email:           "budi@example.com",
		Password:        "panjang6",
		ConfirmPassword: "berbeda",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPasswordMismatch)
	assert.Equal(t, 1, sessions.registerCalls, "mismatch is the session layer's check")
}

func TestCurrentUser(t *testing.T) {
	sessions := &fakeSessions{user: &domain.User{Username: "budi"}}
	uc := auth.New(sessions, connectivity(true), nil)

	user, ok := uc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "budi", user.Username)

	require.NoError(t, uc.Logout(context.Background()))
	assert.Equal(t, 1, sessions.logoutCalls)
}

package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/vsgo/appcore/domain"
	"github.com/vsgo/appcore/usecase"
)

const minPasswordLength = 6

// Sessions abstracts the session manager for this use case.
type Sessions interface {
	Login(ctx context.Context, email, password string) (*domain.User, error)
	Register(ctx context.Context, username, email, password, confirmPassword string) error
	Logout(ctx context.Context) error
	Current() (*domain.User, bool)
}

// RegisterInput carries the raw registration form values.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

type UseCase struct {
	sessions     Sessions
	connectivity usecase.ConnectivityChecker
	logger       *zap.Logger
}

func New(sessions Sessions, connectivity usecase.ConnectivityChecker, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		sessions:     sessions,
		connectivity: connectivity,
		logger:       logger,
	}
}

func (uc *UseCase) Login(ctx context.Context, email, password string) (*domain.User, error) {
	if err := uc.checkConnection(); err != nil {
		return nil, err
	}
	if !validEmail(email) {
		return nil, domain.NewError(domain.ErrCodeValidation, "email tidak valid")
	}
	if password == "" {
		return nil, domain.NewError(domain.ErrCodeValidation, "password tidak boleh kosong")
	}
	return uc.sessions.Login(ctx, email, password)
}

func (uc *UseCase) Register(ctx context.Context, input RegisterInput) error {
	if err := uc.checkConnection(); err != nil {
		return err
	}
	if strings.TrimSpace(input.Username) == "" {
		return domain.NewError(domain.ErrCodeValidation, "username tidak boleh kosong")
	}
	if !validEmail(input.Email) {
		return domain.NewError(domain.ErrCodeValidation, "email tidak valid")
	}
	if len(input.Password) < minPasswordLength {
		return domain.NewError(domain.ErrCodeValidation, "password minimal 6 karakter")
	}
	return uc.sessions.Register(ctx, input.Username, input.Email, input.Password, input.ConfirmPassword)
}

func (uc *UseCase) Logout(ctx context.Context) error {
	return uc.sessions.Logout(ctx)
}

func (uc *UseCase) CurrentUser() (*domain.User, bool) {
	return uc.sessions.Current()
}

func (uc *UseCase) checkConnection() error {
	if uc.connectivity != nil && !uc.connectivity.IsConnected() {
		return domain.ErrNoConnection
	}
	return nil
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

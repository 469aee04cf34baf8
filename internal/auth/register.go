package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/orderhub/orderhub-backend/internal/notifications"
	"github.com/orderhub/orderhub-backend/internal/users"
	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"github.com/orderhub/orderhub-backend/pkg/enums"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/logger"
	"github.com/orderhub/orderhub-backend/pkg/security"
	"gorm.io/gorm"
)

// RegisterService handles account creation and email confirmation.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
	Confirm(ctx context.Context, req ConfirmRequest) error
}

// TxRunner abstracts the transactional boundary used by the registration flow.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	Activate(ctx context.Context, id int64) error
	CreateConfirmToken(ctx context.Context, userID int64, key string) (*models.ConfirmToken, error)
	FindConfirmToken(ctx context.Context, userID int64, key string) (*models.ConfirmToken, error)
	DeleteConfirmToken(ctx context.Context, id int64) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        TxRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	Sender          notifications.Sender
	PasswordConfig  config.PasswordConfig
	Logger          *logger.Logger
}

type registerService struct {
	tx          TxRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	sender      notifications.Sender
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "tx runner required")
	}
	if params.Sender == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification sender required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	userRepo := params.UserRepoFactory
	if userRepo == nil {
		userRepo = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    userRepo,
		sender:      params.Sender,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}

	role := enums.UserRoleBuyer
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		role = parsed
	}

	if err := security.ValidatePolicy(req.Password, s.passwordCfg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "weak password")
	}
	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var (
		userID int64
		token  string
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := repo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Company:      req.Company,
			Position:     req.Position,
			Role:         role,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		key := uuid.NewString()
		if _, err := repo.CreateConfirmToken(ctx, user.ID, key); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create confirm token")
		}

		userID = user.ID
		token = key
		return nil
	})
	if err != nil {
		return err
	}

	// Sent after commit. The account already exists, so a delivery failure
	// is logged and swallowed rather than reported as a registration error.
	if err := s.sender.RegistrationConfirm(ctx, email, userID, token); err != nil {
		s.logg.Error(ctx, "registration confirmation failed", err)
	}
	return nil
}

func (s *registerService) Confirm(ctx context.Context, req ConfirmRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Token) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email and token are required")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		user, err := repo.FindByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid email or token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
		}

		token, err := repo.FindConfirmToken(ctx, user.ID, strings.TrimSpace(req.Token))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "invalid email or token")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup confirm token")
		}

		if err := repo.Activate(ctx, user.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "activate user")
		}
		if err := repo.DeleteConfirmToken(ctx, token.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "consume confirm token")
		}
		return nil
	})
}

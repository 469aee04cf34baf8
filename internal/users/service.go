package users

import (
	"context"
	"errors"

	"github.com/orderhub/orderhub-backend/pkg/config"
	"github.com/orderhub/orderhub-backend/pkg/db"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
	"github.com/orderhub/orderhub-backend/pkg/security"
	"gorm.io/gorm"
)

// UpdateDetailsInput carries the account fields a user may change. A nil
// pointer leaves the field untouched; Password, when set, is re-hashed.
type UpdateDetailsInput struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Company   *string `json:"company"`
	Position  *string `json:"position"`
	Password  *string `json:"password"`
}

// Service exposes the account details surface.
type Service interface {
	Details(ctx context.Context, userID int64) (*UserDTO, error)
	UpdateDetails(ctx context.Context, userID int64, input UpdateDetailsInput) (*UserDTO, error)
}

// ServiceParams bundles user service dependencies.
type ServiceParams struct {
	DB       *db.Client
	Password config.PasswordConfig
}

type service struct {
	db       *db.Client
	password config.PasswordConfig
}

// NewService builds the account details service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, password: params.Password}, nil
}

func (s *service) Details(ctx context.Context, userID int64) (*UserDTO, error) {
	repo := NewRepository(s.db.DB())
	user, err := repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return FromModel(user), nil
}

func (s *service) UpdateDetails(ctx context.Context, userID int64, input UpdateDetailsInput) (*UserDTO, error) {
	fields := map[string]any{}
	if input.FirstName != nil {
		fields["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		fields["last_name"] = *input.LastName
	}
	if input.Company != nil {
		fields["company"] = *input.Company
	}
	if input.Position != nil {
		fields["position"] = *input.Position
	}
	if input.Password != nil {
		if err := security.ValidatePolicy(*input.Password, s.password); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "weak password")
		}
		hash, err := security.HashPassword(*input.Password, s.password)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
		}
		fields["password_hash"] = hash
	}
	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	var updated *UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		affected, err := repo.UpdateDetails(ctx, userID, fields)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		user, err := repo.FindByID(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload user")
		}
		updated = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

package contacts

import (
	"context"

	"github.com/orderhub/orderhub-backend/pkg/db"
	pkgerrors "github.com/orderhub/orderhub-backend/pkg/errors"
)

// maxContactsPerUser caps the address book size.
const maxContactsPerUser = 5

// Service exposes the address book operations, all scoped to their owner.
type Service interface {
	List(ctx context.Context, userID int64) ([]ContactDTO, error)
	Create(ctx context.Context, userID int64, input ContactInput) (*ContactDTO, error)
	Update(ctx context.Context, userID, contactID int64, input ContactInput) error
	Delete(ctx context.Context, userID int64, ids []int64) (int64, error)
}

// ServiceParams bundles contact service dependencies.
type ServiceParams struct {
	DB *db.Client
}

type service struct {
	db *db.Client
}

// NewService builds the contact service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB}, nil
}

func (s *service) List(ctx context.Context, userID int64) ([]ContactDTO, error) {
	repo := NewRepository(s.db.DB())
	contacts, err := repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list contacts")
	}
	dtos := make([]ContactDTO, 0, len(contacts))
	for _, contact := range contacts {
		dtos = append(dtos, FromModel(contact))
	}
	return dtos, nil
}

func (s *service) Create(ctx context.Context, userID int64, input ContactInput) (*ContactDTO, error) {
	repo := NewRepository(s.db.DB())

	count, err := repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count contacts")
	}
	if count >= maxContactsPerUser {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact limit reached")
	}

	contact := input.toModel(userID)
	if err := repo.Create(ctx, &contact); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create contact")
	}
	dto := FromModel(contact)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, contactID int64, input ContactInput) error {
	repo := NewRepository(s.db.DB())
	affected, err := repo.Update(ctx, userID, contactID, input.toModel(userID))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update contact")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "contact not found")
	}
	return nil
}

func (s *service) Delete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "at least one contact id is required")
	}
	repo := NewRepository(s.db.DB())
	deleted, err := repo.Delete(ctx, userID, ids)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete contacts")
	}
	return deleted, nil
}

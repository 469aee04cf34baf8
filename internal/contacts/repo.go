package contacts

import (
	"context"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes contact persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// ListByUser returns the user's contacts, oldest first.
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]models.Contact, error) {
	var contacts []models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&contacts).Error
	return contacts, err
}

// CountByUser returns how many contacts the user already has.
func (r *Repository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// Create inserts a contact.
func (r *Repository) Create(ctx context.Context, contact *models.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

// Update rewrites the writable fields of a contact, scoped to its owner.
// Returns the number of rows touched.
func (r *Repository) Update(ctx context.Context, userID, contactID int64, fields models.Contact) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", contactID, userID).
		Updates(map[string]any{
			"city":      fields.City,
			"street":    fields.Street,
			"house":     fields.House,
			"structure": fields.Structure,
			"building":  fields.Building,
			"apartment": fields.Apartment,
			"phone":     fields.Phone,
		})
	return result.RowsAffected, result.Error
}

// Delete removes the listed contacts, scoped to their owner. Returns the
// number of rows deleted.
func (r *Repository) Delete(ctx context.Context, userID int64, ids []int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Contact{})
	return result.RowsAffected, result.Error
}

package users

import (
	"context"
	"time"

	"github.com/orderhub/orderhub-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repo bound to the provided transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate flips the user's is_active flag on.
func (r *Repository) Activate(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("is_active", true).Error
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateDetails writes the provided column set, returning the number of
// rows touched.
func (r *Repository) UpdateDetails(ctx context.Context, id int64, fields map[string]any) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields)
	return result.RowsAffected, result.Error
}

// CreateConfirmToken stores the single-use confirmation key for a user.
func (r *Repository) CreateConfirmToken(ctx context.Context, userID int64, key string) (*models.ConfirmToken, error) {
	token := &models.ConfirmToken{UserID: userID, Key: key}
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

// FindConfirmToken looks up a confirmation token by user and key.
func (r *Repository) FindConfirmToken(ctx context.Context, userID int64, key string) (*models.ConfirmToken, error) {
	var token models.ConfirmToken
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// DeleteConfirmToken removes a consumed confirmation token.
func (r *Repository) DeleteConfirmToken(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&models.ConfirmToken{}, "id = ?", id).Error
}

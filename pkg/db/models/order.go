package models

import (
	"time"

	"github.com/orderhub/orderhub-backend/pkg/enums"
)

// Order is a user's basket or a placed order, depending on State. The
// total is never stored; it is always recomputed from the items at read
// time. A partial unique index keeps at most one basket row per user.
type Order struct {
	ID        int64            `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64            `gorm:"column:user_id;not null"`
	State     enums.OrderState `gorm:"column:state;type:text;not null;default:'basket'"`
	ContactID *int64           `gorm:"column:contact_id"`
	Contact   *Contact         `gorm:"foreignKey:ContactID"`
	Items     []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import "time"

// Contact is a delivery address book entry owned by a user.
type Contact struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null"`
	City      string    `gorm:"column:city;not null"`
	Street    string    `gorm:"column:street;not null"`
	House     string    `gorm:"column:house"`
	Structure string    `gorm:"column:structure"`
	Building  string    `gorm:"column:building"`
	Apartment string    `gorm:"column:apartment"`
	Phone     string    `gorm:"column:phone;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

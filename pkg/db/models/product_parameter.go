package models

// ProductParameter attaches a string attribute value to a listing.
type ProductParameter struct {
	ID            int64      `gorm:"column:id;primaryKey;autoIncrement"`
	ProductInfoID int64      `gorm:"column:product_info_id;not null;uniqueIndex:idx_product_parameters_pair"`
	ParameterID   int64      `gorm:"column:parameter_id;not null;uniqueIndex:idx_product_parameters_pair"`
	Value         string     `gorm:"column:value;not null"`
	Parameter     *Parameter `gorm:"foreignKey:ParameterID"`
}

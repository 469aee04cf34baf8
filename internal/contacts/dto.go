package contacts

import "github.com/orderhub/orderhub-backend/pkg/db/models"

// ContactDTO is the read shape for one address book entry.
type ContactDTO struct {
	ID        int64  `json:"id"`
	City      string `json:"city"`
	Street    string `json:"street"`
	House     string `json:"house,omitempty"`
	Structure string `json:"structure,omitempty"`
	Building  string `json:"building,omitempty"`
	Apartment string `json:"apartment,omitempty"`
	Phone     string `json:"phone"`
}

// ContactInput carries the writable contact fields for create and update.
type ContactInput struct {
	City      string `json:"city" validate:"required"`
	Street    string `json:"street" validate:"required"`
	House     string `json:"house"`
	Structure string `json:"structure"`
	Building  string `json:"building"`
	Apartment string `json:"apartment"`
	Phone     string `json:"phone" validate:"required"`
}

// FromModel converts a stored contact into its DTO.
func FromModel(contact models.Contact) ContactDTO {
	return ContactDTO{
		ID:        contact.ID,
		City:      contact.City,
		Street:    contact.Street,
		House:     contact.House,
		Structure: contact.Structure,
		Building:  contact.Building,
		Apartment: contact.Apartment,
		Phone:     contact.Phone,
	}
}

func (in ContactInput) toModel(userID int64) models.Contact {
	return models.Contact{
		UserID:    userID,
		City:      in.City,
		Street:    in.Street,
		House:     in.House,
		Structure: in.Structure,
		Building:  in.Building,
		Apartment: in.Apartment,
		Phone:     in.Phone,
	}
}

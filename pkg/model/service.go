package model

import "time"

const (
	MaxServiceTitleLength       = 100
	MaxServiceDescriptionLength = 2000
	MaxServiceCategoryLength    = 100
)

// Service is a listing offered by a provider.
type Service struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	ProviderID   string    `json:"provider_id" bson:"provider_id" validate:"required"`
	Title        string    `json:"title" bson:"title" validate:"required,max=100"`
	Description  string    `json:"description" bson:"description" validate:"max=2000"`
	Category     string    `json:"category" bson:"category" validate:"max=100"`
	Price        Money     `json:"price" bson:"price" validate:"min=0,max=999999999"`
	IsActive     bool      `json:"is_active" bson:"is_active"`
	BookingCount int64     `json:"-" bson:"booking_count"`
	Version      int64     `json:"version" bson:"version"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// ServiceInput is the payload for creating a service.
type ServiceInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Price       Money  `json:"price"`
}

// ServiceUpdate carries the editable fields. Nil fields keep their current
// value. Version, when present, must match the stored version.
type ServiceUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Price       *Money  `json:"price,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	Version     *int64  `json:"version,omitempty"`
}

// ApplyTo returns a copy of s with the update merged in.
func (u *ServiceUpdate) ApplyTo(s *Service) *Service {
	merged := *s
	if u.Title != nil {
		merged.Title = *u.Title
	}
	if u.Description != nil {
		merged.Description = *u.Description
	}
	if u.Category != nil {
		merged.Category = *u.Category
	}
	if u.Price != nil {
		merged.Price = *u.Price
	}
	if u.IsActive != nil {
		merged.IsActive = *u.IsActive
	}
	return &merged
}

func (u *ServiceUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Category == nil && u.Price == nil && u.IsActive == nil
}

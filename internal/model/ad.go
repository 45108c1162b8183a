package model

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Promotion levels for a vehicle ad. Boosted ads sort ahead of plain ones in
// listings; within a level, ads sort by freshness (created_at, reset by each
// bump).
const (
	PromotionNone    = 0
	PromotionBoosted = 1
)

// VehicleAd represents a vehicle-for-sale listing document.
//
// CreatedAt doubles as the freshness timestamp used for listing sort order: a
// bump resets it to the bump instant, pushing the ad back to the top.
type VehicleAd struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Make      string             `json:"make" bson:"make"`
	Model     string             `json:"model" bson:"model"`
	Year      int                `json:"year" bson:"year"`
	Price     float64            `json:"price" bson:"price"`
	Mileage   int                `json:"mileage,omitempty" bson:"mileage,omitempty"`
	SellerID  string             `json:"seller_id,omitempty" bson:"seller_id,omitempty"`
	Promotion int                `json:"promotion" bson:"promotion"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}

// Validate validates a vehicle ad before creation
func (a *VehicleAd) Validate() error {
	if a.Title == "" {
		return errors.New("ad title is required")
	}
	if len(a.Title) > 255 {
		return errors.New("ad title must be 255 characters or less")
	}
	if a.Make == "" {
		return errors.New("vehicle make is required")
	}
	if a.Model == "" {
		return errors.New("vehicle model is required")
	}
	if a.Year < 1900 || a.Year > time.Now().UTC().Year()+1 {
		return fmt.Errorf("invalid vehicle year: %d", a.Year)
	}
	if a.Price <= 0 {
		return errors.New("price must be greater than zero")
	}
	if a.Mileage < 0 {
		return errors.New("mileage cannot be negative")
	}
	if a.Promotion != PromotionNone && a.Promotion != PromotionBoosted {
		return fmt.Errorf("invalid promotion level: %d", a.Promotion)
	}

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	return nil
}

// AdListItem represents a summary of a vehicle ad for list responses
type AdListItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Year      int       `json:"year"`
	Price     float64   `json:"price"`
	Promotion int       `json:"promotion"`
	CreatedAt time.Time `json:"created_at"`
}

// ToListItem converts VehicleAd to AdListItem
func (a *VehicleAd) ToListItem() AdListItem {
	return AdListItem{
		ID:        a.ID.Hex(),
		Title:     a.Title,
		Make:      a.Make,
		Model:     a.Model,
		Year:      a.Year,
		Price:     a.Price,
		Promotion: a.Promotion,
		CreatedAt: a.CreatedAt,
	}
}

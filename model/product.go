// model/product.go
package model

import "time"

// Enumerations enforced by CHECK constraints in the products table and by
// validate tags on the DTOs below.
var (
	Categories = []string{"formal", "casual", "party", "traditional", "accessories", "pants", "shirts", "dresses", "suits", "jackets", "shoes"}
	Sizes      = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size"}
	Conditions = []string{"new", "excellent", "good", "fair"}
)

type Product struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Brand         string     `json:"brand"`
	Category      string     `json:"category"`
	Size          string     `json:"size"`
	Occasion      string     `json:"occasion,omitempty"`
	Material      string     `json:"material,omitempty"`
	Color         string     `json:"color,omitempty"`
	Condition     string     `json:"condition"`
	Price         float64    `json:"price"`
	RentalPrice   float64    `json:"rental_price"`
	Images        []string   `json:"images"`
	Available     bool       `json:"available"`
	RentedBy      *int64     `json:"rented_by,omitempty"`
	RentalEndDate *time.Time `json:"rental_end_date,omitempty"`
	RentalCount   int64      `json:"rental_count"`
	AverageRating float64    `json:"average_rating"`
	TotalRatings  int64      `json:"total_ratings"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type Rating struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateProductReq is the admin payload for adding a catalog item.
// swagger:model CreateProductReq
type CreateProductReq struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Brand       string   `json:"brand" validate:"required"`
	Category    string   `json:"category" validate:"required,oneof=formal casual party traditional accessories pants shirts dresses suits jackets shoes"`
	Size        string   `json:"size" validate:"required,oneof=XS S M L XL XXL 'One Size'"`
	Occasion    string   `json:"occasion" validate:"omitempty,oneof=wedding party formal casual festive"`
	Material    string   `json:"material"`
	Color       string   `json:"color"`
	Condition   string   `json:"condition" validate:"omitempty,oneof=new excellent good fair"`
	Price       float64  `json:"price" validate:"required,gte=0"`
	RentalPrice float64  `json:"rental_price" validate:"required,gte=0"`
	Images      []string `json:"images" validate:"required,min=1,dive,required"`
}

// UpdateProductReq carries only the fields admins may edit; nil means "leave".
type UpdateProductReq struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Brand       *string  `json:"brand"`
	Category    *string  `json:"category" validate:"omitempty,oneof=formal casual party traditional accessories pants shirts dresses suits jackets shoes"`
	Size        *string  `json:"size" validate:"omitempty,oneof=XS S M L XL XXL 'One Size'"`
	Occasion    *string  `json:"occasion"`
	Material    *string  `json:"material"`
	Color       *string  `json:"color"`
	Condition   *string  `json:"condition" validate:"omitempty,oneof=new excellent good fair"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	RentalPrice *float64 `json:"rental_price" validate:"omitempty,gte=0"`
	Images      []string `json:"images" validate:"omitempty,min=1,dive,required"`
	Available   *bool    `json:"available"`
}

type AddRatingReq struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=500"`
}

// ProductFilter mirrors the catalog query parameters.
type ProductFilter struct {
	Category string
	Size     string
	Brand    string
	Occasion string
	Search   string
	MinPrice *float64
	MaxPrice *float64
	Page     int
	Limit    int
}

type ProductPage struct {
	Products   []Product `json:"products"`
	Total      int64     `json:"total"`
	TotalPages int64     `json:"total_pages"`
	Page       int       `json:"current_page"`
	HasNext    bool      `json:"has_next"`
	HasPrev    bool      `json:"has_prev"`
}

package domain

import (
	"time"

	"github.com/leonjames-san/familiams/internal/money"
)

type Category struct {
	ID          string
	Name        string
	Description string
	Icon        string
	CreatedAt   time.Time
}

type Seller struct {
	ID             string
	Name           string
	Email          string
	Role           string
	AvatarURL      string
	Specialties    []string
	IsFamilyMember bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Product struct {
	ID            string
	Name          string
	Description   string
	Price         money.Money
	CategoryID    string
	SellerID      string
	ImageURL      string
	IsFeatured    bool
	IsActive      bool
	StockQuantity int
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Denormalised for listing responses.
	CategoryName string
	SellerName   string
	AvgRating    float64
	ReviewCount  int
}

// PriceType says how a service's price is to be read: an exact amount, a
// starting amount, or an hourly rate.
type PriceType string

const (
	PriceFixed  PriceType = "fixed"
	PriceFrom   PriceType = "from"
	PriceHourly PriceType = "hourly"
)

type Service struct {
	ID          string
	Name        string
	Description string
	PriceFrom   money.Money
	PriceType   PriceType
	CategoryID  string
	SellerID    string
	IsFeatured  bool
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time

	CategoryName string
	SellerName   string
	AvgRating    float64
	ReviewCount  int
}

// Review is attached to exactly one product or one service.
type Review struct {
	ID            string
	ProductID     *string
	ServiceID     *string
	CustomerName  string
	CustomerEmail string
	Rating        int
	Comment       string
	CreatedAt     time.Time
}

// ListFilter narrows catalog listings. Zero value lists everything.
type ListFilter struct {
	Category   string // category name; empty means all
	ActiveOnly bool
}

// Stats are the admin dashboard counters for catalog collections.
type Stats struct {
	TotalProducts int
	TotalServices int
	TotalSellers  int
}

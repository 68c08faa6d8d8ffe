package models

import (
	"math"
	"sort"
	"strings"

	"agrimarket-backend/internal/utils"
)

// Product sort keys accepted by the catalog listing
const (
	ProductSortPriceAsc  = "price_asc"
	ProductSortPriceDesc = "price_desc"
	ProductSortRating    = "rating"
	ProductSortNewest    = "newest"
)

// ProductSeller is the seller summary embedded in a product
type ProductSeller struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
}

// Product represents a product listed on the marketplace
type Product struct {
	ID          FlexibleID     `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Price       float64        `json:"price"`
	OldPrice    *float64       `json:"oldPrice,omitempty"`
	Category    string         `json:"category"`
	Images      []string       `json:"images"`
	Quantity    int            `json:"quantity"`
	Unit        string         `json:"unit"`
	Rating      float64        `json:"rating"`
	Seller      *ProductSeller `json:"seller,omitempty"`
	CreatedAt   FlexibleDate   `json:"createdAt"`
}

// Category represents a product category
type Category struct {
	ID   FlexibleID `json:"id"`
	Name string     `json:"name"`
	Slug string     `json:"slug,omitempty"`
}

// InStock checks if the product can currently be ordered
func (p *Product) InStock() bool {
	return p.Quantity > 0
}

// DiscountPercent returns the rounded discount against the old price, or 0.
func (p *Product) DiscountPercent() int {
	if p.OldPrice == nil || *p.OldPrice <= 0 || *p.OldPrice <= p.Price {
		return 0
	}
	return int(math.Round((*p.OldPrice - p.Price) / *p.OldPrice * 100))
}

// ResolveImages rewrites relative storage paths into absolute URLs under assetBaseURL.
func (p *Product) ResolveImages(assetBaseURL string) {
	for i, img := range p.Images {
		if img == "" || strings.HasPrefix(img, "http://") || strings.HasPrefix(img, "https://") {
			continue
		}
		path := strings.TrimLeft(img, "/")
		if !strings.HasPrefix(path, "storage/") {
			path = "storage/" + path
		}
		p.Images[i] = utils.JoinURL(assetBaseURL, path)
	}
}

// ProductView is the storefront rendering of a product
type ProductView struct {
	Product
	DiscountPercent int    `json:"discountPercent"`
	InStock         bool   `json:"inStock"`
	PriceLabel      string `json:"priceLabel"`
}

// ProductFilter holds the catalog search/filter/sort state
type ProductFilter struct {
	Search   string
	Category string
	MinPrice *float64
	MaxPrice *float64
	Sort     string
	Page     int
	Limit    int
}

// Matches reports whether a product satisfies every filter predicate
func (f ProductFilter) Matches(p Product) bool {
	if f.Search != "" && !utils.ContainsFold(p.Name, f.Search) && !utils.ContainsFold(p.Description, f.Search) {
		return false
	}
	if f.Category != "" && f.Category != "all" && !strings.EqualFold(p.Category, f.Category) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	return true
}

// Apply filters and sorts products without mutating the input
func (f ProductFilter) Apply(products []Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Matches(p) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case ProductSortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case ProductSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case ProductSortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case ProductSortNewest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Time.After(out[j].CreatedAt.Time) })
	}

	return out
}

// ProductPage is a page of catalog results
type ProductPage struct {
	Items []ProductView `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ProductInput represents data for creating or updating a product
type ProductInput struct {
	Name        string   `json:"name" form:"name"`
	Description string   `json:"description" form:"description"`
	Price       float64  `json:"price" form:"price"`
	OldPrice    *float64 `json:"oldPrice,omitempty" form:"oldPrice"`
	Category    string   `json:"category" form:"category"`
	Quantity    int      `json:"quantity" form:"quantity"`
	Unit        string   `json:"unit" form:"unit"`
}

// Validate runs the presence checks the seller forms rely on
func (in ProductInput) Validate() error {
	var v utils.Validator
	v.Required("name", in.Name)
	v.Required("category", in.Category)
	v.Required("unit", in.Unit)
	v.Positive("price", in.Price)
	v.NonNegative("quantity", in.Quantity)
	return v.Err()
}

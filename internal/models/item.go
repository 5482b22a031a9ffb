package models

import "time"

type Item struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Status      string    `json:"status"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ItemImage struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	URL       string    `json:"url"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// ItemSummary is the grid/search representation: the listing plus the first
// image and enough seller context to render a card.
type ItemSummary struct {
	Item
	ThumbnailURL   *string `json:"thumbnail_url,omitempty"`
	SellerName     string  `json:"seller_name"`
	SellerVerified bool    `json:"seller_verified"`
}

type ItemDetail struct {
	Item
	Images []ItemImage  `json:"images"`
	Seller PublicSeller `json:"seller"`
}

type ItemWithScore struct {
	ItemSummary
	MatchScore int `json:"match_score"`
}

package models

import "time"

type Offer struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"item_id"`
	BuyerID   int64     `json:"buyer_id"`
	Amount    float64   `json:"amount"`
	Note      *string   `json:"note"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

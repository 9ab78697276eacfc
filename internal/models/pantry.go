package models

// PantryItem 使用者庫存中的一筆食材
type PantryItem struct {
	ID             int64   `json:"id"`
	UserID         int64   `json:"user_id"`
	Name           string  `json:"name"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit"`
	ExpirationDate *Date   `json:"expiration_date,omitempty"`
}

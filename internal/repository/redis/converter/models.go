package converter

import "time"

// ProductInfoRedisModel — сериализуемая в JSON проекция товара для кэша.
type ProductInfoRedisModel struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Brand       string    `json:"brand"`
	Stock       int32     `json:"stock"`
	Rating      float64   `json:"rating"`
	NumReviews  int32     `json:"num_reviews"`
	CreatedAt   time.Time `json:"created_at"`
}

package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
type ProductModel struct {
	ID               int64      `db:"id"`
	Name             string     `db:"name"`
	Description      string     `db:"description"`
	Price            int64      `db:"price"`
	Category         string     `db:"category"`
	Image            string     `db:"image"`
	Brand            string     `db:"brand"`
	Stock            int32      `db:"stock"`
	Rating           float64    `db:"rating"`
	NumReviews       int32      `db:"num_reviews"`
	CreatedAt        time.Time  `db:"created_at"`
	UpdatedAt        *time.Time `db:"updated_at"`
	IsArchived       bool       `db:"is_archived"`
	ExternalVectorID *string    `db:"external_vector_id"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	ProductID   int64      `db:"product_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}

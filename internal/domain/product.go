package domain

import (
	"strconv"
	"time"
)

// Product описывает товар каталога.
// Для скоринга рекомендаций используется как неизменяемый снимок.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       int64 // Цена хранится в копейках
	Category    string
	Image       string
	Brand       string
	Stock       int32
	Rating      float64 // В диапазоне [0, 5]
	NumReviews  int32
	CreatedAt   time.Time
	UpdatedAt   *time.Time
	IsArchived  bool
	// ExternalVectorID — идентификатор точки в векторном хранилище.
	// Пустая строка, если точка ещё не назначена: тогда точка адресуется каноническим ID товара.
	ExternalVectorID string
}

// VectorPointID возвращает ID точки товара в векторном хранилище:
// внешний ID, если назначен, иначе канонический ID товара.
func (p *Product) VectorPointID() string {
	if p.ExternalVectorID != "" {
		return p.ExternalVectorID
	}

	return strconv.FormatInt(p.ID, 10)
}

func NewProduct(name string, description string, price int64, category string, brand string, stock int32) *Product {
	return &Product{
		Name:        name,
		Description: description,
		Price:       price,
		Category:    category,
		Brand:       brand,
		Stock:       stock,
	}
}

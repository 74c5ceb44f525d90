package domain

import "time"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// Embedding представляет эмбеддинг текста одного товара
type Embedding struct {
	ID      string
	Vector  []float32
	Payload Payload
}

func NewEmbedding(id string, vector []float32, payload Payload) *Embedding {
	return &Embedding{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// NewProductPayload формирует payload вектора товара.
// По product_id из payload восстанавливается канонический ID товара при трансляции матчей.
func NewProductPayload(product *Product) Payload {
	return Payload{
		"product_id": product.ID,
		"category":   product.Category,
		"brand":      product.Brand,
		"price":      product.Price,
		"image":      product.Image,
		"created_at": time.Now().UTC().UnixNano(),
	}
}

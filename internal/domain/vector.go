package domain

// VectorMatch — один ближайший сосед из векторного хранилища.
// ProductID восстанавливается из payload точки.
type VectorMatch struct {
	ExternalID string
	ProductID  int64
	Score      float32
}

func NewVectorMatch(externalID string, productID int64, score float32) VectorMatch {
	return VectorMatch{
		ExternalID: externalID,
		ProductID:  productID,
		Score:      score,
	}
}

// VectorRecord — запись вектора, прочитанная из хранилища при batch-выборке.
type VectorRecord struct {
	ExternalID string
	ProductID  int64
	Vector     []float32
}

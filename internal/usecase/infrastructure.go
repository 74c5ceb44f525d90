package usecase

import "context"

// EmbeddingInfra — внешний сервис эмбеддингов.
// Ошибки оборачиваются в e.ErrEmbedding; для оркестратора это «эмбеддинг недоступен».
type EmbeddingInfra interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

type ImagesInfra interface {
	UploadImages(ctx context.Context, req *UploadImagesReq) (*UploadImagesRes, error)
	CleanupImages(keys []string)
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

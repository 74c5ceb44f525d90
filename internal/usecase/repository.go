package usecase

import (
	"context"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
)

// CatalogRepository — читающий и пишущий доступ к каталогу товаров.
type CatalogRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error)
	FindByCategories(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]domain.Product, error)
	FindAll(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error)
	FindTopRated(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error)
	Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error)
}

// VectorRepository — контракт векторного хранилища ближайших соседей.
// Любая транспортная ошибка оборачивается в e.ErrVectorBackend и считается восстановимой.
type VectorRepository interface {
	// QueryByID возвращает соседей точки с указанным ID.
	// Пустой срез без ошибки, если точка не существует.
	QueryByID(ctx context.Context, externalID string, topK uint64) ([]domain.VectorMatch, error)
	QueryByVector(ctx context.Context, vector []float32, topK uint64) ([]domain.VectorMatch, error)
	// FetchVectors возвращает записи по ID; отсутствующие ID просто не попадают в мапу.
	FetchVectors(ctx context.Context, externalIDs []string) (map[string]domain.VectorRecord, error)
	Upsert(ctx context.Context, embeddings []domain.Embedding) error
	Delete(ctx context.Context, externalIDs []string) error
}

type CacheRepository interface {
	GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error)
	SetProducts(ctx context.Context, products []ProductInfo) error
	DeleteProducts(ctx context.Context, ids []int64) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
}

type ImageRepository interface {
	Upload(ctx context.Context, image *domain.Image) (string, error)
	Delete(ctx context.Context, key string) error
}

package usecase

import (
	"context"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
)

const (
	// defaultPoolLimit ограничивает размер пула кандидатов на один запрос
	defaultPoolLimit = 150
	// widenThreshold — минимальный размер пула по категории, ниже которого пул расширяется
	// запросом без фильтра. Жёсткий фильтр по категории на тонком каталоге оставил бы
	// рекомендации без кандидатов.
	widenThreshold = 5
)

// PoolBuilder собирает ограниченный дедуплицированный пул кандидатов для детерминированного скоринга.
// Пул живёт в рамках одного запроса рекомендаций и не сохраняется.
type PoolBuilder struct {
	catalogRepo CatalogRepository
	limit       int
	logger      logger.Logger
}

func NewPoolBuilder(catalogRepo CatalogRepository, logger logger.Logger) *PoolBuilder {
	return &PoolBuilder{
		catalogRepo: catalogRepo,
		limit:       defaultPoolLimit,
		logger:      logger,
	}
}

// BuildPool возвращает кандидатов, исключая excludeIDs.
// При непустом списке категорий основным запросом идёт выборка по категориям;
// если она дала меньше widenThreshold товаров, пул дополняется выборкой без фильтра,
// записи основного запроса при дубликатах сохраняются.
func (b *PoolBuilder) BuildPool(ctx context.Context, excludeIDs []int64, categories []string) ([]domain.Product, error) {
	const op = "PoolBuilder.BuildPool"

	var (
		primary []domain.Product
		err     error
	)

	if len(categories) > 0 {
		primary, err = b.catalogRepo.FindByCategories(ctx, categories, excludeIDs, b.limit)
	} else {
		primary, err = b.catalogRepo.FindAll(ctx, excludeIDs, b.limit)
	}
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	primary = dedupeProducts(primary, b.limit)

	// Без фильтра по категории расширять нечем — основной результат финален
	if len(categories) == 0 || len(primary) >= widenThreshold {
		return primary, nil
	}

	supplemental, err := b.catalogRepo.FindAll(ctx, excludeIDs, b.limit)
	if err != nil {
		// Расширение не удалось — отдаём хотя бы основной пул
		b.logger.Warnf("pool widening failed, keeping primary pool: %v", e.Wrap(op, err))
		return primary, nil
	}

	return mergeProducts(primary, supplemental, b.limit), nil
}

// dedupeProducts убирает дубликаты по ID, сохраняя первый встреченный, и ограничивает размер.
func dedupeProducts(products []domain.Product, limit int) []domain.Product {
	seen := make(map[int64]struct{}, len(products))
	result := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if _, ok := seen[product.ID]; ok {
			continue
		}
		seen[product.ID] = struct{}{}

		result = append(result, product)
		if len(result) >= limit {
			break
		}
	}

	return result
}

// mergeProducts объединяет два списка по ID, записи primary при дубликатах сохраняются.
func mergeProducts(primary, supplemental []domain.Product, limit int) []domain.Product {
	seen := make(map[int64]struct{}, len(primary))
	for _, product := range primary {
		seen[product.ID] = struct{}{}
	}

	result := primary
	for _, product := range supplemental {
		if len(result) >= limit {
			break
		}

		if _, ok := seen[product.ID]; ok {
			continue
		}
		seen[product.ID] = struct{}{}

		result = append(result, product)
	}

	return result
}

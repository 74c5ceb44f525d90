package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
)

const (
	// DefaultSimilarLimit — размер выдачи похожих товаров по умолчанию
	DefaultSimilarLimit = 5
	// DefaultGroupLimit — размер групповой выдачи по умолчанию
	DefaultGroupLimit = 10
	// queryBuffer — запас topK на отфильтрованные совпадения (сам товар, битые точки)
	queryBuffer = 3
	// maxConcurrentResyncs ограничивает параллельные ресинки векторов в групповом запросе
	maxConcurrentResyncs = 8
)

// RecommendationUseCase реализует многоуровневый подбор рекомендаций:
// векторный поиск → детерминированный скоринг → топ по рейтингу → сам товар.
// Уровни не смешиваются: выдачу формирует первый непустой.
type RecommendationUseCase struct {
	catalogRepo CatalogRepository
	vectorRepo  VectorRepository
	embedding   EmbeddingInfra
	cacheRepo   CacheRepository
	pool        *PoolBuilder
	logger      logger.Logger
}

func NewRecommendationUC(
	catalogRepo CatalogRepository,
	vectorRepo VectorRepository,
	embedding EmbeddingInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *RecommendationUseCase {
	return &RecommendationUseCase{
		catalogRepo: catalogRepo,
		vectorRepo:  vectorRepo,
		embedding:   embedding,
		cacheRepo:   cacheRepo,
		pool:        NewPoolBuilder(catalogRepo, logger),
		logger:      logger,
	}
}

// Similar возвращает товары, похожие на указанный.
// Возвращает e.ErrProductNotFound, если товара нет в каталоге; при существующем товаре
// выдача никогда не пуста — последним уровнем возвращается сам товар.
func (r *RecommendationUseCase) Similar(ctx context.Context, req *SimilarReq) (*RecommendationRes, error) {
	const op = "RecommendationUseCase.Similar"

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}

	product, err := r.catalogRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Уровень 1: векторный поиск с одним ленивым ресинком
	if products := r.similarByVector(ctx, product, limit); len(products) > 0 {
		return NewRecommendationRes(products, SourceVector), nil
	}

	// Уровень 2: детерминированный скоринг по пулу кандидатов
	products, err := r.similarByScoring(ctx, []domain.Product{*product}, limit)
	if err != nil {
		r.logger.Warnf("scoring fallback failed: %v", e.Wrap(op, err))
	}
	if len(products) > 0 {
		return NewRecommendationRes(products, SourceScoring), nil
	}

	// Уровень 3: топ каталога по рейтингу
	if products := r.backupByRating(ctx, []int64{product.ID}, limit); len(products) > 0 {
		return NewRecommendationRes(products, SourceTopRated), nil
	}

	// Уровень 4: сам товар, чтобы не отдавать пустую выдачу
	return NewRecommendationRes([]ProductInfo{NewProductInfo(product)}, SourceSelf), nil
}

// GroupSimilar возвращает рекомендации для группы товаров через центроид их векторов.
// Возвращает e.ErrNoProductsFound, если ни один ID не разрешился в товар каталога.
func (r *RecommendationUseCase) GroupSimilar(ctx context.Context, req *GroupSimilarReq) (*RecommendationRes, error) {
	const op = "RecommendationUseCase.GroupSimilar"

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultGroupLimit
	}

	baseProducts, err := r.catalogRepo.FindByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(baseProducts) == 0 {
		return nil, e.Wrap(op, e.ErrNoProductsFound)
	}
	// БД не гарантирует порядок строк — восстанавливаем порядок запроса
	baseProducts = orderByRequest(baseProducts, req.ProductIDs)

	// Уровень 1: соседи центроида векторов базовых товаров
	if products := r.groupByVector(ctx, baseProducts, limit); len(products) > 0 {
		return NewRecommendationRes(products, SourceVector), nil
	}

	// Уровень 2: скоринг по максимуму похожести на любой из базовых товаров
	products, err := r.similarByScoring(ctx, baseProducts, limit)
	if err != nil {
		r.logger.Warnf("scoring fallback failed: %v", e.Wrap(op, err))
	}
	if len(products) > 0 {
		return NewRecommendationRes(products, SourceScoring), nil
	}

	// Уровень 3: топ каталога по рейтингу
	if products := r.backupByRating(ctx, productIDs(baseProducts), limit); len(products) > 0 {
		return NewRecommendationRes(products, SourceTopRated), nil
	}

	// Уровень 4: сами базовые товары, усечённые до лимита
	if len(baseProducts) > limit {
		baseProducts = baseProducts[:limit]
	}

	return NewRecommendationRes(ToArrProductInfo(baseProducts), SourceSelf), nil
}

// similarByVector выполняет векторный поиск для одного товара.
// При пустом ответе хранилища делает ровно один ресинк (эмбеддинг + upsert) и один повтор;
// любая ошибка на этом уровне деградирует до следующего, а не прерывает запрос.
func (r *RecommendationUseCase) similarByVector(ctx context.Context, product *domain.Product, limit int) []ProductInfo {
	const op = "RecommendationUseCase.similarByVector"

	topK := uint64(limit + queryBuffer)
	pointID := product.VectorPointID()

	matches, err := r.vectorRepo.QueryByID(ctx, pointID, topK)
	if err != nil {
		r.logger.Warnf("vector query failed, degrading: %v", e.Wrap(op, err))
		return nil
	}

	if len(matches) == 0 {
		// Ленивый ресинк строго последователен: сначала upsert, затем единственный повтор
		if err := r.resyncVector(ctx, product); err != nil {
			r.logger.Warnf("lazy resync failed, degrading: %v", e.Wrap(op, err))
			return nil
		}

		matches, err = r.vectorRepo.QueryByID(ctx, pointID, topK)
		if err != nil {
			r.logger.Warnf("vector retry failed, degrading: %v", e.Wrap(op, err))
			return nil
		}
	}

	ids := translateMatches(matches, map[int64]struct{}{product.ID: {}}, limit)
	if len(ids) == 0 {
		return nil
	}

	products, err := r.loadProducts(ctx, ids)
	if err != nil {
		r.logger.Warnf("loading matched products failed, degrading: %v", e.Wrap(op, err))
		return nil
	}

	return products
}

// groupByVector ищет соседей центроида векторов базовых товаров.
func (r *RecommendationUseCase) groupByVector(ctx context.Context, baseProducts []domain.Product, limit int) []ProductInfo {
	const op = "RecommendationUseCase.groupByVector"

	records, err := r.fetchBaseVectors(ctx, baseProducts)
	if err != nil {
		r.logger.Warnf("fetching base vectors failed, degrading: %v", e.Wrap(op, err))
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	vectors := make([][]float32, 0, len(records))
	for _, record := range records {
		vectors = append(vectors, record.Vector)
	}

	center := centroid(vectors)
	if len(center) == 0 {
		return nil
	}

	topK := uint64(limit + len(baseProducts) + queryBuffer)
	matches, err := r.vectorRepo.QueryByVector(ctx, center, topK)
	if err != nil {
		r.logger.Warnf("centroid query failed, degrading: %v", e.Wrap(op, err))
		return nil
	}

	exclude := make(map[int64]struct{}, len(baseProducts))
	for _, product := range baseProducts {
		exclude[product.ID] = struct{}{}
	}

	ids := translateMatches(matches, exclude, limit)
	if len(ids) == 0 {
		return nil
	}

	products, err := r.loadProducts(ctx, ids)
	if err != nil {
		r.logger.Warnf("loading matched products failed, degrading: %v", e.Wrap(op, err))
		return nil
	}

	return products
}

// fetchBaseVectors выполняет batch-выборку векторов базовых товаров.
// Товары без вектора ресинкаются (параллельно, с ограничением), после чего выборка повторяется.
func (r *RecommendationUseCase) fetchBaseVectors(ctx context.Context, baseProducts []domain.Product) (map[string]domain.VectorRecord, error) {
	pointIDs := make([]string, 0, len(baseProducts))
	for i := range baseProducts {
		pointIDs = append(pointIDs, baseProducts[i].VectorPointID())
	}

	records, err := r.vectorRepo.FetchVectors(ctx, pointIDs)
	if err != nil {
		return nil, err
	}

	var missing []domain.Product
	for i := range baseProducts {
		if _, ok := records[baseProducts[i].VectorPointID()]; !ok {
			missing = append(missing, baseProducts[i])
		}
	}
	if len(missing) == 0 {
		return records, nil
	}

	resynced := r.resyncVectors(ctx, missing)
	if resynced == 0 {
		return records, nil
	}

	refetched, err := r.vectorRepo.FetchVectors(ctx, pointIDs)
	if err != nil {
		// Повторная выборка не удалась — работаем с тем, что прочитали первым запросом
		r.logger.Warnf("refetch after resync failed: %v", err)
		return records, nil
	}

	return refetched, nil
}

// resyncVector пересчитывает и сохраняет вектор товара. Идемпотентен: повторный upsert безопасен.
func (r *RecommendationUseCase) resyncVector(ctx context.Context, product *domain.Product) error {
	vector, err := r.embedding.EmbedText(ctx, embeddingText(product))
	if err != nil {
		return err
	}

	embedding := domain.NewEmbedding(product.VectorPointID(), vector, domain.NewProductPayload(product))

	return r.vectorRepo.Upsert(ctx, []domain.Embedding{*embedding})
}

// resyncVectors параллельно ресинкает векторы товаров и возвращает число успешных ресинков.
func (r *RecommendationUseCase) resyncVectors(ctx context.Context, products []domain.Product) int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		resynced int
	)
	sem := make(chan struct{}, maxConcurrentResyncs)

	for i := range products {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := r.resyncVector(ctx, &products[i]); err != nil {
				r.logger.Warnf("resync of product %d failed: %v", products[i].ID, err)
				return
			}

			mu.Lock()
			resynced++
			mu.Unlock()
		}()
	}

	wg.Wait()

	return resynced
}

// similarByScoring — детерминированный fallback: пул кандидатов, скоринг, устойчивая сортировка.
// Оценка кандидата в групповом запросе — максимум похожести на любой из базовых товаров.
func (r *RecommendationUseCase) similarByScoring(ctx context.Context, baseProducts []domain.Product, limit int) ([]ProductInfo, error) {
	candidates, err := r.pool.BuildPool(ctx, productIDs(baseProducts), baseCategories(baseProducts))
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	ranked := rankByScore(baseProducts, candidates)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ToArrProductInfo(ranked), nil
}

// backupByRating возвращает топ каталога по рейтингу, исключая базовые товары.
func (r *RecommendationUseCase) backupByRating(ctx context.Context, excludeIDs []int64, limit int) []ProductInfo {
	const op = "RecommendationUseCase.backupByRating"

	products, err := r.catalogRepo.FindTopRated(ctx, excludeIDs, limit)
	if err != nil {
		r.logger.Warnf("top rated backup failed: %v", e.Wrap(op, err))
		return nil
	}

	return ToArrProductInfo(products)
}

// loadProducts загружает проекции товаров по ID, сохраняя порядок ids:
// сначала кэш, промахи — из каталога с фоновым дозаполнением кэша.
func (r *RecommendationUseCase) loadProducts(ctx context.Context, ids []int64) ([]ProductInfo, error) {
	const op = "RecommendationUseCase.loadProducts"

	cached, err := r.cacheRepo.GetProducts(ctx, ids)
	if err != nil {
		cached = nil
	}

	var missed []int64
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missed = append(missed, id)
		}
	}

	fromDB := make(map[int64]ProductInfo, len(missed))
	if len(missed) > 0 {
		products, err := r.catalogRepo.FindByIDs(ctx, missed)
		if err != nil {
			return nil, e.Wrap(op, err)
		}

		infos := ToArrProductInfo(products)
		for _, info := range infos {
			fromDB[info.ID] = info
		}

		// Фоновое добавление товаров в кэш
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := r.cacheRepo.SetProducts(bgCtx, infos); err != nil {
				r.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
			}
		}()
	}

	result := make([]ProductInfo, 0, len(ids))
	for _, id := range ids {
		if info, ok := cached[id]; ok {
			result = append(result, info)
		} else if info, ok := fromDB[id]; ok {
			result = append(result, info)
		}
		// Отсутствующий в каталоге ID молча пропускается: точка в хранилище пережила товар
	}

	return result, nil
}

// translateMatches переводит матчи в канонические ID товаров:
// исключает exclude, дедуплицирует по первому вхождению, усечение до limit.
func translateMatches(matches []domain.VectorMatch, exclude map[int64]struct{}, limit int) []int64 {
	seen := make(map[int64]struct{}, len(matches))
	ids := make([]int64, 0, limit)

	for _, match := range matches {
		if match.ProductID == 0 {
			continue // точка без канонического ID товара в payload
		}
		if _, ok := exclude[match.ProductID]; ok {
			continue
		}
		if _, ok := seen[match.ProductID]; ok {
			continue
		}
		seen[match.ProductID] = struct{}{}

		ids = append(ids, match.ProductID)
		if len(ids) >= limit {
			break
		}
	}

	return ids
}

// rankByScore сортирует кандидатов по убыванию оценки.
// Сортировка устойчивая: при равных оценках сохраняется исходный порядок пула.
func rankByScore(baseProducts, candidates []domain.Product) []domain.Product {
	type scored struct {
		product domain.Product
		score   float64
	}

	ranked := make([]scored, 0, len(candidates))
	for i := range candidates {
		best := 0.0
		for j := range baseProducts {
			if s := ScoreProducts(&baseProducts[j], &candidates[i]); s > best {
				best = s
			}
		}
		ranked = append(ranked, scored{product: candidates[i], score: best})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	result := make([]domain.Product, 0, len(ranked))
	for _, entry := range ranked {
		result = append(result, entry.product)
	}

	return result
}

// centroid возвращает поэлементное среднее векторов.
// Векторы с отличающейся размерностью пропускаются как нарушение целостности данных.
func centroid(vectors [][]float32) []float32 {
	if len(vectors) == 0 {
		return nil
	}

	dims := len(vectors[0])
	if dims == 0 {
		return nil
	}

	sums := make([]float64, dims)
	count := 0
	for _, vector := range vectors {
		if len(vector) != dims {
			continue
		}

		for i, value := range vector {
			sums[i] += float64(value)
		}
		count++
	}

	if count == 0 {
		return nil
	}

	result := make([]float32, dims)
	for i, sum := range sums {
		result[i] = float32(sum / float64(count))
	}

	return result
}

func embeddingText(product *domain.Product) string {
	if product.Description == "" {
		return product.Name
	}

	return product.Name + ". " + product.Description
}

// orderByRequest выстраивает товары в порядке исходного списка идентификаторов,
// пропуская отсутствующие и повторные.
func orderByRequest(products []domain.Product, ids []int64) []domain.Product {
	byID := make(map[int64]domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = products[i]
	}

	ordered := make([]domain.Product, 0, len(products))
	for _, id := range ids {
		if product, ok := byID[id]; ok {
			ordered = append(ordered, product)
			delete(byID, id)
		}
	}

	return ordered
}

func productIDs(products []domain.Product) []int64 {
	ids := make([]int64, 0, len(products))
	for i := range products {
		ids = append(ids, products[i].ID)
	}

	return ids
}

// baseCategories возвращает уникальные непустые категории базовых товаров.
func baseCategories(products []domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0, len(products))
	for i := range products {
		category := products[i].Category
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}

		categories = append(categories, category)
	}

	return categories
}

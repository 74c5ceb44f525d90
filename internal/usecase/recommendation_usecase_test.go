package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
)

type fakeVectorRepo struct {
	matchesByID        map[string][]domain.VectorMatch
	matchesAfterResync map[string][]domain.VectorMatch
	matchesByVector    []domain.VectorMatch
	records            map[string]domain.VectorRecord
	queryErr           error
	upserted           []domain.Embedding
	lastQueryVector    []float32
	queryByIDCalls     int
}

func (f *fakeVectorRepo) QueryByID(ctx context.Context, externalID string, topK uint64) ([]domain.VectorMatch, error) {
	f.queryByIDCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	// Точка появляется в records после Upsert — с этого момента отдаём "послересинковые" совпадения
	if _, resynced := f.records[externalID]; resynced && f.matchesAfterResync != nil {
		return f.matchesAfterResync[externalID], nil
	}
	return f.matchesByID[externalID], nil
}

func (f *fakeVectorRepo) QueryByVector(ctx context.Context, vector []float32, topK uint64) ([]domain.VectorMatch, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	f.lastQueryVector = vector
	return f.matchesByVector, nil
}

func (f *fakeVectorRepo) FetchVectors(ctx context.Context, externalIDs []string) (map[string]domain.VectorRecord, error) {
	result := make(map[string]domain.VectorRecord, len(externalIDs))
	for _, id := range externalIDs {
		if record, ok := f.records[id]; ok {
			result[id] = record
		}
	}
	return result, nil
}

func (f *fakeVectorRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	f.upserted = append(f.upserted, embeddings...)
	if f.records == nil {
		f.records = make(map[string]domain.VectorRecord)
	}
	for _, embedding := range embeddings {
		f.records[embedding.ID] = domain.VectorRecord{
			ExternalID: embedding.ID,
			Vector:     embedding.Vector,
		}
	}
	return nil
}

func (f *fakeVectorRepo) Delete(ctx context.Context, externalIDs []string) error {
	return nil
}

type fakeEmbedding struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeEmbedding) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeCacheRepo struct {
	products map[int64]ProductInfo
}

func (f *fakeCacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error) {
	result := make(map[int64]ProductInfo)
	for _, id := range ids {
		if info, ok := f.products[id]; ok {
			result[id] = info
		}
	}
	return result, nil
}

func (f *fakeCacheRepo) SetProducts(ctx context.Context, products []ProductInfo) error { return nil }
func (f *fakeCacheRepo) DeleteProducts(ctx context.Context, ids []int64) error         { return nil }

func catalogWith(products ...domain.Product) *fakeCatalogRepo {
	byID := make(map[int64]*domain.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &fakeCatalogRepo{byID: byID}
}

func newTestUC(catalog *fakeCatalogRepo, vectors *fakeVectorRepo, embedding *fakeEmbedding, cache *fakeCacheRepo) *RecommendationUseCase {
	if cache == nil {
		cache = &fakeCacheRepo{}
	}
	return NewRecommendationUC(catalog, vectors, embedding, cache, nopLogger{})
}

func TestSimilarUnknownProduct(t *testing.T) {
	uc := newTestUC(catalogWith(), &fakeVectorRepo{}, &fakeEmbedding{}, nil)

	_, err := uc.Similar(context.Background(), NewSimilarReq(404, 5))
	if !errors.Is(err, e.ErrProductNotFound) {
		t.Fatalf("Similar() error = %v, want ErrProductNotFound", err)
	}
}

func TestSimilarVectorTier(t *testing.T) {
	base := domain.Product{ID: 1, Name: "база", Category: "электроника"}
	catalog := catalogWith(
		base,
		domain.Product{ID: 2, Name: "второй"},
		domain.Product{ID: 3, Name: "третий"},
		domain.Product{ID: 4, Name: "четвёртый"},
	)
	vectors := &fakeVectorRepo{
		matchesByID: map[string][]domain.VectorMatch{
			"1": {
				{ExternalID: "1", ProductID: 1, Score: 1.0}, // сам товар — исключается
				{ExternalID: "3", ProductID: 3, Score: 0.9},
				{ExternalID: "0", ProductID: 0, Score: 0.8}, // точка без payload — пропускается
				{ExternalID: "2", ProductID: 2, Score: 0.7},
				{ExternalID: "3b", ProductID: 3, Score: 0.6}, // дубликат товара 3
				{ExternalID: "4", ProductID: 4, Score: 0.5},
			},
		},
	}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{}, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 2))
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if res.Source != SourceVector {
		t.Fatalf("source = %s, want %s", res.Source, SourceVector)
	}
	if len(res.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(res.Products))
	}
	// Порядок убывания score хранилища, лимит после фильтрации
	if res.Products[0].ID != 3 || res.Products[1].ID != 2 {
		t.Fatalf("got order [%d, %d], want [3, 2]", res.Products[0].ID, res.Products[1].ID)
	}
}

func TestSimilarLazyResync(t *testing.T) {
	base := domain.Product{ID: 1, Name: "база", Description: "описание"}
	catalog := catalogWith(base, domain.Product{ID: 2, Name: "второй"})
	vectors := &fakeVectorRepo{}
	embedding := &fakeEmbedding{vector: []float32{0.1, 0.2}}
	uc := newTestUC(catalog, vectors, embedding, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 5))
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}

	// Ресинк строго одиночный: один эмбеддинг, один upsert точки товара
	if embedding.calls != 1 {
		t.Fatalf("embedding called %d times, want exactly 1", embedding.calls)
	}
	if len(vectors.upserted) != 1 {
		t.Fatalf("upserted %d embeddings, want 1", len(vectors.upserted))
	}
	if vectors.upserted[0].ID != "1" {
		t.Fatalf("resynced point ID = %s, want 1", vectors.upserted[0].ID)
	}

	// Повтор после ресинка всё ещё пуст — деградация ниже векторного уровня
	if res.Source == SourceVector {
		t.Fatalf("source = %s, want a fallback tier", res.Source)
	}
}

func TestSimilarResyncRestoresVectorTier(t *testing.T) {
	base := domain.Product{ID: 1, Name: "база", Description: "описание"}
	catalog := catalogWith(
		base,
		domain.Product{ID: 2, Name: "второй"},
		domain.Product{ID: 3, Name: "третий"},
	)
	vectors := &fakeVectorRepo{
		matchesAfterResync: map[string][]domain.VectorMatch{
			"1": {
				{ExternalID: "2", ProductID: 2, Score: 0.9},
				{ExternalID: "3", ProductID: 3, Score: 0.8},
			},
		},
	}
	embedding := &fakeEmbedding{vector: []float32{0.1, 0.2}}
	uc := newTestUC(catalog, vectors, embedding, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 5))
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}

	// Промах, ресинк, ровно один повтор — и он даёт векторный результат
	if embedding.calls != 1 {
		t.Fatalf("embedding called %d times, want exactly 1", embedding.calls)
	}
	if len(vectors.upserted) != 1 || vectors.upserted[0].ID != "1" {
		t.Fatalf("unexpected upserts: %+v", vectors.upserted)
	}
	if vectors.queryByIDCalls != 2 {
		t.Fatalf("QueryByID called %d times, want 2", vectors.queryByIDCalls)
	}
	if res.Source != SourceVector {
		t.Fatalf("source = %s, want %s", res.Source, SourceVector)
	}
	if len(res.Products) != 2 || res.Products[0].ID != 2 || res.Products[1].ID != 3 {
		t.Fatalf("got %+v, want products [2, 3]", res.Products)
	}
}

func TestSimilarVectorFailureFallsBackToScoring(t *testing.T) {
	base := domain.Product{ID: 1, Name: "наушники sony", Category: "электроника", Brand: "sony", Price: 100_00}
	match := domain.Product{ID: 2, Name: "наушники sony pro", Category: "электроника", Brand: "sony", Price: 110_00}
	other := domain.Product{ID: 3, Name: "чайник", Category: "кухня", Price: 30_00}

	catalog := catalogWith(base, match, other)
	catalog.byCategories = []domain.Product{match}
	catalog.all = []domain.Product{match, other}

	vectors := &fakeVectorRepo{queryErr: e.ErrVectorBackend}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{err: e.ErrEmbedding}, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 5))
	if err != nil {
		t.Fatalf("Similar() error = %v, want scored fallback", err)
	}
	if res.Source != SourceScoring {
		t.Fatalf("source = %s, want %s", res.Source, SourceScoring)
	}
	if len(res.Products) == 0 {
		t.Fatalf("scored fallback returned no products")
	}
	if res.Products[0].ID != 2 {
		t.Fatalf("best scored product = %d, want 2", res.Products[0].ID)
	}
}

func TestSimilarTopRatedTier(t *testing.T) {
	base := domain.Product{ID: 1, Name: "база"}
	top := domain.Product{ID: 9, Name: "бестселлер", Rating: 4.9}

	catalog := catalogWith(base, top)
	catalog.topRated = []domain.Product{top}

	vectors := &fakeVectorRepo{queryErr: e.ErrVectorBackend}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{err: e.ErrEmbedding}, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 5))
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if res.Source != SourceTopRated {
		t.Fatalf("source = %s, want %s", res.Source, SourceTopRated)
	}
	if len(res.Products) != 1 || res.Products[0].ID != 9 {
		t.Fatalf("unexpected top rated result: %+v", res.Products)
	}
}

func TestSimilarSelfTier(t *testing.T) {
	base := domain.Product{ID: 1, Name: "единственный"}
	catalog := catalogWith(base)

	vectors := &fakeVectorRepo{queryErr: e.ErrVectorBackend}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{err: e.ErrEmbedding}, nil)

	res, err := uc.Similar(context.Background(), NewSimilarReq(1, 5))
	if err != nil {
		t.Fatalf("Similar() error = %v", err)
	}
	if res.Source != SourceSelf {
		t.Fatalf("source = %s, want %s", res.Source, SourceSelf)
	}
	if len(res.Products) != 1 || res.Products[0].ID != 1 {
		t.Fatalf("self tier must return the product itself, got %+v", res.Products)
	}
}

func TestGroupSimilarNoProducts(t *testing.T) {
	uc := newTestUC(catalogWith(), &fakeVectorRepo{}, &fakeEmbedding{}, nil)

	_, err := uc.GroupSimilar(context.Background(), NewGroupSimilarReq([]int64{7, 8}, 5))
	if !errors.Is(err, e.ErrNoProductsFound) {
		t.Fatalf("GroupSimilar() error = %v, want ErrNoProductsFound", err)
	}
}

func TestGroupSimilarCentroid(t *testing.T) {
	a := domain.Product{ID: 1, Name: "a"}
	b := domain.Product{ID: 2, Name: "b"}
	rec := domain.Product{ID: 5, Name: "рекомендация"}

	catalog := catalogWith(a, b, rec)
	vectors := &fakeVectorRepo{
		records: map[string]domain.VectorRecord{
			"1": {ExternalID: "1", ProductID: 1, Vector: []float32{1, 0}},
			"2": {ExternalID: "2", ProductID: 2, Vector: []float32{0, 1}},
		},
		matchesByVector: []domain.VectorMatch{
			{ExternalID: "1", ProductID: 1, Score: 0.99}, // базовый — исключается
			{ExternalID: "5", ProductID: 5, Score: 0.9},
		},
	}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{}, nil)

	res, err := uc.GroupSimilar(context.Background(), NewGroupSimilarReq([]int64{1, 2}, 5))
	if err != nil {
		t.Fatalf("GroupSimilar() error = %v", err)
	}
	if res.Source != SourceVector {
		t.Fatalf("source = %s, want %s", res.Source, SourceVector)
	}
	if len(res.Products) != 1 || res.Products[0].ID != 5 {
		t.Fatalf("unexpected result: %+v", res.Products)
	}

	want := []float32{0.5, 0.5}
	if len(vectors.lastQueryVector) != 2 || vectors.lastQueryVector[0] != want[0] || vectors.lastQueryVector[1] != want[1] {
		t.Fatalf("centroid = %v, want %v", vectors.lastQueryVector, want)
	}
}

func TestGroupSimilarSelfTierTruncates(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 3, Name: "c"},
	}
	catalog := catalogWith(products...)

	vectors := &fakeVectorRepo{queryErr: e.ErrVectorBackend}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{err: e.ErrEmbedding}, nil)

	res, err := uc.GroupSimilar(context.Background(), NewGroupSimilarReq([]int64{1, 2, 3}, 2))
	if err != nil {
		t.Fatalf("GroupSimilar() error = %v", err)
	}
	if res.Source != SourceSelf {
		t.Fatalf("source = %s, want %s", res.Source, SourceSelf)
	}
	if len(res.Products) != 2 {
		t.Fatalf("self tier size = %d, want truncated to 2", len(res.Products))
	}
}

func TestGroupSimilarSelfTierPreservesRequestOrder(t *testing.T) {
	products := []domain.Product{
		{ID: 1, Name: "a"},
		{ID: 2, Name: "b"},
		{ID: 3, Name: "c"},
	}
	catalog := catalogWith(products...)
	catalog.findByIDsReversed = true

	vectors := &fakeVectorRepo{queryErr: e.ErrVectorBackend}
	uc := newTestUC(catalog, vectors, &fakeEmbedding{err: e.ErrEmbedding}, nil)

	res, err := uc.GroupSimilar(context.Background(), NewGroupSimilarReq([]int64{3, 1, 2}, 2))
	if err != nil {
		t.Fatalf("GroupSimilar() error = %v", err)
	}
	if res.Source != SourceSelf {
		t.Fatalf("source = %s, want %s", res.Source, SourceSelf)
	}
	// Усечение идёт по порядку запроса, а не по порядку строк из БД
	if len(res.Products) != 2 || res.Products[0].ID != 3 || res.Products[1].ID != 1 {
		t.Fatalf("got %+v, want products [3, 1]", res.Products)
	}
}

func TestOrderByRequest(t *testing.T) {
	products := []domain.Product{{ID: 2}, {ID: 3}, {ID: 1}}

	got := orderByRequest(products, []int64{1, 7, 2, 2, 3})
	want := []int64{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("orderByRequest() returned %d products, want %d", len(got), len(want))
	}
	for i := range got {
		if got[i].ID != want[i] {
			t.Fatalf("orderByRequest() order = %+v, want ids %v", got, want)
		}
	}
}

func TestCentroid(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float32
		want    []float32
	}{
		{"пусто", nil, nil},
		{"один вектор", [][]float32{{1, 2}}, []float32{1, 2}},
		{"среднее двух", [][]float32{{1, 0}, {0, 1}}, []float32{0.5, 0.5}},
		{"битый вектор пропускается", [][]float32{{1, 0}, {5}}, []float32{1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := centroid(tt.vectors)
			if len(got) != len(tt.want) {
				t.Fatalf("centroid() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("centroid() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestTranslateMatches(t *testing.T) {
	matches := []domain.VectorMatch{
		{ProductID: 1},
		{ProductID: 0},
		{ProductID: 2},
		{ProductID: 2},
		{ProductID: 3},
	}

	got := translateMatches(matches, map[int64]struct{}{1: {}}, 5)
	want := []int64{2, 3}
	if len(got) != len(want) {
		t.Fatalf("translateMatches() = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("translateMatches() = %v, want %v", got, want)
		}
	}
}

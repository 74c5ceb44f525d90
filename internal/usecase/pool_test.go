package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
)

type fakeCatalogRepo struct {
	byID              map[int64]*domain.Product
	byCategories      []domain.Product
	all               []domain.Product
	topRated          []domain.Product
	categoriesErr     error
	allErr            error
	allCalls          int
	findByIDsReversed bool
}

func (f *fakeCatalogRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	if p, ok := f.byID[id]; ok {
		return p, nil
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeCatalogRepo) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	result := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			result = append(result, *p)
		}
	}
	// Имитация произвольного порядка строк из БД
	if f.findByIDsReversed {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result, nil
}

func (f *fakeCatalogRepo) FindByCategories(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]domain.Product, error) {
	if f.categoriesErr != nil {
		return nil, f.categoriesErr
	}
	return withoutIDs(f.byCategories, excludeIDs, limit), nil
}

func (f *fakeCatalogRepo) FindAll(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error) {
	f.allCalls++
	if f.allErr != nil {
		return nil, f.allErr
	}
	return withoutIDs(f.all, excludeIDs, limit), nil
}

func (f *fakeCatalogRepo) FindTopRated(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error) {
	return withoutIDs(f.topRated, excludeIDs, limit), nil
}

func (f *fakeCatalogRepo) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	return product, nil
}

func withoutIDs(products []domain.Product, excludeIDs []int64, limit int) []domain.Product {
	exclude := make(map[int64]struct{}, len(excludeIDs))
	for _, id := range excludeIDs {
		exclude[id] = struct{}{}
	}

	result := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if _, ok := exclude[p.ID]; ok {
			continue
		}
		result = append(result, p)
		if len(result) >= limit {
			break
		}
	}
	return result
}

func makeProducts(category string, ids ...int64) []domain.Product {
	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		products = append(products, domain.Product{ID: id, Category: category})
	}
	return products
}

func TestBuildPoolByCategory(t *testing.T) {
	repo := &fakeCatalogRepo{
		byCategories: makeProducts("электроника", 1, 2, 3, 4, 5, 6),
	}
	pool := NewPoolBuilder(repo, nopLogger{})

	got, err := pool.BuildPool(context.Background(), nil, []string{"электроника"})
	if err != nil {
		t.Fatalf("BuildPool() error = %v", err)
	}
	if len(got) != 6 {
		t.Fatalf("pool size = %d, want 6", len(got))
	}
	if repo.allCalls != 0 {
		t.Fatalf("FindAll called %d times for a sufficient category pool", repo.allCalls)
	}
}

func TestBuildPoolWidensThinCategory(t *testing.T) {
	repo := &fakeCatalogRepo{
		byCategories: makeProducts("ниша", 1, 2),
		all:          makeProducts("", 2, 10, 11, 12),
	}
	pool := NewPoolBuilder(repo, nopLogger{})

	got, err := pool.BuildPool(context.Background(), nil, []string{"ниша"})
	if err != nil {
		t.Fatalf("BuildPool() error = %v", err)
	}

	// Основной пул (1, 2) дополняется выборкой без фильтра; дубликат 2 сохраняет запись основного запроса
	wantIDs := []int64{1, 2, 10, 11, 12}
	if len(got) != len(wantIDs) {
		t.Fatalf("pool size = %d, want %d", len(got), len(wantIDs))
	}
	for i, want := range wantIDs {
		if got[i].ID != want {
			t.Fatalf("pool[%d].ID = %d, want %d", i, got[i].ID, want)
		}
	}
	if got[1].Category != "ниша" {
		t.Fatalf("duplicate resolved to supplemental record, want primary")
	}
}

func TestBuildPoolWideningFailureKeepsPrimary(t *testing.T) {
	repo := &fakeCatalogRepo{
		byCategories: makeProducts("ниша", 1, 2),
	}
	pool := NewPoolBuilder(repo, nopLogger{})
	repo.allErr = errors.New("db down")

	got, err := pool.BuildPool(context.Background(), nil, []string{"ниша"})
	if err != nil {
		t.Fatalf("BuildPool() error = %v, want partial pool without error", err)
	}
	if len(got) != 2 {
		t.Fatalf("pool size = %d, want 2", len(got))
	}
}

func TestBuildPoolNoCategoriesUsesFindAll(t *testing.T) {
	repo := &fakeCatalogRepo{
		all: makeProducts("", 1, 2, 3),
	}
	pool := NewPoolBuilder(repo, nopLogger{})

	got, err := pool.BuildPool(context.Background(), []int64{2}, nil)
	if err != nil {
		t.Fatalf("BuildPool() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("pool size = %d, want 2 (ID 2 excluded)", len(got))
	}
	if repo.allCalls != 1 {
		t.Fatalf("FindAll called %d times, want exactly 1", repo.allCalls)
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
)

func TestGetProductsInfo(t *testing.T) {
	catalog := catalogWith(
		domain.Product{ID: 1, Name: "из базы"},
		domain.Product{ID: 2, Name: "тоже из базы"},
	)
	cache := &fakeCacheRepo{
		products: map[int64]ProductInfo{
			2: {ID: 2, Name: "из кэша"},
		},
	}
	uc := NewProductUC(catalog, nil, nil, nil, cache, nopLogger{})

	res, err := uc.GetProductsInfo(context.Background(), NewGetProductsReq([]int64{1, 2, 3}))
	if err != nil {
		t.Fatalf("GetProductsInfo() error = %v", err)
	}

	if len(res.Products) != 2 {
		t.Fatalf("got %d products, want 2", len(res.Products))
	}
	// Порядок запроса сохраняется, кэшированная запись выигрывает у базы
	if res.Products[0].ID != 1 || res.Products[0].Name != "из базы" {
		t.Fatalf("unexpected first product: %+v", res.Products[0])
	}
	if res.Products[1].ID != 2 || res.Products[1].Name != "из кэша" {
		t.Fatalf("cached record must win: %+v", res.Products[1])
	}
	if len(res.NotFoundProducts) != 1 || res.NotFoundProducts[0] != 3 {
		t.Fatalf("NotFoundProducts = %v, want [3]", res.NotFoundProducts)
	}
}

func TestGetProductsInfoEmptyIDs(t *testing.T) {
	uc := NewProductUC(catalogWith(), nil, nil, nil, &fakeCacheRepo{}, nopLogger{})

	_, err := uc.GetProductsInfo(context.Background(), NewGetProductsReq(nil))
	if !errors.Is(err, e.ErrNoProducts) {
		t.Fatalf("GetProductsInfo() error = %v, want ErrNoProducts", err)
	}
}

func TestValidateProduct(t *testing.T) {
	uc := &ProductUseCase{}

	tests := []struct {
		name    string
		req     *AddNewProductReq
		wantErr error
	}{
		{"валидный", &AddNewProductReq{Name: "товар", Price: 100}, nil},
		{"пустое имя", &AddNewProductReq{Name: "   ", Price: 100}, e.ErrProductNameRequired},
		{"нулевая цена", &AddNewProductReq{Name: "товар", Price: 0}, e.ErrPriceMustBePositive},
		{"отрицательная цена", &AddNewProductReq{Name: "товар", Price: -5}, e.ErrPriceMustBePositive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := uc.validateProduct(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("validateProduct() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

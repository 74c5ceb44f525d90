package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
)

func TestParsePriceToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr error
	}{
		{"целое", "600", 60000, nil},
		{"с копейками", "599.99", 59999, nil},
		{"одна цифра после запятой", "10.5", 1050, nil},
		{"пустая строка", "", 0, e.ErrInvalidPrice},
		{"мусор", "abc", 0, e.ErrInvalidPrice},
		{"ноль", "0", 0, e.ErrPriceMustBePositive},
		{"отрицательная", "-10", 0, e.ErrPriceMustBePositive},
		{"три знака после запятой", "10.999", 0, e.ErrPricePrecision},
		{"слишком большая", "2000000000", 0, e.ErrInvalidPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePriceToCents(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("parsePriceToCents(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("parsePriceToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseIDList(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []int64
		wantErr bool
	}{
		{"один ID", "7", []int64{7}, false},
		{"несколько с пробелами", "1, 2,3", []int64{1, 2, 3}, false},
		{"пусто", "", nil, true},
		{"нечисловой", "1,abc", nil, true},
		{"нулевой ID", "0", nil, true},
		{"отрицательный ID", "-3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIDList(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseIDList(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseIDList(%q) = %v, want %v", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("parseIDList(%q) = %v, want %v", tt.input, got, tt.want)
				}
			}
		})
	}
}

func TestToHTTPResponse(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"товар не найден", e.ErrProductNotFound, http.StatusNotFound},
		{"товары не найдены", e.ErrNoProductsFound, http.StatusNotFound},
		{"обёрнутая 404", e.Wrap("RecommendationUseCase.Similar", e.ErrProductNotFound), http.StatusNotFound},
		{"неверная цена", e.ErrInvalidPrice, http.StatusBadRequest},
		{"неверный лимит", e.ErrInvalidLimit, http.StatusBadRequest},
		{"неизвестная ошибка", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := ToHTTPResponse(tt.err)
			if code != tt.want {
				t.Fatalf("ToHTTPResponse(%v) = %d, want %d", tt.err, code, tt.want)
			}
		})
	}
}

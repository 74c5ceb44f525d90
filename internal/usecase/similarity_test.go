package usecase

import (
	"math"
	"testing"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
)

func TestScoreProductsSymmetry(t *testing.T) {
	a := &domain.Product{Name: "Беспроводные наушники", Description: "Bluetooth наушники с шумоподавлением", Category: "Электроника", Brand: "Sony", Price: 599_99}
	b := &domain.Product{Name: "Наушники проводные", Description: "Наушники с микрофоном", Category: "Электроника", Brand: "JBL", Price: 149_90}

	if got, want := ScoreProducts(a, b), ScoreProducts(b, a); got != want {
		t.Fatalf("score not symmetric: %f != %f", got, want)
	}
}

func TestScoreProducts(t *testing.T) {
	base := &domain.Product{
		Name:        "Смартфон Galaxy S24",
		Description: "Флагманский смартфон",
		Category:    "Электроника",
		Brand:       "Samsung",
		Price:       79_990_00,
	}

	tests := []struct {
		name      string
		candidate *domain.Product
		want      float64
	}{
		{
			name:      "идентичный товар набирает полный вес",
			candidate: base,
			// категория 3 + бренд 2 + имя 3 + описание 1 + цена 2
			want: 11,
		},
		{
			name: "пустые категория и бренд не дают совпадения",
			candidate: &domain.Product{
				Name:  "Чайник",
				Price: base.Price,
			},
			want: priceWeight, // только ценовой вклад
		},
		{
			name: "совпадение только категории",
			candidate: &domain.Product{
				Name:     "Пылесос",
				Category: "Электроника",
				Brand:    "Dyson",
			},
			// категория 3, цена кандидата 0 против 79990 даёт близость 0
			want: categoryWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreProducts(base, tt.candidate)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("ScoreProducts() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestScoreProductsEmptyBaseCategoryNoMatch(t *testing.T) {
	a := &domain.Product{Name: "x"}
	b := &domain.Product{Name: "y"}

	// Обе категории пустые: совпадение пустого с пустым веса не даёт
	if got := ScoreProducts(a, b); got != priceWeight {
		// при нулевых ценах близость цен равна 1
		t.Fatalf("ScoreProducts() = %f, want %f", got, priceWeight)
	}
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{"оба пустые", "", "", 0},
		{"один пустой", "наушники sony", "", 0},
		{"без пересечения", "красный стол", "синяя лампа", 0},
		{"полное совпадение", "sony наушники", "наушники sony", 1},
		{"частичное пересечение", "sony наушники bluetooth", "sony колонка bluetooth", 0.5},
		{"регистр и пунктуация не влияют", "Sony-Наушники!", "sony наушники", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(tokenSet(tt.a), tokenSet(tt.b))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("jaccard(%q, %q) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestPriceAffinity(t *testing.T) {
	tests := []struct {
		name string
		a    int64 // копейки
		b    int64
		want float64
	}{
		{"равные цены", 599_99, 599_99, 1},
		{"обе нулевые", 0, 0, 1},
		{"одна нулевая", 0, 100_00, 0},
		{"отрицательная цена", -1, 100_00, 0},
		{"двукратная разница", 100_00, 200_00, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := priceAffinity(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("priceAffinity(%d, %d) = %f, want %f", tt.a, tt.b, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Fatalf("priceAffinity out of [0, 1]: %f", got)
			}
		})
	}
}

func TestPriceAffinitySubUnitDenominator(t *testing.T) {
	// Знаменатель ограничен снизу одной денежной единицей:
	// разница в копейки не должна взрываться в ноль близости
	got := priceAffinity(1, 50)
	if got < 0 || got > 1 {
		t.Fatalf("priceAffinity out of [0, 1]: %f", got)
	}
}

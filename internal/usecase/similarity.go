package usecase

import (
	"math"
	"strings"
	"unicode"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
)

// Веса скоринга подобраны эмпирически.
const (
	categoryWeight    = 3.0
	brandWeight       = 2.0
	nameWeight        = 3.0
	descriptionWeight = 1.0
	priceWeight       = 2.0
)

// ScoreProducts — детерминированная оценка похожести двух товаров.
// Чистая функция без I/O; строго симметрична: ScoreProducts(a, b) == ScoreProducts(b, a).
func ScoreProducts(base, candidate *domain.Product) float64 {
	var score float64

	if base.Category != "" && base.Category == candidate.Category {
		score += categoryWeight
	}

	if base.Brand != "" && base.Brand == candidate.Brand {
		score += brandWeight
	}

	score += nameWeight * jaccard(tokenSet(base.Name), tokenSet(candidate.Name))
	score += descriptionWeight * jaccard(tokenSet(base.Description), tokenSet(candidate.Description))
	score += priceWeight * priceAffinity(base.Price, candidate.Price)

	return score
}

// tokenSet разбивает строку на множество токенов:
// разделители — любые последовательности не-алфавитно-цифровых символов, регистр приводится к нижнему.
func tokenSet(s string) map[string]struct{} {
	tokens := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}

	return set
}

// jaccard возвращает |A∩B| / |A∪B|.
// Для пустого множества результат 0, деления на ноль не происходит.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for token := range a {
		if _, ok := b[token]; ok {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}

// priceAffinity возвращает близость цен в диапазоне [0, 1]:
// 1 − min(|a−b| / max(a, b, 1), 1). Отрицательная цена означает отсутствие данных и даёт 0.
func priceAffinity(a, b int64) float64 {
	if a < 0 || b < 0 {
		return 0
	}

	// Цены хранятся в копейках, нижняя граница знаменателя — одна денежная единица
	priceA := float64(a) / 100
	priceB := float64(b) / 100

	denom := math.Max(math.Max(priceA, priceB), 1)
	diff := math.Abs(priceA - priceB)

	return 1 - math.Min(diff/denom, 1)
}

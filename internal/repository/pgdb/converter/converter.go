//go:generate goverter gen github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/pgdb/converter
package converter

import (
	"time"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
// goverter:extend ConvertOptionalString
// goverter:extend ConvertToOptionalString
type ProductConverter interface {
	ToModel(entity *domain.Product) *ProductModel
	ToEntity(model *ProductModel) *domain.Product
	ToArrEntity(models []*ProductModel) []domain.Product
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
// goverter:converter
// goverter:extend ConvertTime
// goverter:extend ConvertPointerTime
// goverter:extend ConvertOutboxStatus
// goverter:extend ConvertToOutboxStatus
// goverter:extend ConvertOutboxEventType
// goverter:extend ConvertToOutboxEventType
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

func ConvertPointerTime(t *time.Time) *time.Time {
	return t
}

func ConvertTime(t time.Time) time.Time {
	return t
}

// ConvertOptionalString разворачивает nullable-колонку в строку (NULL — пустая строка).
func ConvertOptionalString(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

// ConvertToOptionalString сворачивает пустую строку в NULL.
func ConvertToOptionalString(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func ConvertOutboxStatus(s string) usecase.OutboxStatus {
	return usecase.OutboxStatus(s)
}

func ConvertToOutboxStatus(s usecase.OutboxStatus) string {
	return string(s)
}

func ConvertOutboxEventType(t string) usecase.OutboxEventType {
	return usecase.OutboxEventType(t)
}

func ConvertToOutboxEventType(t usecase.OutboxEventType) string {
	return string(t)
}

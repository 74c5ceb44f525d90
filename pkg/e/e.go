package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// Ошибки векторного бэкенда и эмбеддингов.
	// Всегда восстановимые: оркестратор рекомендаций деградирует на следующий уровень выдачи.
	ErrVectorBackend           = fmt.Errorf("vector backend failure")
	ErrEmbedding               = fmt.Errorf("embedding generation failure")
	ErrVectorDimensionMismatch = fmt.Errorf("vector dimension mismatch")
	ErrEmptyVector             = fmt.Errorf("empty vector")

	// 404 Not Found
	ErrProductNotFound = fmt.Errorf("product not found")
	ErrNoProductsFound = fmt.Errorf("no products found")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrMissingFields        = fmt.Errorf("missing required fields")
	ErrProductNameRequired  = fmt.Errorf("product name is required")
	ErrPriceMustBePositive  = fmt.Errorf("price must be positive")
	ErrInvalidPrice         = fmt.Errorf("invalid price")
	ErrPricePrecision       = fmt.Errorf("price must have at most 2 decimal places")
	ErrInvalidLimit         = fmt.Errorf("limit must be positive")
	ErrNoProducts           = fmt.Errorf("no product ids provided")
	ErrNoImages             = fmt.Errorf("no images provided")
	ErrTooManyImages        = fmt.Errorf("too many images")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect env variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

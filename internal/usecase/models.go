package usecase

import (
	"time"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
)

// RECOMMENDATION USECASE

// RecommendationSource — уровень выдачи, на котором был собран результат.
type RecommendationSource string

const (
	SourceVector   RecommendationSource = "vector"
	SourceScoring  RecommendationSource = "scoring"
	SourceTopRated RecommendationSource = "top_rated"
	SourceSelf     RecommendationSource = "self"
)

// SimilarReq — запрос похожих товаров для одного товара.
type SimilarReq struct {
	ProductID int64
	Limit     int
}

// GroupSimilarReq — запрос рекомендаций для группы товаров (например, корзины).
type GroupSimilarReq struct {
	ProductIDs []int64
	Limit      int
}

// RecommendationRes — упорядоченный, дедуплицированный список рекомендаций.
type RecommendationRes struct {
	Products []ProductInfo
	Source   RecommendationSource
}

// ProductInfo — нормализованная проекция товара для внешнего использования.
type ProductInfo struct {
	ID          int64
	Name        string
	Description string
	Price       int64
	Category    string
	Image       string
	Brand       string
	Stock       int32
	Rating      float64
	NumReviews  int32
	CreatedAt   time.Time
}

// PRODUCT USECASE

// AddNewProductReq — запрос на добавление нового товара.
type AddNewProductReq struct {
	Name        string
	Description string
	Category    string
	Brand       string
	Price       int64
	Stock       int32
	Images      []ProductImage
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// GetProductsReq запрос информации о товарах по их идентификаторам.
type GetProductsReq struct {
	IDs []int64
}

// GetProductsRes — ответ с данными запрошенных товаров.
type GetProductsRes struct {
	Products         []ProductInfo
	NotFoundProducts []int64
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const ProductUpserted OutboxEventType = "product.upserted"

// OutboxEvent — событие изменения товара для публикации в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	ProductID   int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// ProductChangeEvent — JSON-полезная нагрузка события изменения товара.
// Downstream-индексатор пересчитывает по ней эмбеддинг товара.
type ProductChangeEvent struct {
	EventID        string `json:"event_id"`
	EventType      string `json:"event_type"`
	EventTimestamp int64  `json:"event_timestamp"`
	ProductID      int64  `json:"product_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	Brand          string `json:"brand"`
	Price          int64  `json:"price"`
	Image          string `json:"image"`
	VectorPointID  string `json:"vector_point_id"`
}

// INFRASTRUCTURE

type WriteRawMessageReq struct {
	ProductID int64
	Payload   []byte
}

// UploadImagesReq — запрос на загрузку изображений товара.
type UploadImagesReq struct {
	Name   string
	Images []ProductImage
}

// UploadImagesRes — результат загрузки изображений (ключи в MinIO).
type UploadImagesRes struct {
	ImagesKeys []string
}

// MAPPERS

// NewProductInfo строит проекцию из доменного товара.
func NewProductInfo(p *domain.Product) ProductInfo {
	return ProductInfo{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Image:       p.Image,
		Brand:       p.Brand,
		Stock:       p.Stock,
		Rating:      p.Rating,
		NumReviews:  p.NumReviews,
		CreatedAt:   p.CreatedAt,
	}
}

func ToArrProductInfo(products []domain.Product) []ProductInfo {
	result := make([]ProductInfo, 0, len(products))
	for i := range products {
		result = append(result, NewProductInfo(&products[i]))
	}

	return result
}

func NewRecommendationRes(products []ProductInfo, source RecommendationSource) *RecommendationRes {
	return &RecommendationRes{
		Products: products,
		Source:   source,
	}
}

func NewSimilarReq(productID int64, limit int) *SimilarReq {
	return &SimilarReq{
		ProductID: productID,
		Limit:     limit,
	}
}

func NewGroupSimilarReq(productIDs []int64, limit int) *GroupSimilarReq {
	return &GroupSimilarReq{
		ProductIDs: productIDs,
		Limit:      limit,
	}
}

func NewAddNewProductReq(name, description, category, brand string, price int64, stock int32, images []ProductImage) *AddNewProductReq {
	return &AddNewProductReq{
		Name:        name,
		Description: description,
		Category:    category,
		Brand:       brand,
		Price:       price,
		Stock:       stock,
		Images:      images,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewGetProductsReq(ids []int64) *GetProductsReq {
	return &GetProductsReq{ids}
}

func NewGetProductsRes(pr []ProductInfo, notFoundProducts []int64) *GetProductsRes {
	return &GetProductsRes{
		Products:         pr,
		NotFoundProducts: notFoundProducts,
	}
}

func NewUploadImagesReq(name string, images []ProductImage) *UploadImagesReq {
	return &UploadImagesReq{
		Name:   name,
		Images: images,
	}
}

func NewUploadImagesRes(imagesKeys []string) *UploadImagesRes {
	return &UploadImagesRes{
		ImagesKeys: imagesKeys,
	}
}

func NewWriteRawMessageReq(productID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		ProductID: productID,
		Payload:   payload,
	}
}

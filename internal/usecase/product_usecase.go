package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
	"github.com/jackc/pgx/v5"
)

// ProductUseCase реализует бизнес-логику управления каталогом товаров.
type ProductUseCase struct {
	catalogRepo CatalogRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	imagesInfra ImagesInfra
	cacheRepo   CacheRepository
	logger      logger.Logger
}

func NewProductUC(
	catalogRepo CatalogRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	imagesInfra ImagesInfra,
	cacheRepo CacheRepository,
	logger logger.Logger,
) *ProductUseCase {
	return &ProductUseCase{
		catalogRepo: catalogRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		imagesInfra: imagesInfra,
		cacheRepo:   cacheRepo,
		logger:      logger,
	}
}

// RegisterNewProduct обрабатывает добавление нового товара: изображения, запись каталога
// и outbox-событие для асинхронной синхронизации вектора в одной транзакции.
func (p *ProductUseCase) RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*OutboxEvent, error) {
	const op = "ProductUseCase.RegisterNewProduct"

	// Валидация данных
	var err error
	err = p.validateProduct(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var (
		imagesRes *UploadImagesRes
		uploaded  bool
	)

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, p.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	// Если произошла ошибка, происходит Rollback транзакции и очистка загруженных изображений
	defer func() {
		if err != nil {
			if tx.IsActive() {
				tx.Rollback(ctx)
			}

			if uploaded && imagesRes != nil {
				p.logger.Warnf(
					"Cleaning up orphaned images after transaction failure. product_name: %s, error: %v",
					req.Name,
					e.Wrap(op, err),
				)

				p.imagesInfra.CleanupImages(imagesRes.ImagesKeys)
			}
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	// Сохранение изображений в MinIO
	imagesRes, err = p.uploadImages(ctx, req.Name, req.Images)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	uploaded = true

	// Идемпотентное создание товара; первое изображение становится обложкой
	product := domain.NewProduct(req.Name, req.Description, req.Price, req.Category, req.Brand, req.Stock)
	if len(imagesRes.ImagesKeys) > 0 {
		product.Image = imagesRes.ImagesKeys[0]
	}

	product, err = p.catalogRepo.Upsert(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Outbox-событие: downstream-индексатор пересчитает эмбеддинг товара
	event, err := p.createOutboxEvent(ctx, product)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Коммит изменений в бд
	err = tx.Commit(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	// Удаление из кэша старых данных товара
	if err := p.cacheRepo.DeleteProducts(ctx, []int64{product.ID}); err != nil {
		p.logger.Warnf("Failed to invalidate product cache: %v", e.Wrap(op, err))
	}

	return event, nil
}

// GetProductsInfo возвращает информацию о товарах по их идентификаторам.
func (p *ProductUseCase) GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error) {
	const op = "ProductUseCase.GetProductsInfo"

	// Валидация
	if len(req.IDs) == 0 {
		return nil, e.Wrap(op, e.ErrNoProducts)
	}

	// Поиск товаров в кэше
	cacheProductsMap, err := p.cacheRepo.GetProducts(ctx, req.IDs)
	var nonCacheable []int64
	if err != nil {
		nonCacheable = append(nonCacheable, req.IDs...)
	} else {
		for _, productID := range req.IDs {
			if _, ok := cacheProductsMap[productID]; !ok {
				nonCacheable = append(nonCacheable, productID)
			}
		}
	}

	// Получение товаров из БД
	var productsInfoFromDB []ProductInfo
	if len(nonCacheable) > 0 {
		products, err := p.catalogRepo.FindByIDs(ctx, nonCacheable)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		productsInfoFromDB = ToArrProductInfo(products)

		// Фоновое добавление товаров в кэш
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
			defer cancel()

			if err := p.cacheRepo.SetProducts(bgCtx, productsInfoFromDB); err != nil {
				p.logger.Warnf("Failed to cache products in background: %v", e.Wrap(op, err))
			}
		}()
	}

	dbProductsMap := make(map[int64]ProductInfo, len(productsInfoFromDB))
	for _, productInfo := range productsInfoFromDB {
		dbProductsMap[productInfo.ID] = productInfo
	}

	// Формирование результата
	result := make([]ProductInfo, 0, len(req.IDs))
	notFoundProducts := make([]int64, 0)
	for _, id := range req.IDs {
		if pr, ok := cacheProductsMap[id]; ok {
			result = append(result, pr)
		} else if pr, ok := dbProductsMap[id]; ok {
			result = append(result, pr)
		} else {
			notFoundProducts = append(notFoundProducts, id)
		}
	}

	return NewGetProductsRes(result, notFoundProducts), nil
}

// createOutboxEvent формирует и сохраняет событие изменения товара в outbox.
func (p *ProductUseCase) createOutboxEvent(ctx context.Context, product *domain.Product) (*OutboxEvent, error) {
	change := ProductChangeEvent{
		EventID:        uuid.NewString(),
		EventType:      string(ProductUpserted),
		EventTimestamp: time.Now().UTC().UnixNano(),
		ProductID:      product.ID,
		Name:           product.Name,
		Description:    product.Description,
		Category:       product.Category,
		Brand:          product.Brand,
		Price:          product.Price,
		Image:          product.Image,
		VectorPointID:  product.VectorPointID(),
	}

	payload, err := json.Marshal(change)
	if err != nil {
		return nil, err
	}

	return p.outboxRepo.Create(ctx, &OutboxEvent{
		EventID:   change.EventID,
		EventType: ProductUpserted,
		ProductID: product.ID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: time.Now().UTC(),
	})
}

// uploadImages сохраняет изображения товара в MinIO.
func (p *ProductUseCase) uploadImages(ctx context.Context, name string, images []ProductImage) (*UploadImagesRes, error) {
	if len(images) == 0 {
		return NewUploadImagesRes(nil), nil
	}

	return p.imagesInfra.UploadImages(ctx, NewUploadImagesReq(name, images))
}

// validateProduct проверяет корректность входных данных запроса на добавление товара.
func (p *ProductUseCase) validateProduct(req *AddNewProductReq) error {
	if strings.TrimSpace(req.Name) == "" {
		return e.ErrProductNameRequired
	}

	if req.Price <= 0 {
		return e.ErrPriceMustBePositive
	}

	return nil
}

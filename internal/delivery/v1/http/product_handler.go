package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/usecase"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
)

type ProductHandler struct {
	productUsecase usecase.ProductUC
	logger         logger.Logger
}

func NewProductHandler(productUsecase usecase.ProductUC, logger logger.Logger) *ProductHandler {
	return &ProductHandler{productUsecase: productUsecase, logger: logger}
}

// registerNewProduct
//
//	@Summary		Регистрация нового товара
//	@Description	Создает новый товар в каталоге с изображениями
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			name		formData	string					true	"Название товара"
//	@Param			description	formData	string					false	"Описание товара"
//	@Param			category	formData	string					true	"Категория"
//	@Param			brand		formData	string					false	"Бренд"
//	@Param			price		formData	number					true	"Цена"
//	@Param			stock		formData	integer					false	"Остаток на складе"
//	@Param			images		formData	file					false	"Изображения товара"
//	@Success		201			{object}	map[string]interface{}	"Успешное создание"
//	@Failure		400			{object}	ErrorResponse			"Ошибка валидации"
//	@Router			/products [post]
func (p *ProductHandler) registerNewProduct(w http.ResponseWriter, r *http.Request) {
	const (
		maxTotalRequestSize = 150 << 20
		maxMemory           = 32 << 20
	)

	r.Body = http.MaxBytesReader(w, r.Body, maxTotalRequestSize)

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), r.Header.Get("Content-Type"))
		WriteError(w, err)
		return
	}

	prMeta, err := parseProductForm(r)
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	images, err := parseImages(r.MultipartForm.File["images"])
	if err != nil && !errors.Is(err, e.ErrNoImages) {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req := usecase.NewAddNewProductReq(
		prMeta.Name,
		prMeta.Description,
		prMeta.Category,
		prMeta.Brand,
		prMeta.Price,
		prMeta.Stock,
		images,
	)

	event, err := p.productUsecase.RegisterNewProduct(r.Context(), req)
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, map[string]interface{}{
		"EventID": event.EventID,
	})
}

// getProducts
//
//	@Summary		Информация о товарах
//	@Description	Возвращает проекции товаров по их идентификаторам
//	@Tags			products
//	@Produce		json
//	@Param			ids	query		string			true	"ID товаров через запятую"
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	ErrorResponse
//	@Router			/products [get]
func (p *ProductHandler) getProducts(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("ids"))
	if err != nil {
		p.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := p.productUsecase.GetProductsInfo(r.Context(), usecase.NewGetProductsReq(ids))
	if err != nil {
		p.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"Products": res.Products,
		"NotFound": res.NotFoundProducts,
	})
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, e.ErrNoProducts
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil || id <= 0 {
			return nil, e.Wrap(part, e.ErrStatusBadRequest)
		}
		ids = append(ids, id)
	}

	return ids, nil
}

package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/usecase"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
)

type RecommendationHandler struct {
	recUsecase usecase.RecommendationUC
	logger     logger.Logger
}

func NewRecommendationHandler(recUsecase usecase.RecommendationUC, logger logger.Logger) *RecommendationHandler {
	return &RecommendationHandler{recUsecase: recUsecase, logger: logger}
}

type groupRecommendationsRequest struct {
	ProductIDs []int64 `json:"product_ids"`
	Limit      int     `json:"limit"`
}

type recommendationResponse struct {
	Products []usecase.ProductInfo `json:"products"`
	Source   string                `json:"source"`
}

// similarProducts
//
//	@Summary		Похожие товары
//	@Description	Возвращает упорядоченный список товаров, похожих на указанный
//	@Tags			recommendations
//	@Produce		json
//	@Param			id		path		int	true	"ID товара"
//	@Param			limit	query		int	false	"Максимальный размер выдачи"
//	@Success		200		{object}	recommendationResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"Товар не найден"
//	@Router			/products/{id}/similar [get]
func (h *RecommendationHandler) similarProducts(w http.ResponseWriter, r *http.Request) {
	productID, err := parseProductID(chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	limit, err := parseLimit(r)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	res, err := h.recUsecase.Similar(r.Context(), usecase.NewSimilarReq(productID, limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, recommendationResponse{
		Products: res.Products,
		Source:   string(res.Source),
	})
}

// groupRecommendations
//
//	@Summary		Рекомендации для группы товаров
//	@Description	Возвращает рекомендации для набора товаров, например содержимого корзины
//	@Tags			recommendations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		groupRecommendationsRequest	true	"ID товаров и лимит"
//	@Success		200		{object}	recommendationResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse	"Ни один товар не найден"
//	@Router			/products/recommendations [post]
func (h *RecommendationHandler) groupRecommendations(w http.ResponseWriter, r *http.Request) {
	var body groupRecommendationsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	if len(body.ProductIDs) == 0 {
		WriteError(w, e.ErrNoProducts)
		return
	}
	for _, id := range body.ProductIDs {
		if id <= 0 {
			WriteError(w, e.ErrStatusBadRequest)
			return
		}
	}
	if body.Limit < 0 {
		WriteError(w, e.ErrInvalidLimit)
		return
	}

	res, err := h.recUsecase.GroupSimilar(r.Context(), usecase.NewGroupSimilarReq(body.ProductIDs, body.Limit))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, recommendationResponse{
		Products: res.Products,
		Source:   string(res.Source),
	})
}

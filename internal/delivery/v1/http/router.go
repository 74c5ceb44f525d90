package http

import (
	"github.com/go-chi/chi/v5"
	_ "github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/docs" // Импорт сгенерированных файлов
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/usecase"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(prUC usecase.ProductUC, recUC usecase.RecommendationUC) {
	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"), // ссылка на JSON
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		prHandler := NewProductHandler(prUC, r.logger)
		recHandler := NewRecommendationHandler(recUC, r.logger)
		registerProductRoutes(v1, prHandler, recHandler)
	})
}

func registerProductRoutes(router chi.Router, prHandler *ProductHandler, recHandler *RecommendationHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Post("/", prHandler.registerNewProduct)
		pr.Get("/", prHandler.getProducts)
		pr.Get("/{id}/similar", recHandler.similarProducts)
		pr.Post("/recommendations", recHandler.groupRecommendations)
	})
}

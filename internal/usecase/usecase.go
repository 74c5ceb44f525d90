package usecase

import "context"

type ProductUC interface {
	RegisterNewProduct(ctx context.Context, req *AddNewProductReq) (*OutboxEvent, error)
	GetProductsInfo(ctx context.Context, req *GetProductsReq) (*GetProductsRes, error)
}

type RecommendationUC interface {
	Similar(ctx context.Context, req *SimilarReq) (*RecommendationRes, error)
	GroupSimilar(ctx context.Context, req *GroupSimilarReq) (*RecommendationRes, error)
}

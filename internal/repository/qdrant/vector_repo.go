package qdrant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/cfg"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// VectorRepo — репозиторий векторов товаров в Qdrant.
// Любая ошибка транспорта оборачивается в e.ErrVectorBackend: для оркестратора она восстановима.
type VectorRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
	logger logger.Logger
}

func NewVectorRepo(client *qdrant.Client, cfg *cfg.QdrantCfg, logger logger.Logger) *VectorRepo {
	return &VectorRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

// QueryByID возвращает ближайших соседей уже сохранённой точки.
// Если точка не существует, возвращается пустой срез без ошибки.
func (q *VectorRepo) QueryByID(ctx context.Context, externalID string, topK uint64) ([]domain.VectorMatch, error) {
	pointID := pointIDFromString(externalID)

	// Qdrant отвечает ошибкой на recommend по несуществующей точке,
	// поэтому сначала проверяется её наличие
	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            []*qdrant.PointId{pointID},
	})
	if err != nil {
		return nil, wrapBackend(err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQueryID(pointID),
		Limit:          &topK,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapBackend(err)
	}

	return q.toMatches(scored), nil
}

// QueryByVector возвращает ближайших соседей произвольного вектора (например, центроида группы).
func (q *VectorRepo) QueryByVector(ctx context.Context, vector []float32, topK uint64) ([]domain.VectorMatch, error) {
	if uint64(len(vector)) != q.cfg.VectorSize {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrVectorDimensionMismatch)
	}

	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &topK,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapBackend(err)
	}

	return q.toMatches(scored), nil
}

// FetchVectors выполняет batch-выборку записей по ID.
// Отсутствующие ID не попадают в результат; запись с неверной размерностью
// пропускается как нарушение целостности данных.
func (q *VectorRepo) FetchVectors(ctx context.Context, externalIDs []string) (map[string]domain.VectorRecord, error) {
	ids := make([]*qdrant.PointId, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		ids = append(ids, pointIDFromString(externalID))
	}

	points, err := q.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Ids:            ids,
		WithVectors:    qdrant.NewWithVectors(true),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, wrapBackend(err)
	}

	result := make(map[string]domain.VectorRecord, len(points))
	for _, point := range points {
		externalID := pointIDToString(point.GetId())
		vector := point.GetVectors().GetVector().GetData()

		if uint64(len(vector)) != q.cfg.VectorSize {
			q.logger.Warnf("skipping vector %s: %v (got %d, want %d)",
				externalID, e.ErrVectorDimensionMismatch, len(vector), q.cfg.VectorSize)
			continue
		}

		result[externalID] = domain.VectorRecord{
			ExternalID: externalID,
			ProductID:  productIDFromPayload(point.GetPayload()),
			Vector:     vector,
		}
	}

	return result, nil
}

// Upsert сохраняет или обновляет векторы товаров. Повторный upsert идемпотентен.
func (q *VectorRepo) Upsert(ctx context.Context, embeddings []domain.Embedding) error {
	points := make([]*qdrant.PointStruct, 0, len(embeddings))
	for _, embedding := range embeddings {
		if len(embedding.Vector) == 0 {
			return e.Wrap(whereami.WhereAmI(), e.ErrEmptyVector)
		}
		if uint64(len(embedding.Vector)) != q.cfg.VectorSize {
			return e.Wrap(whereami.WhereAmI(), e.ErrVectorDimensionMismatch)
		}

		points = append(points, &qdrant.PointStruct{
			Id:      pointIDFromString(embedding.ID),
			Vectors: qdrant.NewVectors(embedding.Vector...),
			Payload: qdrant.NewValueMap(embedding.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         points,
	})
	if err != nil {
		return wrapBackend(err)
	}

	return nil
}

// Delete удаляет точки по ID.
func (q *VectorRepo) Delete(ctx context.Context, externalIDs []string) error {
	ids := make([]*qdrant.PointId, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		ids = append(ids, pointIDFromString(externalID))
	}

	_, err := q.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: q.cfg.QdrantCollectionName,
		Points:         qdrant.NewPointsSelector(ids...),
	})
	if err != nil {
		return wrapBackend(err)
	}

	return nil
}

// toMatches переводит ответ Qdrant в доменные матчи.
// Канонический ID товара восстанавливается из payload точки.
func (q *VectorRepo) toMatches(points []*qdrant.ScoredPoint) []domain.VectorMatch {
	matches := make([]domain.VectorMatch, 0, len(points))
	for _, point := range points {
		matches = append(matches, domain.NewVectorMatch(
			pointIDToString(point.GetId()),
			productIDFromPayload(point.GetPayload()),
			point.GetScore(),
		))
	}

	return matches
}

// pointIDFromString строит PointId: числовые ID адресуются как Num, остальные — как UUID.
func pointIDFromString(externalID string) *qdrant.PointId {
	if num, err := strconv.ParseUint(externalID, 10, 64); err == nil {
		return qdrant.NewIDNum(num)
	}

	return qdrant.NewIDUUID(externalID)
}

func pointIDToString(id *qdrant.PointId) string {
	if uuid := id.GetUuid(); uuid != "" {
		return uuid
	}

	return strconv.FormatUint(id.GetNum(), 10)
}

// productIDFromPayload достаёт канонический ID товара; 0 — точка без привязки к товару.
func productIDFromPayload(payload map[string]*qdrant.Value) int64 {
	value, ok := payload["product_id"]
	if !ok {
		return 0
	}

	return value.GetIntegerValue()
}

func wrapBackend(err error) error {
	return e.Wrap(whereami.WhereAmI(), fmt.Errorf("%w: %v", e.ErrVectorBackend, err))
}

package pgdb

import (
	"context"
	"errors"

	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/domain"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/internal/repository/pgdb/converter"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/e"
	"github.com/hoangsonww/MERN-Stack-Ecommerce-App-sub000/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// productColumns — список колонок products в порядке сканирования.
const productColumns = `
	id, name, description, price, category, image, brand, stock,
	rating, num_reviews, created_at, updated_at, is_archived, external_vector_id
`

// ProductRepo реализует репозиторий каталога товаров поверх PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
	conv converter.ProductConverter
}

func NewProductRepo(pool *pgxpool.Pool, conv converter.ProductConverter) *ProductRepo {
	return &ProductRepo{
		pool: pool,
		conv: conv,
	}
}

// GetByID возвращает товар по идентификатору или e.ErrProductNotFound.
func (p *ProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND NOT is_archived
	`

	row := p.pool.QueryRow(ctx, query, id)
	model, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
		}

		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

// FindByIDs возвращает товары по списку идентификаторов; отсутствующие молча пропускаются.
func (p *ProductRepo) FindByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND NOT is_archived
	`

	rows, err := p.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collectProducts(rows)
}

// FindByCategories возвращает товары указанных категорий, исключая excludeIDs.
func (p *ProductRepo) FindByCategories(ctx context.Context, categories []string, excludeIDs []int64, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE category = ANY($1) AND NOT (id = ANY($2)) AND NOT is_archived
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := p.pool.Query(ctx, query, categories, excludeIDs, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collectProducts(rows)
}

// FindAll возвращает товары без фильтра по категории, исключая excludeIDs.
func (p *ProductRepo) FindAll(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT (id = ANY($1)) AND NOT is_archived
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := p.pool.Query(ctx, query, excludeIDs, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collectProducts(rows)
}

// FindTopRated возвращает лучшие товары каталога:
// рейтинг по убыванию, затем число отзывов, затем дата создания.
func (p *ProductRepo) FindTopRated(ctx context.Context, excludeIDs []int64, limit int) ([]domain.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE NOT (id = ANY($1)) AND NOT is_archived
		ORDER BY rating DESC, num_reviews DESC, created_at DESC
		LIMIT $2
	`

	rows, err := p.pool.Query(ctx, query, excludeIDs, limit)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return p.collectProducts(rows)
}

// Upsert идемпотентно создаёт или обновляет товар по уникальному имени.
func (p *ProductRepo) Upsert(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO products (name, description, price, category, image, brand, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name)
		DO UPDATE SET
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			image = EXCLUDED.image,
			brand = EXCLUDED.brand,
			stock = EXCLUDED.stock,
			updated_at = NOW()
		RETURNING ` + productColumns + `
	`

	row := tx.QueryRow(ctx, query,
		product.Name, product.Description, product.Price, product.Category,
		product.Image, product.Brand, product.Stock,
	)
	model, err := scanProduct(row)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToEntity(model), nil
}

func (p *ProductRepo) collectProducts(rows pgx.Rows) ([]domain.Product, error) {
	models := make([]*converter.ProductModel, 0)
	for rows.Next() {
		model, err := scanProduct(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		models = append(models, model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return p.conv.ToArrEntity(models), nil
}

func scanProduct(row pgx.Row) (*converter.ProductModel, error) {
	var model converter.ProductModel
	err := row.Scan(
		&model.ID, &model.Name, &model.Description, &model.Price, &model.Category,
		&model.Image, &model.Brand, &model.Stock, &model.Rating, &model.NumReviews,
		&model.CreatedAt, &model.UpdatedAt, &model.IsArchived, &model.ExternalVectorID,
	)
	if err != nil {
		return nil, err
	}

	return &model, nil
}

package productrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"rentique/model"
)

type Repo interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id int64, req model.UpdateProductReq) (*model.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)
	UpsertRating(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// images is stored as jsonb; the rest are plain columns.
const productCols = `id, name, description, brand, category, size,
	COALESCE(occasion,''), COALESCE(material,''), COALESCE(color,''), condition,
	price, rental_price, images, available, rented_by, rental_end_date,
	rental_count, average_rating, total_ratings, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*model.Product, error) {
	p := &model.Product{}
	var images []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Brand, &p.Category, &p.Size,
		&p.Occasion, &p.Material, &p.Color, &p.Condition,
		&p.Price, &p.RentalPrice, &images, &p.Available, &p.RentedBy, &p.RentalEndDate,
		&p.RentalCount, &p.AverageRating, &p.TotalRatings, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(images) > 0 {
		if err := json.Unmarshal(images, &p.Images); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (r *repo) Create(ctx context.Context, p *model.Product) error {
	images, err := json.Marshal(p.Images)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO products
			(name, description, brand, category, size, occasion, material, color,
			 condition, price, rental_price, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING id, available, rental_count, average_rating, total_ratings, created_at, updated_at`,
		p.Name, p.Description, p.Brand, p.Category, p.Size, p.Occasion, p.Material, p.Color,
		p.Condition, p.Price, p.RentalPrice, images,
	).Scan(&p.ID, &p.Available, &p.RentalCount, &p.AverageRating, &p.TotalRatings, &p.CreatedAt, &p.UpdatedAt)
}

func (r *repo) Update(ctx context.Context, id int64, req model.UpdateProductReq) (*model.Product, error) {
	set := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Brand != nil {
		add("brand", *req.Brand)
	}
	if req.Category != nil {
		add("category", *req.Category)
	}
	if req.Size != nil {
		add("size", *req.Size)
	}
	if req.Occasion != nil {
		add("occasion", *req.Occasion)
	}
	if req.Material != nil {
		add("material", *req.Material)
	}
	if req.Color != nil {
		add("color", *req.Color)
	}
	if req.Condition != nil {
		add("condition", *req.Condition)
	}
	if req.Price != nil {
		add("price", *req.Price)
	}
	if req.RentalPrice != nil {
		add("rental_price", *req.RentalPrice)
	}
	if req.Available != nil {
		add("available", *req.Available)
	}
	if req.Images != nil {
		images, err := json.Marshal(req.Images)
		if err != nil {
			return nil, err
		}
		add("images", images)
	}

	q := fmt.Sprintf(`UPDATE products SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(set, ", "), productCols)
	return scanProduct(r.db.QueryRowContext(ctx, q, args...))
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Get(ctx context.Context, id int64) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx, `
		SELECT `+productCols+`
		FROM products
		WHERE id = $1`, id))
}

func (r *repo) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	where := []string{"available = true"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.Size != "" {
		add("size = $%d", f.Size)
	}
	if f.Brand != "" {
		add("brand ILIKE $%d", "%"+f.Brand+"%")
	}
	if f.Occasion != "" {
		add("occasion = $%d", f.Occasion)
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d OR brand ILIKE $%d)", n, n, n))
	}
	if f.MinPrice != nil {
		add("rental_price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("rental_price <= $%d", *f.MaxPrice)
	}

	cond := strings.Join(where, " AND ")

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, err
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 12
	}
	if limit > 50 {
		limit = 50
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)
	q := fmt.Sprintf(`
		SELECT %s FROM products
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, productCols, cond, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	return &model.ProductPage{
		Products:   out,
		Total:      total,
		TotalPages: pages,
		Page:       page,
		HasNext:    int64(page) < pages,
		HasPrev:    page > 1,
	}, nil
}

// UpsertRating writes one rating per (product,user) and recomputes the stored
// aggregate from the ratings table in the same transaction. average_rating and
// total_ratings are never written any other way.
func (r *repo) UpsertRating(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	if err = tx.QueryRowContext(ctx,
		`SELECT id FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&id); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO product_ratings (product_id, user_id, rating, comment)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (product_id, user_id)
		DO UPDATE SET rating = EXCLUDED.rating, comment = EXCLUDED.comment, created_at = now()`,
		productID, userID, rating, comment); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE products p
		SET average_rating = COALESCE((SELECT AVG(rating) FROM product_ratings WHERE product_id = p.id), 0),
		    total_ratings  = (SELECT COUNT(*) FROM product_ratings WHERE product_id = p.id),
		    updated_at     = now()
		WHERE p.id = $1
		RETURNING `+productCols, productID)

	p, err := scanProduct(row)
	if err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}

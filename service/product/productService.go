package productsvc

import (
	"context"
	"database/sql"
	"errors"

	"rentique/model"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrBadInput = errors.New("invalid payload")
)

// Notifier fans new arrivals out to newsletter subscribers. Implementations
// must not block.
type Notifier interface {
	NotifyNewProduct(p model.Product)
}

type Repo interface {
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, id int64, req model.UpdateProductReq) (*model.Product, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)
	UpsertRating(ctx context.Context, productID, userID int64, rating int, comment string) (*model.Product, error)
}

type Service interface {
	List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error)
	Get(ctx context.Context, id int64) (*model.Product, error)
	Create(ctx context.Context, req model.CreateProductReq) (*model.Product, error)
	Update(ctx context.Context, id int64, req model.UpdateProductReq) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	AddRating(ctx context.Context, productID, userID int64, req model.AddRatingReq) (*model.Product, error)
}

type service struct {
	r Repo
	n Notifier
}

func New(r Repo, n Notifier) Service { return &service{r: r, n: n} }

func (s *service) List(ctx context.Context, f model.ProductFilter) (*model.ProductPage, error) {
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Product, error) {
	p, err := s.r.Get(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *service) Create(ctx context.Context, req model.CreateProductReq) (*model.Product, error) {
	if req.Name == "" || req.Brand == "" || req.Category == "" || req.RentalPrice < 0 || req.Price < 0 {
		return nil, ErrBadInput
	}

	condition := req.Condition
	if condition == "" {
		condition = "excellent"
	}

	p := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Brand:       req.Brand,
		Category:    req.Category,
		Size:        req.Size,
		Occasion:    req.Occasion,
		Material:    req.Material,
		Color:       req.Color,
		Condition:   condition,
		Price:       req.Price,
		RentalPrice: req.RentalPrice,
		Images:      req.Images,
	}
	if err := s.r.Create(ctx, p); err != nil {
		return nil, err
	}

	if s.n != nil {
		s.n.NotifyNewProduct(*p)
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateProductReq) (*model.Product, error) {
	p, err := s.r.Update(ctx, id, req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) AddRating(ctx context.Context, productID, userID int64, req model.AddRatingReq) (*model.Product, error) {
	if req.Rating < 1 || req.Rating > 5 || len(req.Comment) > 500 {
		return nil, ErrBadInput
	}
	p, err := s.r.UpsertRating(ctx, productID, userID, req.Rating, req.Comment)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

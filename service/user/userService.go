package usersvc

import (
	"context"
	"database/sql"
	"errors"

	"rentique/model"
	userrepo "rentique/repository/user"
)

var ErrNotFound = errors.New("user not found")

type Service interface {
	Profile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) (*model.User, error)

	// Admin surface.
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, id int64, req model.UpdateProfileReq) (*model.User, error)
	Delete(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role string) (*model.User, error)
}

type service struct{ ur userrepo.Repo }

func New(ur userrepo.Repo) Service { return &service{ur: ur} }

func (s *service) Profile(ctx context.Context, userID int64) (*model.User, error) {
	return s.get(ctx, userID)
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileReq) (*model.User, error) {
	u, err := s.ur.UpdateProfile(ctx, userID, req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *service) List(ctx context.Context) ([]model.User, error) { return s.ur.List(ctx) }

func (s *service) Get(ctx context.Context, id int64) (*model.User, error) { return s.get(ctx, id) }

func (s *service) get(ctx context.Context, id int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateProfileReq) (*model.User, error) {
	u, err := s.ur.UpdateProfile(ctx, id, req)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.ur.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *service) UpdateRole(ctx context.Context, id int64, role string) (*model.User, error) {
	u, err := s.ur.UpdateRole(ctx, id, role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}

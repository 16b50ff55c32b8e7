package service

import (
	"context"
	"strings"

	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/domain"
)

type UserService interface {
	Upsert(ctx context.Context, data domain.UserProfileData, path string) (domain.UserId, error)
	GetByExternalId(ctx context.Context, externalId domain.ExternalId) (domain.User, error)
	GetById(ctx context.Context, id domain.UserId) (domain.User, error)
	List(ctx context.Context, query domain.UserQuery) (*domain.UserList, error)
}

type User struct {
	storage   UserStorage
	validator ProfileValidator
	views     ViewInvalidator
	cfg       *config.Public
}

type UserStorage interface {
	UpsertUser(ctx context.Context, data domain.UserProfileData) (domain.UserId, error)
	GetUser(ctx context.Context, id domain.UserId) (domain.User, error)
	GetUserByExternalId(ctx context.Context, externalId domain.ExternalId) (domain.User, error)
	ListUsers(ctx context.Context, query domain.UserQuery) ([]domain.User, int, error)
}

type ProfileValidator interface {
	Handle(handle string) error
	Name(name string) error
	Bio(bio string) error
}

func NewUser(storage UserStorage, validator ProfileValidator, views ViewInvalidator, cfg *config.Public) UserService {
	return &User{storage: storage, validator: validator, views: views, cfg: cfg}
}

// Upsert saves the caller's profile and marks it onboarded.
func (s *User) Upsert(ctx context.Context, data domain.UserProfileData, path string) (domain.UserId, error) {
	data.Username = strings.ToLower(strings.TrimSpace(data.Username))
	data.Name = strings.TrimSpace(data.Name)
	if err := validateProfile(s.validator, data.Username, data.Name, data.Bio); err != nil {
		return "", err
	}

	id, err := s.storage.UpsertUser(ctx, data)
	if err != nil {
		return "", err
	}
	// author refs are embedded in every cached thread view; only the
	// views most likely to show this author are dropped, the rest age out
	invalidateViews(ctx, s.views, path, api.UserThreadsPath(id), api.RootFeedPath)
	return id, nil
}

func (s *User) GetByExternalId(ctx context.Context, externalId domain.ExternalId) (domain.User, error) {
	return s.storage.GetUserByExternalId(ctx, externalId)
}

func (s *User) GetById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return s.storage.GetUser(ctx, id)
}

// List searches users by name or handle. query.ExcludeId is never returned.
func (s *User) List(ctx context.Context, query domain.UserQuery) (*domain.UserList, error) {
	query.Page = clampPage(query.Page, s.cfg.UsersPerPage, s.cfg.MaxPageSize)
	query.Search = strings.TrimSpace(query.Search)

	users, total, err := s.storage.ListUsers(ctx, query)
	if err != nil {
		return nil, err
	}
	return &domain.UserList{Users: users, IsNext: query.Page.IsNext(total, len(users))}, nil
}

func validateProfile(v ProfileValidator, handle, name, bio string) error {
	if err := v.Handle(handle); err != nil {
		return err
	}
	if err := v.Name(name); err != nil {
		return err
	}
	return v.Bio(bio)
}

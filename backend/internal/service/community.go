package service

import (
	"context"
	"strings"

	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/domain"
	"github.com/threadly-dev/threadly/shared/logger"
)

type CommunityService interface {
	Create(ctx context.Context, data domain.CommunityCreationData) (domain.CommunityId, error)
	Get(ctx context.Context, id domain.CommunityId) (domain.Community, error)
	List(ctx context.Context, query domain.CommunityQuery) (*domain.CommunityList, error)
	Join(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error
	Leave(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error
}

type Community struct {
	storage   CommunityStorage
	validator ProfileValidator
	cfg       *config.Public
}

type CommunityStorage interface {
	CreateCommunity(ctx context.Context, data domain.CommunityCreationData) (domain.CommunityId, error)
	GetCommunity(ctx context.Context, id domain.CommunityId) (domain.Community, error)
	ListCommunities(ctx context.Context, query domain.CommunityQuery) ([]domain.Community, int, error)
	AddMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error
	RemoveMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error
	GetUser(ctx context.Context, id domain.UserId) (domain.User, error)
}

func NewCommunity(storage CommunityStorage, validator ProfileValidator, cfg *config.Public) CommunityService {
	return &Community{storage: storage, validator: validator, cfg: cfg}
}

// Create makes a community owned by data.CreatedBy, who becomes its first member.
func (s *Community) Create(ctx context.Context, data domain.CommunityCreationData) (domain.CommunityId, error) {
	data.Username = strings.ToLower(strings.TrimSpace(data.Username))
	data.Name = strings.TrimSpace(data.Name)
	if err := validateProfile(s.validator, data.Username, data.Name, data.Bio); err != nil {
		return "", err
	}
	if _, err := s.storage.GetUser(ctx, data.CreatedBy); err != nil {
		return "", err
	}

	id, err := s.storage.CreateCommunity(ctx, data)
	if err != nil {
		return "", err
	}
	logger.Log.Info("community created", "community_id", id, "username", data.Username, "created_by", data.CreatedBy)
	return id, nil
}

func (s *Community) Get(ctx context.Context, id domain.CommunityId) (domain.Community, error) {
	return s.storage.GetCommunity(ctx, id)
}

func (s *Community) List(ctx context.Context, query domain.CommunityQuery) (*domain.CommunityList, error) {
	query.Page = clampPage(query.Page, s.cfg.UsersPerPage, s.cfg.MaxPageSize)
	query.Search = strings.TrimSpace(query.Search)

	communities, total, err := s.storage.ListCommunities(ctx, query)
	if err != nil {
		return nil, err
	}
	return &domain.CommunityList{Communities: communities, IsNext: query.Page.IsNext(total, len(communities))}, nil
}

func (s *Community) Join(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	return s.storage.AddMember(ctx, communityId, userId)
}

func (s *Community) Leave(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	return s.storage.RemoveMember(ctx, communityId, userId)
}

package service

import (
	"context"

	"github.com/threadly-dev/threadly/shared/config"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

type FeedService interface {
	ListRootThreads(ctx context.Context, page domain.Page) (*domain.ThreadList, error)
	ListAccountThreads(ctx context.Context, accountId string, accountType domain.AccountType) ([]*domain.ThreadView, error)
}

type Feed struct {
	storage FeedStorage
	cfg     *config.Public
}

type FeedStorage interface {
	ListRootThreads(ctx context.Context, page domain.Page) ([]domain.Thread, int, error)
	GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error)
	PopulateThreads(ctx context.Context, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error)
	GetUser(ctx context.Context, id domain.UserId) (domain.User, error)
	GetCommunity(ctx context.Context, id domain.CommunityId) (domain.Community, error)
}

func NewFeed(storage FeedStorage, cfg *config.Public) FeedService {
	return &Feed{storage: storage, cfg: cfg}
}

// ListRootThreads returns one page of root threads, newest first, each with
// a one-level reply preview.
func (s *Feed) ListRootThreads(ctx context.Context, page domain.Page) (*domain.ThreadList, error) {
	page = clampPage(page, s.cfg.ThreadsPerPage, s.cfg.MaxPageSize)

	threads, total, err := s.storage.ListRootThreads(ctx, page)
	if err != nil {
		return nil, err
	}
	views, err := s.storage.PopulateThreads(ctx, threads, 1)
	if err != nil {
		return nil, err
	}
	return &domain.ThreadList{Threads: views, IsNext: page.IsNext(total, len(threads))}, nil
}

// ListAccountThreads returns the threads listed on a user or community, in
// list order. For a community, the community itself is set as every
// thread's community.
func (s *Feed) ListAccountThreads(ctx context.Context, accountId string, accountType domain.AccountType) ([]*domain.ThreadView, error) {
	switch accountType {
	case domain.AccountCommunity:
		community, err := s.storage.GetCommunity(ctx, accountId)
		if err != nil {
			return nil, err
		}
		views, err := s.populateInOrder(ctx, community.Threads)
		if err != nil {
			return nil, err
		}
		ref := community.Ref()
		for _, v := range views {
			v.Community = ref
		}
		return views, nil
	case domain.AccountUser:
		user, err := s.storage.GetUser(ctx, accountId)
		if err != nil {
			return nil, err
		}
		return s.populateInOrder(ctx, user.Threads)
	default:
		return nil, internal_errors.Validation("account type must be %q or %q", domain.AccountUser, domain.AccountCommunity)
	}
}

// populateInOrder loads ids, skipping the dangling ones, and keeps the list order.
func (s *Feed) populateInOrder(ctx context.Context, ids []domain.ThreadId) ([]*domain.ThreadView, error) {
	loaded, err := s.storage.GetThreadsByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	byId := make(map[domain.ThreadId]domain.Thread, len(loaded))
	for _, t := range loaded {
		byId[t.Id] = t
	}

	ordered := make([]domain.Thread, 0, len(loaded))
	seen := make(map[domain.ThreadId]struct{}, len(loaded))
	for _, id := range ids {
		t, ok := byId[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ordered = append(ordered, t)
	}
	return s.storage.PopulateThreads(ctx, ordered, 1)
}

// clampPage turns non-positive values into the first page of the default size.
func clampPage(page domain.Page, defaultSize, maxSize int) domain.Page {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size < 1 {
		page.Size = defaultSize
	}
	if maxSize > 0 && page.Size > maxSize {
		page.Size = maxSize
	}
	return page
}

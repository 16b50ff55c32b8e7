package service

import (
	"context"

	"github.com/threadly-dev/threadly/shared/domain"
)

// ActivityService lists replies other users left on a user's threads.
type ActivityService interface {
	GetActivity(ctx context.Context, userId domain.UserId) ([]*domain.ThreadView, error)
}

type Activity struct {
	storage ActivityStorage
}

type ActivityStorage interface {
	GetThreadsByAuthor(ctx context.Context, userId domain.UserId) ([]domain.Thread, error)
	GetRepliesByOthers(ctx context.Context, userId domain.UserId, ids []domain.ThreadId) ([]domain.Thread, error)
	PopulateThreads(ctx context.Context, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error)
}

func NewActivity(storage ActivityStorage) ActivityService {
	return &Activity{storage: storage}
}

// GetActivity collects the direct replies to every thread userId wrote,
// drops self-replies and returns the rest newest first with authors resolved.
// Unbounded: a prolific author pays for every thread on each call.
func (s *Activity) GetActivity(ctx context.Context, userId domain.UserId) ([]*domain.ThreadView, error) {
	authored, err := s.storage.GetThreadsByAuthor(ctx, userId)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.ThreadId]struct{})
	var childIds []domain.ThreadId
	for _, t := range authored {
		for _, c := range t.Children {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			childIds = append(childIds, c)
		}
	}
	if len(childIds) == 0 {
		return []*domain.ThreadView{}, nil
	}

	replies, err := s.storage.GetRepliesByOthers(ctx, userId, childIds)
	if err != nil {
		return nil, err
	}
	return s.storage.PopulateThreads(ctx, replies, 0)
}

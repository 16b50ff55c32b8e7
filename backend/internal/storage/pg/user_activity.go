package pg

import (
	"context"

	"github.com/lib/pq"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

// GetThreadsByAuthor returns every thread the user wrote, roots and replies.
func (s *Storage) GetThreadsByAuthor(ctx context.Context, userId domain.UserId) ([]domain.Thread, error) {
	if !validId(userId) {
		return []domain.Thread{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+` FROM threads
		WHERE author = $1
		ORDER BY created_at DESC
	`, userId)
	if err != nil {
		return nil, internal_errors.Store("get threads by author", err)
	}
	threads, err := scanThreads(rows)
	return threads, internal_errors.Store("get threads by author", err)
}

// GetRepliesByOthers loads the given threads, newest first, dropping the
// ones userId wrote.
func (s *Storage) GetRepliesByOthers(ctx context.Context, userId domain.UserId, ids []domain.ThreadId) ([]domain.Thread, error) {
	ids = filterValidIds(ids)
	if len(ids) == 0 {
		return []domain.Thread{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+` FROM threads
		WHERE id = ANY($1::uuid[]) AND author::text <> $2
		ORDER BY created_at DESC, id DESC
	`, pq.Array(ids), userId)
	if err != nil {
		return nil, internal_errors.Store("get replies by others", err)
	}
	threads, err := scanThreads(rows)
	return threads, internal_errors.Store("get replies by others", err)
}

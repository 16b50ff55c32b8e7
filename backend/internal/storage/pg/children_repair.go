package pg

import (
	"context"

	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

// RepairChildren rebuilds every children array that differs from the set of
// threads pointing at it through parent_id, ordered by creation time.
// Returns the number of rewritten threads.
func (s *Storage) RepairChildren(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		WITH derived AS (
			SELECT p.id,
				COALESCE(
					array_agg(c.id ORDER BY c.created_at, c.id) FILTER (WHERE c.id IS NOT NULL),
					'{}'::uuid[]
				) AS children
			FROM threads p
			LEFT JOIN threads c ON c.parent_id = p.id
			GROUP BY p.id
		)
		UPDATE threads t SET children = d.children
		FROM derived d
		WHERE t.id = d.id AND t.children IS DISTINCT FROM d.children
	`)
	if err != nil {
		return 0, internal_errors.Store("repair children", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, internal_errors.Store("repair children", err)
	}
	return int(n), nil
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

const threadColumns = `id, text, author, community, parent_id, children, created_at`

func scanThread(row interface{ Scan(...any) error }, t *domain.Thread) error {
	var community, parent sql.NullString
	if err := row.Scan(&t.Id, &t.Text, &t.Author, &community, &parent, &t.Children, &t.CreatedAt); err != nil {
		return err
	}
	if community.Valid {
		t.Community = &community.String
	}
	if parent.Valid {
		t.ParentId = &parent.String
	}
	return nil
}

func scanThreads(rows *sql.Rows) ([]domain.Thread, error) {
	defer rows.Close()
	threads := []domain.Thread{}
	for rows.Next() {
		var t domain.Thread
		if err := scanThread(rows, &t); err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		threads = append(threads, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return threads, nil
}

// CreateRootThread inserts a thread without a parent and appends its id to
// the author's threads and, when set, the community's threads.
func (s *Storage) CreateRootThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	id := newId()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO threads (id, text, author, community) VALUES ($1, $2, $3, $4)`,
			id, data.Text, data.Author, data.Community,
		); err != nil {
			return fmt.Errorf("failed to insert thread: %w", err)
		}

		if err := execAffectingOne(ctx, tx, "user", data.Author,
			`UPDATE users SET threads = array_append(threads, $1::uuid) WHERE id = $2`,
			id, data.Author,
		); err != nil {
			return err
		}

		if data.Community != nil {
			return execAffectingOne(ctx, tx, "community", *data.Community,
				`UPDATE communities SET threads = array_append(threads, $1::uuid) WHERE id = $2`,
				id, *data.Community,
			)
		}
		return nil
	})
	if err != nil {
		if internal_errors.Is[*internal_errors.NotFoundError](err) {
			return "", err
		}
		return "", internal_errors.Store("create root thread", err)
	}
	return id, nil
}

// CreateReply inserts a reply and appends it to the parent's children in the
// same transaction. Nothing is persisted when the parent does not exist.
// The author's own threads list is left untouched.
func (s *Storage) CreateReply(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	if data.ParentId == nil || !validId(*data.ParentId) {
		parent := ""
		if data.ParentId != nil {
			parent = *data.ParentId
		}
		return "", internal_errors.NotFound("thread", parent)
	}
	parentId := *data.ParentId

	id := newId()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO threads (id, text, author, parent_id) VALUES ($1, $2, $3, $4)`,
			id, data.Text, data.Author, parentId,
		); err != nil {
			return fmt.Errorf("failed to insert reply: %w", err)
		}

		return execAffectingOne(ctx, tx, "thread", parentId,
			`UPDATE threads SET children = array_append(children, $1::uuid) WHERE id = $2`,
			id, parentId,
		)
	})
	if err != nil {
		if internal_errors.Is[*internal_errors.NotFoundError](err) {
			return "", err
		}
		return "", internal_errors.Store("create reply", err)
	}
	return id, nil
}

func (s *Storage) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	if !validId(id) {
		return domain.Thread{}, internal_errors.NotFound("thread", id)
	}
	var t domain.Thread
	err := scanThread(s.db.QueryRowContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = $1`, id), &t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Thread{}, internal_errors.NotFound("thread", id)
		}
		return domain.Thread{}, internal_errors.Store("get thread", err)
	}
	return t, nil
}

// GetThreadsByIds batch-loads threads in no particular order; missing ids are skipped.
func (s *Storage) GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error) {
	threads, err := getThreadsByIds(ctx, s.db, ids)
	return threads, internal_errors.Store("get threads by ids", err)
}

func getThreadsByIds(ctx context.Context, q Querier, ids []domain.ThreadId) ([]domain.Thread, error) {
	ids = filterValidIds(ids)
	if len(ids) == 0 {
		return []domain.Thread{}, nil
	}
	rows, err := q.QueryContext(ctx, `SELECT `+threadColumns+` FROM threads WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch threads: %w", err)
	}
	return scanThreads(rows)
}

// GetThreadsByParents returns the direct replies of every given thread,
// found through parent_id.
func (s *Storage) GetThreadsByParents(ctx context.Context, parentIds []domain.ThreadId) ([]domain.TreeNode, error) {
	parentIds = filterValidIds(parentIds)
	if len(parentIds) == 0 {
		return []domain.TreeNode{}, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, author, community FROM threads WHERE parent_id = ANY($1::uuid[])`,
		pq.Array(parentIds),
	)
	if err != nil {
		return nil, internal_errors.Store("get threads by parents", err)
	}
	defer rows.Close()

	nodes := []domain.TreeNode{}
	for rows.Next() {
		var n domain.TreeNode
		var community sql.NullString
		if err := rows.Scan(&n.Id, &n.Author, &community); err != nil {
			return nil, internal_errors.Store("scan tree node", err)
		}
		if community.Valid {
			n.Community = &community.String
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, internal_errors.Store("get threads by parents", err)
	}
	return nodes, nil
}

// DeleteSubtree removes every collected thread and pulls their ids out of
// the touched users' and communities' thread lists in one transaction.
func (s *Storage) DeleteSubtree(ctx context.Context, subtree domain.Subtree) (int, error) {
	ids := filterValidIds(subtree.ThreadIds)
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM threads WHERE id = ANY($1::uuid[])`, pq.Array(ids))
		if err != nil {
			return fmt.Errorf("failed to delete threads: %w", err)
		}
		if deleted, err = res.RowsAffected(); err != nil {
			return err
		}
		if err := pullThreadsFromUsers(ctx, tx, filterValidIds(subtree.AuthorIds), ids); err != nil {
			return err
		}
		return pullThreadsFromCommunities(ctx, tx, filterValidIds(subtree.CommunityIds), ids)
	})
	if err != nil {
		return 0, internal_errors.Store("delete subtree", err)
	}
	return int(deleted), nil
}

// ListRootThreads returns one page of threads without a parent, newest
// first, plus the total number of root threads.
func (s *Storage) ListRootThreads(ctx context.Context, page domain.Page) ([]domain.Thread, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM threads WHERE parent_id IS NULL`).Scan(&total); err != nil {
		return nil, 0, internal_errors.Store("count root threads", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threadColumns+` FROM threads
		WHERE parent_id IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, page.Size, page.Skip())
	if err != nil {
		return nil, 0, internal_errors.Store("list root threads", err)
	}
	threads, err := scanThreads(rows)
	if err != nil {
		return nil, 0, internal_errors.Store("list root threads", err)
	}
	return threads, total, nil
}

package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

const communityColumns = `id, username, name, bio, image, created_by, threads, members, created_at`

func scanCommunity(row interface{ Scan(...any) error }, c *domain.Community) error {
	return row.Scan(
		&c.Id, &c.Username, &c.Name, &c.Bio, &c.Image,
		&c.CreatedBy, &c.Threads, &c.Members, &c.CreatedAt,
	)
}

// CreateCommunity inserts the community with its creator as the first member.
func (s *Storage) CreateCommunity(ctx context.Context, data domain.CommunityCreationData) (domain.CommunityId, error) {
	id := newId()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO communities (id, username, name, bio, image, created_by, members)
			VALUES ($1, $2, $3, $4, $5, $6, ARRAY[$6::uuid])
		`, id, data.Username, data.Name, data.Bio, data.Image, data.CreatedBy)
		if err != nil {
			return err
		}
		return addToUserCommunities(ctx, tx, data.CreatedBy, id)
	})
	if err != nil {
		if isUniqueViolation(err, "communities_username_key") {
			return "", internal_errors.Validation("community handle %q is already taken", data.Username)
		}
		return "", internal_errors.Store("create community", err)
	}
	return id, nil
}

func (s *Storage) GetCommunity(ctx context.Context, id domain.CommunityId) (domain.Community, error) {
	if !validId(id) {
		return domain.Community{}, internal_errors.NotFound("community", id)
	}
	var c domain.Community
	err := scanCommunity(s.db.QueryRowContext(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = $1`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Community{}, internal_errors.NotFound("community", id)
		}
		return domain.Community{}, internal_errors.Store("get community", err)
	}
	return c, nil
}

// ListCommunities returns one page of communities, newest first, plus the total number matching the query.
func (s *Storage) ListCommunities(ctx context.Context, query domain.CommunityQuery) ([]domain.Community, int, error) {
	where := ""
	var args []any
	if search := strings.TrimSpace(query.Search); search != "" {
		args = append(args, likePattern(search))
		where = "WHERE name ILIKE $1 OR username ILIKE $1"
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM communities `+where, args...).Scan(&total); err != nil {
		return nil, 0, internal_errors.Store("count communities", err)
	}

	pageArgs := append(args, query.Page.Size, query.Page.Skip())
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM communities %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, communityColumns, where, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, internal_errors.Store("list communities", err)
	}
	defer rows.Close()

	communities := []domain.Community{}
	for rows.Next() {
		var c domain.Community
		if err := scanCommunity(rows, &c); err != nil {
			return nil, 0, internal_errors.Store("scan community", err)
		}
		communities = append(communities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, internal_errors.Store("list communities", err)
	}
	return communities, total, nil
}

// AddMember adds userId to the community and the community to the user. Idempotent.
func (s *Storage) AddMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	if !validId(communityId) {
		return internal_errors.NotFound("community", communityId)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockCommunity(ctx, tx, communityId); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			UPDATE communities SET members = array_append(members, $2::uuid)
			WHERE id = $1 AND NOT ($2::uuid = ANY(members))
		`, communityId, userId)
		if err != nil {
			return err
		}
		return addToUserCommunities(ctx, tx, userId, communityId)
	})
	if internal_errors.Is[*internal_errors.NotFoundError](err) {
		return err
	}
	return internal_errors.Store("add member", err)
}

// RemoveMember is the inverse of AddMember. Idempotent.
func (s *Storage) RemoveMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	if !validId(communityId) {
		return internal_errors.NotFound("community", communityId)
	}
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := lockCommunity(ctx, tx, communityId); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE communities SET members = array_remove(members, $2::uuid) WHERE id = $1`,
			communityId, userId,
		); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE users SET communities = array_remove(communities, $2::uuid) WHERE id = $1`,
			userId, communityId,
		)
		return err
	})
	if internal_errors.Is[*internal_errors.NotFoundError](err) {
		return err
	}
	return internal_errors.Store("remove member", err)
}

func lockCommunity(ctx context.Context, q Querier, id domain.CommunityId) error {
	var locked domain.CommunityId
	err := q.QueryRowContext(ctx, `SELECT id FROM communities WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return internal_errors.NotFound("community", id)
	}
	return err
}

func addToUserCommunities(ctx context.Context, q Querier, userId domain.UserId, communityId domain.CommunityId) error {
	_, err := q.ExecContext(ctx, `
		UPDATE users SET communities = array_append(communities, $2::uuid)
		WHERE id = $1 AND NOT ($2::uuid = ANY(communities))
	`, userId, communityId)
	if err != nil {
		return fmt.Errorf("failed to add community to user: %w", err)
	}
	return nil
}

// getCommunitiesByIds batch-loads communities; missing ids are skipped.
func getCommunitiesByIds(ctx context.Context, q Querier, ids []domain.CommunityId) (map[domain.CommunityId]*domain.Community, error) {
	ids = filterValidIds(ids)
	result := make(map[domain.CommunityId]*domain.Community, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c domain.Community
		if err := scanCommunity(rows, &c); err != nil {
			return nil, fmt.Errorf("failed to scan community: %w", err)
		}
		result[c.Id] = &c
	}
	return result, rows.Err()
}

func pullThreadsFromCommunities(ctx context.Context, q Querier, communityIds []domain.CommunityId, threadIds []domain.ThreadId) error {
	if len(communityIds) == 0 || len(threadIds) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		UPDATE communities SET threads = ARRAY(
			SELECT t FROM unnest(threads) WITH ORDINALITY AS u(t, ord)
			WHERE NOT (t = ANY($2::uuid[]))
			ORDER BY ord
		)
		WHERE id = ANY($1::uuid[]) AND threads && $2::uuid[]
	`, pq.Array(communityIds), pq.Array(threadIds))
	if err != nil {
		return fmt.Errorf("failed to pull threads from communities: %w", err)
	}
	return nil
}

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

const userColumns = `id, external_id, username, name, bio, image, onboarded, threads, communities, created_at`

func scanUser(row interface{ Scan(...any) error }, u *domain.User) error {
	return row.Scan(
		&u.Id, &u.ExternalId, &u.Username, &u.Name, &u.Bio, &u.Image,
		&u.Onboarded, &u.Threads, &u.Communities, &u.CreatedAt,
	)
}

// UpsertUser creates or updates the profile keyed by external id and marks it onboarded.
func (s *Storage) UpsertUser(ctx context.Context, data domain.UserProfileData) (domain.UserId, error) {
	var id domain.UserId
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (id, external_id, username, name, bio, image, onboarded)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		ON CONFLICT (external_id) DO UPDATE SET
			username = EXCLUDED.username,
			name = EXCLUDED.name,
			bio = EXCLUDED.bio,
			image = EXCLUDED.image,
			onboarded = TRUE
		RETURNING id
	`, newId(), data.ExternalId, data.Username, data.Name, data.Bio, data.Image).Scan(&id)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return "", internal_errors.Validation("username %q is already taken", data.Username)
		}
		return "", internal_errors.Store("upsert user", err)
	}
	return id, nil
}

func (s *Storage) GetUser(ctx context.Context, id domain.UserId) (domain.User, error) {
	if !validId(id) {
		return domain.User{}, internal_errors.NotFound("user", id)
	}
	var u domain.User
	err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("user", id)
		}
		return domain.User{}, internal_errors.Store("get user", err)
	}
	return u, nil
}

func (s *Storage) GetUserByExternalId(ctx context.Context, externalId domain.ExternalId) (domain.User, error) {
	var u domain.User
	err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalId), &u)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, internal_errors.NotFound("user", "")
		}
		return domain.User{}, internal_errors.Store("get user by external id", err)
	}
	return u, nil
}

// ListUsers returns one page of users, newest first, plus the total number matching the query.
func (s *Storage) ListUsers(ctx context.Context, query domain.UserQuery) ([]domain.User, int, error) {
	var conds []string
	var args []any
	if validId(query.ExcludeId) {
		args = append(args, query.ExcludeId)
		conds = append(conds, fmt.Sprintf("id <> $%d", len(args)))
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		args = append(args, likePattern(search))
		conds = append(conds, fmt.Sprintf("(name ILIKE $%[1]d OR username ILIKE $%[1]d)", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM users `+where, args...).Scan(&total); err != nil {
		return nil, 0, internal_errors.Store("count users", err)
	}

	pageArgs := append(args, query.Page.Size, query.Page.Skip())
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM users %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, userColumns, where, len(args)+1, len(args)+2), pageArgs...)
	if err != nil {
		return nil, 0, internal_errors.Store("list users", err)
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, 0, internal_errors.Store("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, internal_errors.Store("list users", err)
	}
	return users, total, nil
}

// getUsersByIds batch-loads users; missing ids are skipped.
func getUsersByIds(ctx context.Context, q Querier, ids []domain.UserId) (map[domain.UserId]*domain.User, error) {
	ids = filterValidIds(ids)
	result := make(map[domain.UserId]*domain.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		result[u.Id] = &u
	}
	return result, rows.Err()
}

// pullThreadsFromUsers removes every id in threadIds from the threads list
// of the given users, keeping the order of what remains.
func pullThreadsFromUsers(ctx context.Context, q Querier, userIds []domain.UserId, threadIds []domain.ThreadId) error {
	if len(userIds) == 0 || len(threadIds) == 0 {
		return nil
	}
	_, err := q.ExecContext(ctx, `
		UPDATE users SET threads = ARRAY(
			SELECT t FROM unnest(threads) WITH ORDINALITY AS u(t, ord)
			WHERE NOT (t = ANY($2::uuid[]))
			ORDER BY ord
		)
		WHERE id = ANY($1::uuid[]) AND threads && $2::uuid[]
	`, pq.Array(userIds), pq.Array(threadIds))
	if err != nil {
		return fmt.Errorf("failed to pull threads from users: %w", err)
	}
	return nil
}

func execAffectingOne(ctx context.Context, q Querier, entity, id, query string, args ...any) error {
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return internal_errors.NotFound(entity, id)
	}
	return nil
}

package pg

import (
	"context"
	"fmt"

	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
	"golang.org/x/sync/errgroup"
)

// PopulateThreads resolves authors, communities and a reply preview
// replyDepth levels deep (0, 1 or 2 in practice) for the given threads.
// The result keeps the input order. Dangling references are skipped:
// the field stays nil and missing replies are omitted.
func (s *Storage) PopulateThreads(ctx context.Context, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error) {
	views, err := populateThreads(ctx, s.db, threads, replyDepth)
	return views, internal_errors.Store("populate threads", err)
}

func populateThreads(ctx context.Context, q Querier, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error) {
	if len(threads) == 0 {
		return []*domain.ThreadView{}, nil
	}

	// Step 1: load reply levels top-down
	byId := make(map[domain.ThreadId]*domain.Thread)
	level := make([]*domain.Thread, 0, len(threads))
	for i := range threads {
		level = append(level, &threads[i])
	}
	for depth := 0; depth < replyDepth && len(level) > 0; depth++ {
		var childIds []domain.ThreadId
		for _, t := range level {
			for _, c := range t.Children {
				if _, ok := byId[c]; !ok {
					childIds = append(childIds, c)
				}
			}
		}
		children, err := getThreadsByIds(ctx, q, childIds)
		if err != nil {
			return nil, fmt.Errorf("failed to load reply level %d: %w", depth+1, err)
		}
		level = level[:0:0]
		for i := range children {
			byId[children[i].Id] = &children[i]
			level = append(level, &children[i])
		}
	}

	// Step 2: collect every referenced account across all levels
	authorSet := make(map[domain.UserId]struct{})
	communitySet := make(map[domain.CommunityId]struct{})
	collect := func(t *domain.Thread) {
		authorSet[t.Author] = struct{}{}
		if t.Community != nil {
			communitySet[*t.Community] = struct{}{}
		}
	}
	for i := range threads {
		collect(&threads[i])
	}
	for _, t := range byId {
		collect(t)
	}

	// Step 3: resolve authors and communities in parallel
	var users map[domain.UserId]*domain.User
	var communities map[domain.CommunityId]*domain.Community
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = getUsersByIds(gctx, q, keys(authorSet))
		return err
	})
	g.Go(func() error {
		var err error
		communities, err = getCommunitiesByIds(gctx, q, keys(communitySet))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Step 4: assemble views
	var build func(t *domain.Thread, depth int) *domain.ThreadView
	build = func(t *domain.Thread, depth int) *domain.ThreadView {
		view := &domain.ThreadView{
			Id:        t.Id,
			Text:      t.Text,
			ParentId:  t.ParentId,
			CreatedAt: t.CreatedAt,
			Replies:   []*domain.ThreadView{},
		}
		if u, ok := users[t.Author]; ok {
			view.Author = u.AuthorRef()
		}
		if t.Community != nil {
			if c, ok := communities[*t.Community]; ok {
				view.Community = c.Ref()
			}
		}
		if depth < replyDepth {
			for _, childId := range t.Children {
				if child, ok := byId[childId]; ok {
					view.Replies = append(view.Replies, build(child, depth+1))
				}
			}
		}
		return view
	}

	views := make([]*domain.ThreadView, 0, len(threads))
	for i := range threads {
		views = append(views, build(&threads[i], 0))
	}
	return views, nil
}

func keys[K comparable](set map[K]struct{}) []K {
	out := make([]K, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}

package service

import (
	"context"
	"maps"
	"net/http"
	"slices"

	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
	"github.com/threadly-dev/threadly/shared/logger"
	"github.com/threadly-dev/threadly/shared/middleware/metrics"
)

type ThreadService interface {
	CreateRoot(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error)
	AddReply(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error)
	GetById(ctx context.Context, id domain.ThreadId) (*domain.ThreadView, error)
	DeleteSubtree(ctx context.Context, id domain.ThreadId, path string) (int, error)
	DeleteOwned(ctx context.Context, id domain.ThreadId, requester domain.UserId, path string) (int, error)
}

type Thread struct {
	storage   ThreadStorage
	validator ThreadValidator
	views     ViewInvalidator
}

type ThreadStorage interface {
	CreateRootThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	CreateReply(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	GetThreadsByParents(ctx context.Context, parentIds []domain.ThreadId) ([]domain.TreeNode, error)
	DeleteSubtree(ctx context.Context, subtree domain.Subtree) (int, error)
	PopulateThreads(ctx context.Context, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error)
	GetUser(ctx context.Context, id domain.UserId) (domain.User, error)
	GetCommunity(ctx context.Context, id domain.CommunityId) (domain.Community, error)
}

type ThreadValidator interface {
	Text(text string) error
}

func NewThread(storage ThreadStorage, validator ThreadValidator, views ViewInvalidator) ThreadService {
	return &Thread{storage: storage, validator: validator, views: views}
}

// CreateRoot creates a thread without a parent and attaches it to its
// author and, if given, its community.
func (s *Thread) CreateRoot(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error) {
	if err := s.validator.Text(data.Text); err != nil {
		return "", err
	}
	data.ParentId = nil

	if _, err := s.storage.GetUser(ctx, data.Author); err != nil {
		return "", err
	}
	if data.Community != nil {
		if _, err := s.storage.GetCommunity(ctx, *data.Community); err != nil {
			return "", err
		}
	}

	id, err := s.storage.CreateRootThread(ctx, data)
	if err != nil {
		return "", err
	}
	metrics.ThreadsCreated.WithLabelValues("root").Inc()

	paths := []string{path, api.RootFeedPath, api.UserThreadsPath(data.Author)}
	if data.Community != nil {
		paths = append(paths, api.CommunityThreadsPath(*data.Community))
	}
	invalidateViews(ctx, s.views, paths...)
	return id, nil
}

// AddReply creates a reply under data.ParentId. The reply is linked into the
// parent's children only; the author's thread list is not touched.
func (s *Thread) AddReply(ctx context.Context, data domain.ThreadCreationData, path string) (domain.ThreadId, error) {
	if err := s.validator.Text(data.Text); err != nil {
		return "", err
	}
	if data.ParentId == nil {
		return "", internal_errors.Validation("reply needs a parent thread")
	}
	// replies never belong to a community directly
	data.Community = nil

	parent, err := s.storage.GetThread(ctx, *data.ParentId)
	if err != nil {
		return "", err
	}

	id, err := s.storage.CreateReply(ctx, data)
	if err != nil {
		return "", err
	}
	metrics.ThreadsCreated.WithLabelValues("reply").Inc()

	invalidateViews(ctx, s.views, s.affectedByReply(parent, path)...)
	return id, nil
}

// affectedByReply lists the views whose reply preview can show a new child of parent.
func (s *Thread) affectedByReply(parent domain.Thread, path string) []string {
	paths := []string{path, api.ThreadPath(parent.Id)}
	if parent.ParentId != nil {
		paths = append(paths, api.ThreadPath(*parent.ParentId))
		return paths
	}
	paths = append(paths, api.RootFeedPath, api.UserThreadsPath(parent.Author))
	if parent.Community != nil {
		paths = append(paths, api.CommunityThreadsPath(*parent.Community))
	}
	return paths
}

// GetById returns the thread with a two-level reply preview.
func (s *Thread) GetById(ctx context.Context, id domain.ThreadId) (*domain.ThreadView, error) {
	thread, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.storage.PopulateThreads(ctx, []domain.Thread{thread}, threadPreviewDepth)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, internal_errors.NotFound("thread", id)
	}
	return views[0], nil
}

// DeleteSubtree deletes the thread with all its descendants and pulls
// every deleted id out of the users' and communities' thread lists.
func (s *Thread) DeleteSubtree(ctx context.Context, id domain.ThreadId, path string) (int, error) {
	root, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return 0, err
	}
	return s.deleteSubtree(ctx, root, path)
}

// DeleteOwned is DeleteSubtree restricted to the thread's author.
func (s *Thread) DeleteOwned(ctx context.Context, id domain.ThreadId, requester domain.UserId, path string) (int, error) {
	root, err := s.storage.GetThread(ctx, id)
	if err != nil {
		return 0, err
	}
	if root.Author != requester {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Only the author can delete this thread", StatusCode: http.StatusForbidden}
	}
	return s.deleteSubtree(ctx, root, path)
}

func (s *Thread) deleteSubtree(ctx context.Context, root domain.Thread, path string) (int, error) {
	subtree, err := s.collectSubtree(ctx, root)
	if err != nil {
		return 0, err
	}

	deleted, err := s.storage.DeleteSubtree(ctx, subtree)
	if err != nil {
		return 0, err
	}
	metrics.ThreadsDeleted.Add(float64(deleted))
	logger.Log.Info("deleted thread subtree",
		"thread_id", root.Id,
		"threads", deleted,
		"authors", len(subtree.AuthorIds),
		"communities", len(subtree.CommunityIds))

	paths := []string{path, api.RootFeedPath}
	for _, id := range subtree.ThreadIds {
		paths = append(paths, api.ThreadPath(id))
	}
	paths = append(paths, s.ancestorViews(ctx, root)...)
	for _, author := range subtree.AuthorIds {
		paths = append(paths, api.UserThreadsPath(author))
	}
	for _, community := range subtree.CommunityIds {
		paths = append(paths, api.CommunityThreadsPath(community))
	}
	invalidateViews(ctx, s.views, paths...)
	return deleted, nil
}

// threadPreviewDepth is how many reply levels GetById shows.
const threadPreviewDepth = 2

// ancestorViews lists the views above t that can preview it: the
// threadPreviewDepth nearest ancestors and the lists holding the top-level
// thread. The walk stops at a missing ancestor or a cycle.
func (s *Thread) ancestorViews(ctx context.Context, t domain.Thread) []string {
	var paths []string
	seen := map[domain.ThreadId]struct{}{t.Id: {}}
	for depth := 1; t.ParentId != nil; depth++ {
		if _, ok := seen[*t.ParentId]; ok {
			return paths
		}
		parent, err := s.storage.GetThread(ctx, *t.ParentId)
		if err != nil {
			logger.Log.Warn("ancestor lookup failed, views above it may be stale",
				"thread_id", *t.ParentId, "error", err)
			return paths
		}
		seen[parent.Id] = struct{}{}
		if depth <= threadPreviewDepth {
			paths = append(paths, api.ThreadPath(parent.Id))
		}
		t = parent
	}

	paths = append(paths, api.UserThreadsPath(t.Author))
	if t.Community != nil {
		paths = append(paths, api.CommunityThreadsPath(*t.Community))
	}
	return paths
}

// collectSubtree walks the reply tree breadth-first through parent_id.
// The visited set guards against cycles in corrupted data.
func (s *Thread) collectSubtree(ctx context.Context, root domain.Thread) (domain.Subtree, error) {
	visited := map[domain.ThreadId]struct{}{root.Id: {}}
	authors := map[domain.UserId]struct{}{root.Author: {}}
	communities := map[domain.CommunityId]struct{}{}
	if root.Community != nil {
		communities[*root.Community] = struct{}{}
	}

	ids := []domain.ThreadId{root.Id}
	frontier := []domain.ThreadId{root.Id}
	for len(frontier) > 0 {
		nodes, err := s.storage.GetThreadsByParents(ctx, frontier)
		if err != nil {
			return domain.Subtree{}, err
		}
		var next []domain.ThreadId
		for _, node := range nodes {
			if _, ok := visited[node.Id]; ok {
				continue
			}
			visited[node.Id] = struct{}{}
			ids = append(ids, node.Id)
			next = append(next, node.Id)
			authors[node.Author] = struct{}{}
			if node.Community != nil {
				communities[*node.Community] = struct{}{}
			}
		}
		frontier = next
	}

	return domain.Subtree{
		Root:         root.Id,
		ThreadIds:    ids,
		AuthorIds:    slices.Sorted(maps.Keys(authors)),
		CommunityIds: slices.Sorted(maps.Keys(communities)),
	}, nil
}

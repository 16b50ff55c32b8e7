package service

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

// memStore is a stateful in-memory stand-in for the postgres storage.
// It follows the same contracts: parent_id is authoritative, dangling ids
// are skipped on read and a failed reply persists nothing.
type memStore struct {
	mu          sync.Mutex
	seq         int
	clock       time.Time
	users       map[domain.UserId]*domain.User
	communities map[domain.CommunityId]*domain.Community
	threads     map[domain.ThreadId]*domain.Thread
}

func newMemStore() *memStore {
	return &memStore{
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:       map[domain.UserId]*domain.User{},
		communities: map[domain.CommunityId]*domain.Community{},
		threads:     map[domain.ThreadId]*domain.Thread{},
	}
}

func (m *memStore) next(prefix string) (string, time.Time) {
	m.seq++
	m.clock = m.clock.Add(time.Second)
	return fmt.Sprintf("%s%03d", prefix, m.seq), m.clock
}

func copyThread(t *domain.Thread) domain.Thread {
	c := *t
	c.Children = slices.Clone(t.Children)
	return c
}

func copyUser(u *domain.User) domain.User {
	c := *u
	c.Threads = slices.Clone(u.Threads)
	c.Communities = slices.Clone(u.Communities)
	return c
}

func copyCommunity(cm *domain.Community) domain.Community {
	c := *cm
	c.Threads = slices.Clone(cm.Threads)
	c.Members = slices.Clone(cm.Members)
	return c
}

// --- seeding helpers ---

func (m *memStore) addUser(name string) domain.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ts := m.next("u")
	u := &domain.User{
		Id: id, ExternalId: "ext_" + id, Username: strings.ToLower(name) + "_" + id,
		Name: name, Onboarded: true, Threads: domain.ThreadIds{}, Communities: domain.CommunityIds{}, CreatedAt: ts,
	}
	m.users[id] = u
	return copyUser(u)
}

func (m *memStore) addCommunity(name string, creator domain.UserId) domain.Community {
	id, err := m.CreateCommunity(context.Background(), domain.CommunityCreationData{
		Username: strings.ToLower(name), Name: name, CreatedBy: creator,
	})
	if err != nil {
		panic(err)
	}
	c, _ := m.GetCommunity(context.Background(), id)
	return c
}

func (m *memStore) threadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.threads)
}

func (m *memStore) referencesTo(id domain.ThreadId) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if slices.Contains(u.Threads, id) {
			n++
		}
	}
	for _, c := range m.communities {
		if slices.Contains(c.Threads, id) {
			n++
		}
	}
	return n
}

// --- threads ---

func (m *memStore) CreateRootThread(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[data.Author]
	if !ok {
		return "", internal_errors.NotFound("user", data.Author)
	}
	var community *domain.Community
	if data.Community != nil {
		if community, ok = m.communities[*data.Community]; !ok {
			return "", internal_errors.NotFound("community", *data.Community)
		}
	}
	id, ts := m.next("t")
	m.threads[id] = &domain.Thread{Id: id, Text: data.Text, Author: data.Author, Community: data.Community, Children: domain.ThreadIds{}, CreatedAt: ts}
	user.Threads = append(user.Threads, id)
	if community != nil {
		community.Threads = append(community.Threads, id)
	}
	return id, nil
}

func (m *memStore) CreateReply(ctx context.Context, data domain.ThreadCreationData) (domain.ThreadId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parent, ok := m.threads[*data.ParentId]
	if !ok {
		return "", internal_errors.NotFound("thread", *data.ParentId)
	}
	id, ts := m.next("t")
	parentId := parent.Id
	m.threads[id] = &domain.Thread{Id: id, Text: data.Text, Author: data.Author, ParentId: &parentId, Children: domain.ThreadIds{}, CreatedAt: ts}
	parent.Children = append(parent.Children, id)
	return id, nil
}

func (m *memStore) GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.threads[id]
	if !ok {
		return domain.Thread{}, internal_errors.NotFound("thread", id)
	}
	return copyThread(t), nil
}

func (m *memStore) GetThreadsByIds(ctx context.Context, ids []domain.ThreadId) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Thread{}
	for _, id := range ids {
		if t, ok := m.threads[id]; ok {
			out = append(out, copyThread(t))
		}
	}
	return out, nil
}

func (m *memStore) GetThreadsByParents(ctx context.Context, parentIds []domain.ThreadId) ([]domain.TreeNode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.TreeNode{}
	for _, t := range m.threads {
		if t.ParentId != nil && slices.Contains(parentIds, *t.ParentId) {
			out = append(out, domain.TreeNode{Id: t.Id, Author: t.Author, Community: t.Community})
		}
	}
	return out, nil
}

func (m *memStore) DeleteSubtree(ctx context.Context, subtree domain.Subtree) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	deleted := 0
	for _, id := range subtree.ThreadIds {
		if _, ok := m.threads[id]; ok {
			delete(m.threads, id)
			deleted++
		}
	}
	pull := func(list []string) []string {
		return slices.DeleteFunc(list, func(id string) bool { return slices.Contains(subtree.ThreadIds, id) })
	}
	for _, uid := range subtree.AuthorIds {
		if u, ok := m.users[uid]; ok {
			u.Threads = pull(u.Threads)
		}
	}
	for _, cid := range subtree.CommunityIds {
		if c, ok := m.communities[cid]; ok {
			c.Threads = pull(c.Threads)
		}
	}
	return deleted, nil
}

func (m *memStore) ListRootThreads(ctx context.Context, page domain.Page) ([]domain.Thread, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var roots []domain.Thread
	for _, t := range m.threads {
		if t.ParentId == nil {
			roots = append(roots, copyThread(t))
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].CreatedAt.After(roots[j].CreatedAt) })
	return window(roots, page), len(roots), nil
}

func window[T any](items []T, page domain.Page) []T {
	out := []T{}
	skip := page.Skip()
	if skip >= len(items) {
		return out
	}
	end := min(skip+page.Size, len(items))
	return append(out, items[skip:end]...)
}

func (m *memStore) PopulateThreads(ctx context.Context, threads []domain.Thread, replyDepth int) ([]*domain.ThreadView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var build func(t domain.Thread, depth int) *domain.ThreadView
	build = func(t domain.Thread, depth int) *domain.ThreadView {
		v := &domain.ThreadView{Id: t.Id, Text: t.Text, ParentId: t.ParentId, CreatedAt: t.CreatedAt, Replies: []*domain.ThreadView{}}
		if u, ok := m.users[t.Author]; ok {
			v.Author = u.AuthorRef()
		}
		if t.Community != nil {
			if c, ok := m.communities[*t.Community]; ok {
				v.Community = c.Ref()
			}
		}
		if depth < replyDepth {
			for _, cid := range t.Children {
				if child, ok := m.threads[cid]; ok {
					v.Replies = append(v.Replies, build(copyThread(child), depth+1))
				}
			}
		}
		return v
	}
	out := make([]*domain.ThreadView, 0, len(threads))
	for _, t := range threads {
		out = append(out, build(t, 0))
	}
	return out, nil
}

func (m *memStore) GetThreadsByAuthor(ctx context.Context, userId domain.UserId) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Thread{}
	for _, t := range m.threads {
		if t.Author == userId {
			out = append(out, copyThread(t))
		}
	}
	return out, nil
}

func (m *memStore) GetRepliesByOthers(ctx context.Context, userId domain.UserId, ids []domain.ThreadId) ([]domain.Thread, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Thread{}
	for _, id := range ids {
		if t, ok := m.threads[id]; ok && t.Author != userId {
			out = append(out, copyThread(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) RepairChildren(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	derived := map[domain.ThreadId][]domain.Thread{}
	for _, t := range m.threads {
		if t.ParentId != nil {
			derived[*t.ParentId] = append(derived[*t.ParentId], *t)
		}
	}
	repaired := 0
	for id, t := range m.threads {
		kids := derived[id]
		sort.Slice(kids, func(i, j int) bool { return kids[i].CreatedAt.Before(kids[j].CreatedAt) })
		want := domain.ThreadIds{}
		for _, k := range kids {
			want = append(want, k.Id)
		}
		if !slices.Equal(t.Children, want) {
			t.Children = want
			repaired++
		}
	}
	return repaired, nil
}

// --- users ---

func (m *memStore) UpsertUser(ctx context.Context, data domain.UserProfileData) (domain.UserId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == data.Username && u.ExternalId != data.ExternalId {
			return "", internal_errors.Validation("username %q is already taken", data.Username)
		}
	}
	for _, u := range m.users {
		if u.ExternalId == data.ExternalId {
			u.Username, u.Name, u.Bio, u.Image, u.Onboarded = data.Username, data.Name, data.Bio, data.Image, true
			return u.Id, nil
		}
	}
	id, ts := m.next("u")
	m.users[id] = &domain.User{
		Id: id, ExternalId: data.ExternalId, Username: data.Username, Name: data.Name, Bio: data.Bio, Image: data.Image,
		Onboarded: true, Threads: domain.ThreadIds{}, Communities: domain.CommunityIds{}, CreatedAt: ts,
	}
	return id, nil
}

func (m *memStore) GetUser(ctx context.Context, id domain.UserId) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, internal_errors.NotFound("user", id)
	}
	return copyUser(u), nil
}

func (m *memStore) GetUserByExternalId(ctx context.Context, externalId domain.ExternalId) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ExternalId == externalId {
			return copyUser(u), nil
		}
	}
	return domain.User{}, internal_errors.NotFound("user", "")
}

func (m *memStore) ListUsers(ctx context.Context, query domain.UserQuery) ([]domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(query.Search)
	var matched []domain.User
	for _, u := range m.users {
		if u.Id == query.ExcludeId {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(strings.ToLower(u.Username), search) {
			continue
		}
		matched = append(matched, copyUser(u))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return window(matched, query.Page), len(matched), nil
}

// --- communities ---

func (m *memStore) CreateCommunity(ctx context.Context, data domain.CommunityCreationData) (domain.CommunityId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.communities {
		if c.Username == data.Username {
			return "", internal_errors.Validation("community handle %q is already taken", data.Username)
		}
	}
	id, ts := m.next("c")
	m.communities[id] = &domain.Community{
		Id: id, Username: data.Username, Name: data.Name, Bio: data.Bio, Image: data.Image, CreatedBy: data.CreatedBy,
		Threads: domain.ThreadIds{}, Members: domain.UserIds{data.CreatedBy}, CreatedAt: ts,
	}
	if u, ok := m.users[data.CreatedBy]; ok {
		u.Communities = append(u.Communities, id)
	}
	return id, nil
}

func (m *memStore) GetCommunity(ctx context.Context, id domain.CommunityId) (domain.Community, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[id]
	if !ok {
		return domain.Community{}, internal_errors.NotFound("community", id)
	}
	return copyCommunity(c), nil
}

func (m *memStore) ListCommunities(ctx context.Context, query domain.CommunityQuery) ([]domain.Community, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(query.Search)
	var matched []domain.Community
	for _, c := range m.communities {
		if search != "" && !strings.Contains(strings.ToLower(c.Name), search) && !strings.Contains(strings.ToLower(c.Username), search) {
			continue
		}
		matched = append(matched, copyCommunity(c))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return window(matched, query.Page), len(matched), nil
}

func (m *memStore) AddMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[communityId]
	if !ok {
		return internal_errors.NotFound("community", communityId)
	}
	if !slices.Contains(c.Members, userId) {
		c.Members = append(c.Members, userId)
	}
	if u, ok := m.users[userId]; ok && !slices.Contains(u.Communities, communityId) {
		u.Communities = append(u.Communities, communityId)
	}
	return nil
}

func (m *memStore) RemoveMember(ctx context.Context, communityId domain.CommunityId, userId domain.UserId) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.communities[communityId]
	if !ok {
		return internal_errors.NotFound("community", communityId)
	}
	c.Members = slices.DeleteFunc(c.Members, func(id string) bool { return id == userId })
	if u, ok := m.users[userId]; ok {
		u.Communities = slices.DeleteFunc(u.Communities, func(id string) bool { return id == communityId })
	}
	return nil
}

// --- view invalidation ---

type recordingViews struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recordingViews) Invalidate(ctx context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
	return r.err
}

func (r *recordingViews) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.paths)
}

package pg

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
)

// ======================
// CreateRootThread Tests
// ======================

func TestCreateRootThread(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "Author")
	community := createTestCommunity(t, author.Id)

	t.Run("pushes to author and community", func(t *testing.T) {
		id := createRoot(t, author.Id, &community.Id)

		thread, err := storage.GetThread(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "root thread text", thread.Text)
		assert.True(t, thread.IsRoot())
		require.NotNil(t, thread.Community)
		assert.Equal(t, community.Id, *thread.Community)

		user, err := storage.GetUser(ctx, author.Id)
		require.NoError(t, err)
		assert.Contains(t, user.Threads, id)

		c, err := storage.GetCommunity(ctx, community.Id)
		require.NoError(t, err)
		assert.Contains(t, c.Threads, id)
	})

	t.Run("unknown community persists nothing", func(t *testing.T) {
		missing := uuid.NewString()
		before, err := storage.GetUser(ctx, author.Id)
		require.NoError(t, err)

		_, err = storage.CreateRootThread(ctx, domain.ThreadCreationData{Text: "x", Author: author.Id, Community: &missing})
		assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](err))

		after, err := storage.GetUser(ctx, author.Id)
		require.NoError(t, err)
		assert.Equal(t, before.Threads, after.Threads)
	})
}

// =================
// CreateReply Tests
// =================

func TestCreateReply(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "Author")
	replier := createTestUser(t, "Replier")
	root := createRoot(t, author.Id, nil)

	t.Run("appends to parent children", func(t *testing.T) {
		r1 := createReply(t, root, replier.Id)
		r2 := createReply(t, root, author.Id)

		parent, err := storage.GetThread(ctx, root)
		require.NoError(t, err)
		assert.Equal(t, domain.ThreadIds{r1, r2}, parent.Children)

		reply, err := storage.GetThread(ctx, r1)
		require.NoError(t, err)
		require.NotNil(t, reply.ParentId)
		assert.Equal(t, root, *reply.ParentId)
		assert.Nil(t, reply.Community)

		// replies are not added to the author's own list
		user, err := storage.GetUser(ctx, replier.Id)
		require.NoError(t, err)
		assert.NotContains(t, user.Threads, r1)
	})

	t.Run("missing parent persists nothing", func(t *testing.T) {
		missing := uuid.NewString()
		before, err := storage.GetThreadsByAuthor(ctx, replier.Id)
		require.NoError(t, err)

		_, err = storage.CreateReply(ctx, domain.ThreadCreationData{Text: "orphan", Author: replier.Id, ParentId: &missing})
		assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](err))

		after, err := storage.GetThreadsByAuthor(ctx, replier.Id)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("malformed parent id", func(t *testing.T) {
		bad := "nope"
		_, err := storage.CreateReply(ctx, domain.ThreadCreationData{Text: "x", Author: replier.Id, ParentId: &bad})
		assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](err))
	})
}

// ===================
// DeleteSubtree Tests
// ===================

func TestDeleteSubtree(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "Author")
	other := createTestUser(t, "Other")
	community := createTestCommunity(t, author.Id)

	keep := createRoot(t, author.Id, &community.Id)
	root := createRoot(t, author.Id, &community.Id)
	r1 := createReply(t, root, other.Id)
	r2 := createReply(t, r1, author.Id)

	nodes, err := storage.GetThreadsByParents(ctx, []domain.ThreadId{root})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, r1, nodes[0].Id)
	assert.Equal(t, other.Id, nodes[0].Author)

	deleted, err := storage.DeleteSubtree(ctx, domain.Subtree{
		Root:         root,
		ThreadIds:    []domain.ThreadId{root, r1, r2},
		AuthorIds:    []domain.UserId{author.Id, other.Id},
		CommunityIds: []domain.CommunityId{community.Id},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	for _, id := range []domain.ThreadId{root, r1, r2} {
		_, err := storage.GetThread(ctx, id)
		assert.True(t, internal_errors.Is[*internal_errors.NotFoundError](err))
	}

	user, err := storage.GetUser(ctx, author.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadIds{keep}, user.Threads)

	c, err := storage.GetCommunity(ctx, community.Id)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadIds{keep}, c.Threads)

	empty, err := storage.DeleteSubtree(ctx, domain.Subtree{})
	require.NoError(t, err)
	assert.Zero(t, empty)
}

// =====================
// ListRootThreads Tests
// =====================

func TestListRootThreads(t *testing.T) {
	truncateAll(t)
	ctx := context.Background()
	author := createTestUser(t, "Author")

	var roots []domain.ThreadId
	for i := 0; i < 4; i++ {
		root := createRoot(t, author.Id, nil)
		createReply(t, root, author.Id)
		roots = append(roots, root)
	}

	first, total, err := storage.ListRootThreads(ctx, domain.Page{Number: 1, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, first, 3)
	assert.Equal(t, roots[3], first[0].Id, "newest first")
	for _, thread := range first {
		assert.True(t, thread.IsRoot())
	}

	second, _, err := storage.ListRootThreads(ctx, domain.Page{Number: 2, Size: 3})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, roots[0], second[0].Id)
}

// =====================
// PopulateThreads Tests
// =====================

func TestPopulateThreads(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "Author")
	replier := createTestUser(t, "Replier")
	community := createTestCommunity(t, author.Id)

	root := createRoot(t, author.Id, &community.Id)
	r1 := createReply(t, root, replier.Id)
	r11 := createReply(t, r1, author.Id)
	createReply(t, r11, replier.Id) // third level, never previewed

	thread, err := storage.GetThread(ctx, root)
	require.NoError(t, err)

	t.Run("two levels", func(t *testing.T) {
		views, err := storage.PopulateThreads(ctx, []domain.Thread{thread}, 2)
		require.NoError(t, err)
		require.Len(t, views, 1)
		view := views[0]

		require.NotNil(t, view.Author)
		assert.Equal(t, "Author", view.Author.Name)
		require.NotNil(t, view.Community)
		assert.Equal(t, community.Username, view.Community.Username)

		require.Len(t, view.Replies, 1)
		assert.Equal(t, r1, view.Replies[0].Id)
		assert.Equal(t, "Replier", view.Replies[0].Author.Name)
		require.Len(t, view.Replies[0].Replies, 1)
		assert.Equal(t, r11, view.Replies[0].Replies[0].Id)
		assert.Empty(t, view.Replies[0].Replies[0].Replies)
	})

	t.Run("one level", func(t *testing.T) {
		views, err := storage.PopulateThreads(ctx, []domain.Thread{thread}, 1)
		require.NoError(t, err)
		require.Len(t, views[0].Replies, 1)
		assert.Empty(t, views[0].Replies[0].Replies)
	})

	t.Run("dangling references are skipped", func(t *testing.T) {
		ghostAuthor := uuid.NewString()
		ghostCommunity := uuid.NewString()
		dangling := domain.Thread{
			Id:        uuid.NewString(),
			Text:      "ghost",
			Author:    ghostAuthor,
			Community: &ghostCommunity,
			Children:  domain.ThreadIds{uuid.NewString(), r1},
		}
		views, err := storage.PopulateThreads(ctx, []domain.Thread{dangling}, 1)
		require.NoError(t, err)
		assert.Nil(t, views[0].Author)
		assert.Nil(t, views[0].Community)
		require.Len(t, views[0].Replies, 1)
		assert.Equal(t, r1, views[0].Replies[0].Id)
	})
}

// ===================
// Activity Tests
// ===================

func TestActivityQueries(t *testing.T) {
	ctx := context.Background()
	me := createTestUser(t, "Me")
	other := createTestUser(t, "Other")

	root := createRoot(t, me.Id, nil)
	self := createReply(t, root, me.Id)
	first := createReply(t, root, other.Id)
	second := createReply(t, root, other.Id)

	mine, err := storage.GetThreadsByAuthor(ctx, me.Id)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	replies, err := storage.GetRepliesByOthers(ctx, me.Id, []domain.ThreadId{self, first, second})
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, second, replies[0].Id)
	assert.Equal(t, first, replies[1].Id)
}

// ===================
// RepairChildren Tests
// ===================

func TestRepairChildren(t *testing.T) {
	ctx := context.Background()
	author := createTestUser(t, "Author")
	root := createRoot(t, author.Id, nil)
	r1 := createReply(t, root, author.Id)
	r2 := createReply(t, root, author.Id)

	// drift: lose one child and reference a thread that does not exist
	_, err := storage.db.ExecContext(ctx, `UPDATE threads SET children = ARRAY[$2::uuid, $3::uuid] WHERE id = $1`, root, r2, uuid.NewString())
	require.NoError(t, err)

	repaired, err := storage.RepairChildren(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, repaired, 1)

	thread, err := storage.GetThread(ctx, root)
	require.NoError(t, err)
	assert.Equal(t, domain.ThreadIds{r1, r2}, thread.Children)

	again, err := storage.RepairChildren(ctx)
	require.NoError(t, err)
	assert.Zero(t, again, "consistent tree needs no repair")
}

package domain

import "time"

// Thread is the stored document. ParentId is authoritative for the tree;
// Children is a denormalized index of direct replies.
type Thread struct {
	Id        ThreadId
	Text      ThreadText
	Author    UserId
	Community *CommunityId
	ParentId  *ThreadId
	Children  ThreadIds
	CreatedAt time.Time
}

func (t *Thread) IsRoot() bool {
	return t.ParentId == nil
}

// to iterate thru layers: handler -> service -> storage
type ThreadCreationData struct {
	Text      ThreadText
	Author    UserId
	Community *CommunityId
	ParentId  *ThreadId
}

// ThreadView is a thread with its references populated for display.
// Replies holds the reply preview; how deep it goes depends on the caller.
type ThreadView struct {
	Id        ThreadId
	Text      ThreadText
	ParentId  *ThreadId
	CreatedAt time.Time
	Author    *AuthorRef
	Community *CommunityRef
	Replies   []*ThreadView
}

type ThreadList struct {
	Threads []*ThreadView
	IsNext  bool
}

// TreeNode is the minimal projection used to walk a reply subtree.
type TreeNode struct {
	Id        ThreadId
	Author    UserId
	Community *CommunityId
}

// Subtree is the closed set of threads a cascading delete removes,
// plus every account whose thread list may reference them.
type Subtree struct {
	Root         ThreadId
	ThreadIds    []ThreadId
	AuthorIds    []UserId
	CommunityIds []CommunityId
}

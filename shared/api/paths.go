package api

// Paths of the cacheable views. Mutations invalidate these in addition to
// the path the client passes.
const (
	Prefix       = "/v1"
	RootFeedPath = Prefix + "/threads"
)

func ThreadPath(id string) string {
	return Prefix + "/threads/" + id
}

func UserThreadsPath(userId string) string {
	return Prefix + "/users/" + userId + "/threads"
}

func CommunityThreadsPath(communityId string) string {
	return Prefix + "/communities/" + communityId + "/threads"
}

package domain

import "github.com/lib/pq"

type (
	UserId      = string
	ExternalId  = string
	CommunityId = string
	ThreadId    = string

	Username   = string
	ThreadText = string

	// id lists are stored as postgres uuid arrays
	ThreadIds    = pq.StringArray
	UserIds      = pq.StringArray
	CommunityIds = pq.StringArray
)

// AccountType selects whose thread list ListAccountThreads reads.
type AccountType string

const (
	AccountUser      AccountType = "User"
	AccountCommunity AccountType = "Community"
)

// Page is a 1-indexed offset page request.
type Page struct {
	Number int
	Size   int
}

func (p Page) Skip() int {
	return (p.Number - 1) * p.Size
}

// IsNext reports whether results exist beyond the ones returned for this page.
func (p Page) IsNext(total, returned int) bool {
	return total > p.Skip()+returned
}

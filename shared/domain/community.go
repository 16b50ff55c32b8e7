package domain

import "time"

type Community struct {
	Id        CommunityId
	Username  Username
	Name      string
	Bio       string
	Image     string
	CreatedBy UserId
	Threads   ThreadIds
	Members   UserIds
	CreatedAt time.Time
}

// to iterate thru layers: handler -> service -> storage
type CommunityCreationData struct {
	Username  Username
	Name      string
	Bio       string
	Image     string
	CreatedBy UserId
}

type CommunityQuery struct {
	Search string
	Page   Page
}

type CommunityList struct {
	Communities []Community
	IsNext      bool
}

// CommunityRef is the populated form of a thread's community reference.
type CommunityRef struct {
	Id       CommunityId
	Username Username
	Name     string
	Image    string
}

func (c *Community) Ref() *CommunityRef {
	return &CommunityRef{Id: c.Id, Username: c.Username, Name: c.Name, Image: c.Image}
}

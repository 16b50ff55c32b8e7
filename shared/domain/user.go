package domain

import "time"

type User struct {
	Id          UserId
	ExternalId  ExternalId
	Username    Username
	Name        string
	Bio         string
	Image       string
	Onboarded   bool
	Threads     ThreadIds
	Communities CommunityIds
	CreatedAt   time.Time
}

// to iterate thru layers: handler -> service -> storage
type UserProfileData struct {
	ExternalId ExternalId
	Username   Username
	Name       string
	Bio        string
	Image      string
}

// Identity is what the identity gateway vouches for in a bearer token.
type Identity struct {
	ExternalId ExternalId
	Name       string
	Image      string
}

type UserQuery struct {
	ExcludeId UserId
	Search    string
	Page      Page
}

type UserList struct {
	Users  []User
	IsNext bool
}

// AuthorRef is the populated form of a thread's author reference.
type AuthorRef struct {
	Id         UserId
	ExternalId ExternalId
	Name       string
	Image      string
}

func (u *User) AuthorRef() *AuthorRef {
	return &AuthorRef{Id: u.Id, ExternalId: u.ExternalId, Name: u.Name, Image: u.Image}
}

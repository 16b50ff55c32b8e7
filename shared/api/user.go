package api

import (
	"time"

	"github.com/threadly-dev/threadly/shared/domain"
)

type UserResponse struct {
	Id          string    `json:"id"`
	ExternalId  string    `json:"external_id"`
	Username    string    `json:"username"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	Image       string    `json:"image,omitempty"`
	Onboarded   bool      `json:"onboarded"`
	Threads     []string  `json:"threads"`
	Communities []string  `json:"communities"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	IsNext bool           `json:"is_next"`
}

type CommunityResponse struct {
	Id        string    `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio"`
	Image     string    `json:"image,omitempty"`
	CreatedBy string    `json:"created_by"`
	Threads   []string  `json:"threads"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

type CommunityListResponse struct {
	Communities []CommunityResponse `json:"communities"`
	IsNext      bool                `json:"is_next"`
}

func NewUserResponse(u domain.User) UserResponse {
	return UserResponse{
		Id:          u.Id,
		ExternalId:  u.ExternalId,
		Username:    u.Username,
		Name:        u.Name,
		Bio:         u.Bio,
		Image:       u.Image,
		Onboarded:   u.Onboarded,
		Threads:     nonNil(u.Threads),
		Communities: nonNil(u.Communities),
		CreatedAt:   u.CreatedAt,
	}
}

func NewCommunityResponse(c domain.Community) CommunityResponse {
	return CommunityResponse{
		Id:        c.Id,
		Username:  c.Username,
		Name:      c.Name,
		Bio:       c.Bio,
		Image:     c.Image,
		CreatedBy: c.CreatedBy,
		Threads:   nonNil(c.Threads),
		Members:   nonNil(c.Members),
		CreatedAt: c.CreatedAt,
	}
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

package api

import (
	"time"

	"github.com/threadly-dev/threadly/shared/domain"
)

// Response DTOs

type AuthorResponse struct {
	Id         string `json:"id"`
	ExternalId string `json:"external_id"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
}

type CommunityRefResponse struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
}

// ThreadResponse is a populated thread. HTML is Text rendered for display.
type ThreadResponse struct {
	Id        string                `json:"id"`
	Text      string                `json:"text"`
	HTML      string                `json:"html"`
	ParentId  *string               `json:"parent_id"`
	CreatedAt time.Time             `json:"created_at"`
	Author    *AuthorResponse       `json:"author"`
	Community *CommunityRefResponse `json:"community"`
	Replies   []ThreadResponse      `json:"replies"`
}

type ThreadListResponse struct {
	Threads []ThreadResponse `json:"threads"`
	IsNext  bool             `json:"is_next"`
}

// ActivityResponse lists replies other users left under the caller's threads.
type ActivityResponse struct {
	Replies []ThreadResponse `json:"replies"`
}

// TextRenderer turns stored thread text into display HTML.
type TextRenderer func(text string) string

func NewThreadResponse(v *domain.ThreadView, render TextRenderer) ThreadResponse {
	resp := ThreadResponse{
		Id:        v.Id,
		Text:      v.Text,
		HTML:      render(v.Text),
		ParentId:  v.ParentId,
		CreatedAt: v.CreatedAt,
		Replies:   NewThreadResponses(v.Replies, render),
	}
	if v.Author != nil {
		resp.Author = &AuthorResponse{
			Id:         v.Author.Id,
			ExternalId: v.Author.ExternalId,
			Name:       v.Author.Name,
			Image:      v.Author.Image,
		}
	}
	if v.Community != nil {
		resp.Community = &CommunityRefResponse{
			Id:       v.Community.Id,
			Username: v.Community.Username,
			Name:     v.Community.Name,
			Image:    v.Community.Image,
		}
	}
	return resp
}

// NewThreadResponses never returns nil so lists encode as [].
func NewThreadResponses(views []*domain.ThreadView, render TextRenderer) []ThreadResponse {
	out := make([]ThreadResponse, 0, len(views))
	for _, v := range views {
		if v == nil {
			continue
		}
		out = append(out, NewThreadResponse(v, render))
	}
	return out
}

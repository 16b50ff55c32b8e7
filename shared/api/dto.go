package api

// Request DTOs

type UpsertUserRequest struct {
	Username string `json:"username" validate:"required,max=30"`
	Name     string `json:"name" validate:"required,max=50"`
	Bio      string `json:"bio,omitempty" validate:"max=1000"`
	Image    string `json:"image,omitempty"`
	Path     string `json:"path,omitempty"`
}

type CreateThreadRequest struct {
	Text        string  `json:"text" validate:"required"`
	CommunityId *string `json:"community_id,omitempty" validate:"omitempty,uuid"`
	Path        string  `json:"path,omitempty"`
}

type CreateReplyRequest struct {
	Text string `json:"text" validate:"required"`
	Path string `json:"path,omitempty"`
}

type CreateCommunityRequest struct {
	Username string `json:"username" validate:"required,max=30"`
	Name     string `json:"name" validate:"required,max=50"`
	Bio      string `json:"bio,omitempty" validate:"max=1000"`
	Image    string `json:"image,omitempty"`
}

// Generic response DTOs

type CreatedResponse struct {
	Id string `json:"id"`
}

type DeleteThreadResponse struct {
	Deleted int `json:"deleted"`
}

// ReadyResponse lists each dependency the server needs and whether it answered.
type ReadyResponse struct {
	Ready  bool              `json:"ready"`
	Checks map[string]string `json:"checks"`
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/domain"
	"github.com/threadly-dev/threadly/shared/utils"
)

// UpsertMe saves the caller's profile. It is the only write a caller
// without a profile may make.
func (h *Handler) UpsertMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var body api.UpsertUserRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	image := body.Image
	if image == "" {
		image = identity.Image
	}
	data := domain.UserProfileData{
		ExternalId: identity.ExternalId,
		Username:   body.Username,
		Name:       h.text.StripHTML(body.Name),
		Bio:        h.text.StripHTML(body.Bio),
		Image:      image,
	}
	userId, err := h.user.Upsert(r.Context(), data, body.Path)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	user, err := h.user.GetById(r.Context(), userId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(user))
}

// GetMe returns 404 until the caller has saved a profile.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	user, err := h.user.GetByExternalId(r.Context(), identity.ExternalId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(user))
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.user.GetById(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewUserResponse(user))
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.onboarded(w, r)
	if !ok {
		return
	}
	page, err := pageFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	list, err := h.user.List(r.Context(), domain.UserQuery{
		ExcludeId: caller.Id,
		Search:    r.URL.Query().Get("q"),
		Page:      page,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	users := make([]api.UserResponse, 0, len(list.Users))
	for _, u := range list.Users {
		users = append(users, api.NewUserResponse(u))
	}
	writeJSON(w, api.UserListResponse{Users: users, IsNext: list.IsNext})
}

func (h *Handler) ListUserThreads(w http.ResponseWriter, r *http.Request) {
	h.listAccountThreads(w, r, chi.URLParam(r, "userId"), domain.AccountUser)
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/domain"
	"github.com/threadly-dev/threadly/shared/utils"
)

func (h *Handler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}

	var body api.CreateCommunityRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	communityId, err := h.community.Create(r.Context(), domain.CommunityCreationData{
		Username:  body.Username,
		Name:      h.text.StripHTML(body.Name),
		Bio:       h.text.StripHTML(body.Bio),
		Image:     body.Image,
		CreatedBy: user.Id,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.CreatedResponse{Id: communityId})
}

func (h *Handler) GetCommunity(w http.ResponseWriter, r *http.Request) {
	community, err := h.community.Get(r.Context(), chi.URLParam(r, "communityId"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	writeJSON(w, api.NewCommunityResponse(community))
}

func (h *Handler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	list, err := h.community.List(r.Context(), domain.CommunityQuery{
		Search: r.URL.Query().Get("q"),
		Page:   page,
	})
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	communities := make([]api.CommunityResponse, 0, len(list.Communities))
	for _, c := range list.Communities {
		communities = append(communities, api.NewCommunityResponse(c))
	}
	writeJSON(w, api.CommunityListResponse{Communities: communities, IsNext: list.IsNext})
}

func (h *Handler) ListCommunityThreads(w http.ResponseWriter, r *http.Request) {
	h.listAccountThreads(w, r, chi.URLParam(r, "communityId"), domain.AccountCommunity)
}

func (h *Handler) JoinCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}

	if err := h.community.Join(r.Context(), chi.URLParam(r, "communityId"), user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LeaveCommunity(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}

	if err := h.community.Leave(r.Context(), chi.URLParam(r, "communityId"), user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

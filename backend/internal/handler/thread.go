package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/threadly-dev/threadly/shared/api"
	"github.com/threadly-dev/threadly/shared/domain"
	"github.com/threadly-dev/threadly/shared/utils"
)

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}

	var body api.CreateThreadRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creation := domain.ThreadCreationData{
		Text:      domain.ThreadText(h.text.StripHTML(body.Text)),
		Author:    user.Id,
		Community: body.CommunityId,
	}
	threadId, err := h.thread.CreateRoot(r.Context(), creation, body.Path)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.CreatedResponse{Id: threadId})
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}
	parentId := chi.URLParam(r, "threadId")

	var body api.CreateReplyRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	creation := domain.ThreadCreationData{
		Text:     domain.ThreadText(h.text.StripHTML(body.Text)),
		Author:   user.Id,
		ParentId: &parentId,
	}
	replyId, err := h.thread.AddReply(r.Context(), creation, body.Path)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.CreatedResponse{Id: replyId})
}

func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	threadId := chi.URLParam(r, "threadId")

	view, err := h.thread.GetById(r.Context(), threadId)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.NewThreadResponse(view, h.text.Render))
}

// DeleteThread removes the caller's thread together with every reply under it.
func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}
	threadId := chi.URLParam(r, "threadId")

	deleted, err := h.thread.DeleteOwned(r.Context(), threadId, user.Id, r.URL.Query().Get("path"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.DeleteThreadResponse{Deleted: deleted})
}

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	list, err := h.feed.ListRootThreads(r.Context(), page)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ThreadListResponse{
		Threads: api.NewThreadResponses(list.Threads, h.text.Render),
		IsNext:  list.IsNext,
	})
}

func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	user, ok := h.onboarded(w, r)
	if !ok {
		return
	}

	replies, err := h.activity.GetActivity(r.Context(), user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ActivityResponse{Replies: api.NewThreadResponses(replies, h.text.Render)})
}

func (h *Handler) listAccountThreads(w http.ResponseWriter, r *http.Request, accountId string, accountType domain.AccountType) {
	views, err := h.feed.ListAccountThreads(r.Context(), accountId, accountType)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, api.ThreadListResponse{Threads: api.NewThreadResponses(views, h.text.Render)})
}

package handler

import (
	"net/http"

	"github.com/threadly-dev/threadly/shared/domain"
	internal_errors "github.com/threadly-dev/threadly/shared/errors"
	mw "github.com/threadly-dev/threadly/shared/middleware"
	"github.com/threadly-dev/threadly/shared/utils"
)

// identity returns the verified caller or answers 401.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	identity := mw.GetIdentityFromContext(r)
	if identity == nil {
		http.Error(w, "Please sign-in", http.StatusUnauthorized)
		return nil, false
	}
	return identity, true
}

// onboarded resolves the caller's profile. A caller who has not saved a
// profile yet gets 403.
func (h *Handler) onboarded(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	identity, ok := h.identity(w, r)
	if !ok {
		return domain.User{}, false
	}
	user, err := h.user.GetByExternalId(r.Context(), identity.ExternalId)
	if internal_errors.Is[*internal_errors.NotFoundError](err) || (err == nil && !user.Onboarded) {
		http.Error(w, "Complete your profile first", http.StatusForbidden)
		return domain.User{}, false
	}
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return domain.User{}, false
	}
	return user, true
}

// pageFromQuery reads page and page_size. An absent page_size is left at
// zero so the service applies its configured default.
func pageFromQuery(r *http.Request) (domain.Page, error) {
	number, err := utils.QueryInt(r, "page", 1)
	if err != nil {
		return domain.Page{}, err
	}
	size, err := utils.QueryInt(r, "page_size", 0)
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Number: number, Size: size}, nil
}

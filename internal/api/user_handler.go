package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fantacard/market-api/internal/api/shared"
	"github.com/fantacard/market-api/internal/service/user"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	userService *user.Service
	validator   *validator.Validate
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(userService *user.Service) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// GetUser handles GET /users/{userID}.
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	userID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	profile, err := h.userService.Get(r.Context(), identity, userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(profile))
}

// ListUsers handles GET /users. Admin only.
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	page, perPage := getPagination(r)

	profiles, err := h.userService.List(r.Context(), identity, page, perPage)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := UserListResponse{
		Users:   make([]UserResponse, 0, len(profiles)),
		Page:    page,
		PerPage: perPage,
	}
	for _, profile := range profiles {
		resp.Users = append(resp.Users, newUserResponse(profile))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// UpdateUser handles PATCH /users/{userID}.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	userID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateUserRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	updated, err := h.userService.Update(r.Context(), identity, userID, user.UpdateParams{
		Username: req.Username,
		Country:  req.Country,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	profile, err := h.userService.Get(r.Context(), identity, updated.ID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, newUserResponse(profile))
}

// DeleteUser handles DELETE /users/{userID}. The user's cards are removed
// with them.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(w, r)
	if !ok {
		return
	}

	userID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.userService.Delete(r.Context(), identity, userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// User registry HTTP handlers.
//
// Endpoints:
//   - POST /users               (register or refresh the caller)
//   - GET  /users               (all users with search counts, privileged)
//   - PUT  /users/{id}/admin    (grant or revoke administrator, privileged)
//   - GET  /users/{id}/history  (remote search history, self or privileged)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/repo"
)

// RegisterUserRequest carries the caller's chat profile.
type RegisterUserRequest struct {
	Handle      string `json:"handle" example:"@ann"`
	DisplayName string `json:"display_name" example:"Ann Smith"`
}

// SetAdminRequest toggles the stored administrator flag.
type SetAdminRequest struct {
	Admin *bool `json:"admin" binding:"required" example:"true"`
}

// ListUsersResponse wraps every registered user.
type ListUsersResponse struct {
	Users []repo.UserWithSearches `json:"users"`
}

// HistoryResponse is a user's remote search history, newest first.
type HistoryResponse struct {
	UserID   int64                `json:"user_id"`
	Searches []domain.SearchQuery `json:"searches"`
}

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register the caller
// @Description Creates the user identified by X-User-ID or refreshes its handle and display name.
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Param       body       body    handlers.RegisterUserRequest  false  "Profile"
// @Success     200  {object}  domain.User
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	uid := middleware.UserID(c)
	if uid == 0 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID required")
		return
	}
	var req RegisterUserRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}
	u, err := h.users.Register(c.Request.Context(), uid, req.Handle, req.DisplayName)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	ok(c, http.StatusOK, u)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Description Every registered user with the number of remote searches issued. Administrators only.
// @Tags        Users
// @Produce     json
// @Param       X-User-ID  header  int  true  "Administrator chat user id"
// @Success     200  {object}  handlers.ListUsersResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListUsersResponse{Users: users})
}

// SetUserAdmin godoc
// @ID          setUserAdmin
// @Summary     Grant or revoke administrator
// @Tags        Users
// @Accept      json
// @Param       X-User-ID  header  int  true  "Administrator chat user id"
// @Param       id         path    int  true  "Target user id"
// @Param       body       body    handlers.SetAdminRequest  true  "Flag"
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{id}/admin [put]
func (h *Handlers) SetUserAdmin(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := paramID(c, "id")
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return
	}
	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Admin == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "admin flag required")
		return
	}
	if _, found, err := h.users.Get(ctx, id); err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	} else if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
		return
	}
	if err := h.users.SetAdmin(ctx, id, *req.Admin); err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	noContent(c)
}

// UserHistory godoc
// @ID          userHistory
// @Summary     Remote search history of a user
// @Description Newest first, each search with the fonts it found. Visible to the user and administrators.
// @Tags        Users
// @Produce     json
// @Param       X-User-ID  header  int  true   "Chat user id"
// @Param       id         path    int  true   "User id"
// @Param       limit      query   int  false  "Maximum searches"  minimum(1)
// @Success     200  {object}  handlers.HistoryResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the user"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /users/{id}/history [get]
func (h *Handlers) UserHistory(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "user id must be a positive integer")
		return
	}
	if !h.selfOrPrivileged(c, id) {
		return
	}
	items, err := h.searches.History(c.Request.Context(), id, h.limit(c))
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, HistoryResponse{UserID: id, Searches: items})
}

// Remote search HTTP handlers.
//
// Endpoints:
//   - POST /searches       (search the remote font API and ingest the results)
//   - GET  /searches       (recent searches of all users, privileged)
//   - GET  /searches/{id}  (one search with its fonts)
//
// Idempotency: when the client sends Idempotency-Key and a previous POST with
// the same key completed, the stored search is returned with
// Idempotency-Replayed: true and the remote API is not called again.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/services"
)

// CreateSearchRequest is the payload of a remote search.
type CreateSearchRequest struct {
	Query string `json:"query" binding:"required" example:"open sans"`
}

// ListSearchesResponse wraps recent searches.
type ListSearchesResponse struct {
	Searches []repo.SearchWithCount `json:"searches"`
}

// CreateSearch godoc
// @ID          createSearch
// @Summary     Search the remote font API
// @Description Records the query, asks the remote API and adds unknown fonts to the catalogue.
// @Description A remote failure yields an empty result, not an error.
// @Tags        Search
// @Accept      json
// @Produce     json
// @Param       X-User-ID        header  int     true   "Chat user id"
// @Param       Idempotency-Key  header  string  false  "Key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreateSearchRequest  true  "Query"
// @Success     201  {object}  services.SearchOutcome  "Search recorded"
// @Success     200  {object}  repo.SearchDetails      "Replayed search"
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long query"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /searches [post]
func (h *Handlers) CreateSearch(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	if uid == 0 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID required")
		return
	}

	if res, replay := middleware.ReplayResource(c); replay {
		if id, err := strconv.ParseInt(res, 10, 64); err == nil {
			if d, found, err := h.searches.Details(ctx, id); err == nil && found {
				c.Header(middleware.HeaderIdempotencyReplayed, "true")
				ok(c, http.StatusOK, d)
				return
			}
		}
	}

	var req CreateSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeEmptyQuery, "query required")
		return
	}

	out, err := h.searches.Search(ctx, uid, req.Query)
	if err != nil {
		failService(c, err, ErrCodeSearchFailed)
		return
	}

	if key, has := middleware.GetIdempotencyKey(c); has && h.idem != nil {
		rid := strconv.FormatInt(out.QueryID, 10)
		if err := h.idem.Record(ctx, uid, middleware.IdempotencyScope(c), key, rid, http.StatusCreated); err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Str("idempotency_key", key).Msg("idempotency record failed")
		}
	}
	ok(c, http.StatusCreated, out)
}

// ListSearches godoc
// @ID          listSearches
// @Summary     Recent remote searches
// @Description Most recent searches across all users with their font counts. Administrators only.
// @Tags        Search
// @Produce     json
// @Param       X-User-ID  header  int  true   "Administrator chat user id"
// @Param       limit      query   int  false  "Maximum rows"  minimum(1)
// @Success     200  {object}  handlers.ListSearchesResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /searches [get]
func (h *Handlers) ListSearches(c *gin.Context) {
	items, err := h.searches.List(c.Request.Context(), h.limit(c))
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListSearchesResponse{Searches: items})
}

// GetSearch godoc
// @ID          getSearch
// @Summary     One remote search
// @Description The search, the fonts it found and the issuing user. Visible to its owner and administrators.
// @Tags        Search
// @Produce     json
// @Param       X-User-ID  header  int  true  "Chat user id"
// @Param       id         path    int  true  "Search id"
// @Success     200  {object}  repo.SearchDetails
// @Failure     400  {object}  handlers.ErrorResponse  "Bad id"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Search not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /searches/{id} [get]
func (h *Handlers) GetSearch(c *gin.Context) {
	ctx := c.Request.Context()
	id, valid := paramID(c, "id")
	if !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "search id must be a positive integer")
		return
	}
	d, found, err := h.searches.Details(ctx, id)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	if !found {
		failService(c, services.ErrSearchNotFound, ErrCodeInternal)
		return
	}
	if !h.selfOrPrivileged(c, d.Search.UserID) {
		return
	}
	ok(c, http.StatusOK, d)
}

// selfOrPrivileged lets the caller through when it is owner or an
// administrator; otherwise it writes the error and returns false.
func (h *Handlers) selfOrPrivileged(c *gin.Context, owner int64) bool {
	uid := middleware.UserID(c)
	if uid == 0 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID required")
		return false
	}
	if uid == owner {
		return true
	}
	priv, err := h.users.IsPrivileged(c.Request.Context(), uid)
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return false
	}
	if !priv {
		failService(c, services.ErrForbidden, ErrCodeInternal)
		return false
	}
	return true
}

func (h *Handlers) limit(c *gin.Context) int {
	n := h.opts.HistoryLimit
	if v := c.Query("limit"); v != "" {
		if q, err := strconv.Atoi(v); err == nil && q > 0 && q < n {
			n = q
		}
	}
	return n
}

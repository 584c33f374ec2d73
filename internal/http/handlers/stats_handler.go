// Statistics HTTP handlers (administrators only).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats godoc
// @ID          getStats
// @Summary     Service overview
// @Description User and search counts, the catalogue counters and the local search summary.
// @Tags        Stats
// @Produce     json
// @Param       X-User-ID  header  int  true  "Administrator chat user id"
// @Success     200  {object}  services.Overview
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats [get]
func (h *Handlers) GetStats(c *gin.Context) {
	ov, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeStatsFailed)
		return
	}
	ok(c, http.StatusOK, ov)
}

// RebuildStats godoc
// @ID          rebuildStats
// @Summary     Recompute the catalogue counters
// @Description Recounts fonts, documents, downloads and local searches from the underlying rows.
// @Tags        Stats
// @Produce     json
// @Param       X-User-ID  header  int  true  "Administrator chat user id"
// @Success     200  {object}  domain.CatalogueStats
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /stats/rebuild [post]
func (h *Handlers) RebuildStats(c *gin.Context) {
	st, err := h.stats.Rebuild(c.Request.Context())
	if err != nil {
		failService(c, err, ErrCodeStatsFailed)
		return
	}
	ok(c, http.StatusOK, st)
}

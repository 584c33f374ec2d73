// Font catalogue HTTP handlers.
//
// Endpoints:
//   - GET    /fonts                  (list, paginated)
//   - GET    /fonts/{slug}           (one entry)
//   - GET    /fonts/{slug}/usage     (age and download rate)
//   - POST   /fonts/{slug}/download  (file, or link when no file is available)
//   - POST   /fonts/{slug}/refresh   (privileged metadata overwrite)
//   - DELETE /fonts/{slug}           (privileged removal)
//   - GET    /local-search           (ranked search over the catalogue)
package handlers

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/domain"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
	"github.com/tbourn/go-font-catalogue/internal/repo"
	"github.com/tbourn/go-font-catalogue/internal/search"
	"github.com/tbourn/go-font-catalogue/internal/utils"
)

// HeaderDownloadCount carries the entry's download count after a delivered
// download.
const HeaderDownloadCount = "X-Download-Count"

// ListFontsResponse is a page of catalogue entries.
type ListFontsResponse struct {
	Fonts      []repo.EntryListing `json:"fonts"`
	Pagination Pagination          `json:"pagination"`
}

// RefreshFontRequest is the metadata written by an explicit refresh. The slug
// comes from the path.
type RefreshFontRequest struct {
	FontName        string `json:"font_name" binding:"required" example:"Arial"`
	Designer        string `json:"designer" example:"Robin Nicholas"`
	Manufacturer    string `json:"manufacturer" example:"Monotype"`
	ContributorName string `json:"contributor_name" example:"Ann"`
	URL             string `json:"url" example:"https://font.download/font/arial"`
}

// RefreshFontResponse reports the refreshed entry and whether it was created.
type RefreshFontResponse struct {
	Entry   *domain.CatalogueEntry `json:"entry"`
	Created bool                   `json:"created"`
}

// LocalSearchResponse is one page of ranked local search results.
type LocalSearchResponse struct {
	Query      string          `json:"query"`
	Results    []search.Result `json:"results"`
	Pagination Pagination      `json:"pagination"`
}

// ListFonts godoc
// @ID          listFonts
// @Summary     List catalogue entries (paginated)
// @Description Newest first, each entry with the registered user who added it.
// @Tags        Fonts
// @Produce     json
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  handlers.ListFontsResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fonts [get]
func (h *Handlers) ListFonts(c *gin.Context) {
	page, pageSize := clampPagination(c, 20)
	items, total, err := h.catalogue.List(c.Request.Context(), page, pageSize)
	if err != nil {
		failService(c, err, ErrCodeListFailed)
		return
	}
	ok(c, http.StatusOK, ListFontsResponse{Fonts: items, Pagination: newPagination(page, pageSize, total)})
}

// GetFont godoc
// @ID          getFont
// @Summary     Get a catalogue entry
// @Tags        Fonts
// @Produce     json
// @Param       slug  path  string  true  "Font slug"  example(arial)
// @Success     200  {object}  domain.CatalogueEntry
// @Failure     404  {object}  handlers.ErrorResponse  "Font not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fonts/{slug} [get]
func (h *Handlers) GetFont(c *gin.Context) {
	e, found, err := h.catalogue.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "font not found")
		return
	}
	ok(c, http.StatusOK, e)
}

// FontUsage godoc
// @ID          fontUsage
// @Summary     Usage of a catalogue entry
// @Description Days since the entry was added and its average downloads per day.
// @Tags        Fonts
// @Produce     json
// @Param       slug  path  string  true  "Font slug"
// @Success     200  {object}  services.EntryUsage
// @Failure     404  {object}  handlers.ErrorResponse  "Font not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fonts/{slug}/usage [get]
func (h *Handlers) FontUsage(c *gin.Context) {
	u, found, err := h.catalogue.Usage(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failService(c, err, ErrCodeInternal)
		return
	}
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "font not found")
		return
	}
	ok(c, http.StatusOK, u)
}

// DownloadFont godoc
// @ID          downloadFont
// @Summary     Download a font
// @Description Streams the font archive and counts the download. When no file
// @Description can be obtained the direct link is returned instead and nothing is counted.
// @Tags        Fonts
// @Produce     octet-stream
// @Produce     json
// @Param       X-User-ID  header  int     false  "Chat user id"
// @Param       slug       path    string  true   "Font slug"
// @Success     200  {file}    file                      "Font file (Content-Disposition: attachment)"
// @Header      200  {integer} X-Download-Count          "Download count after this download"
// @Success     202  {object}  services.DownloadResult   "No file available; use download_url"
// @Failure     404  {object}  handlers.ErrorResponse    "Font not found"
// @Failure     500  {object}  handlers.ErrorResponse    "Internal error"
// @Router      /fonts/{slug}/download [post]
func (h *Handlers) DownloadFont(c *gin.Context) {
	res, err := h.catalogue.Download(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failService(c, err, ErrCodeDownloadFailed)
		return
	}
	if !res.Delivered {
		ok(c, http.StatusAccepted, res)
		return
	}
	c.Header(HeaderDownloadCount, strconv.FormatInt(res.Entry.DownloadCount, 10))
	c.FileAttachment(res.FilePath, res.Entry.Slug+filepath.Ext(res.FilePath))
}

// RefreshFont godoc
// @ID          refreshFont
// @Summary     Overwrite a font's metadata
// @Description Replaces the stored metadata for slug, creating the entry when it is unknown. Administrators only.
// @Tags        Fonts
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  int     true  "Administrator chat user id"
// @Param       slug       path    string  true  "Font slug"
// @Param       body       body    handlers.RefreshFontRequest  true  "New metadata"
// @Success     200  {object}  handlers.RefreshFontResponse  "Updated"
// @Success     201  {object}  handlers.RefreshFontResponse  "Created"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fonts/{slug}/refresh [post]
func (h *Handlers) RefreshFont(c *gin.Context) {
	var req RefreshFontRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "font_name required")
		return
	}
	rec := domain.ExternalFontRecord{
		Slug:            c.Param("slug"),
		FontName:        req.FontName,
		Designer:        req.Designer,
		Manufacturer:    req.Manufacturer,
		ContributorName: req.ContributorName,
		URL:             req.URL,
	}
	e, created, err := h.catalogue.Refresh(c.Request.Context(), rec, nil)
	if err != nil {
		failService(c, err, ErrCodeUpdateFailed)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	ok(c, status, RefreshFontResponse{Entry: e, Created: created})
}

// DeleteFont godoc
// @ID          deleteFont
// @Summary     Remove a font from the catalogue
// @Description Deletes the entry and its local file. Administrators only.
// @Tags        Fonts
// @Param       X-User-ID  header  int     true  "Administrator chat user id"
// @Param       slug       path    string  true  "Font slug"
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     403  {object}  handlers.ErrorResponse  "Not an administrator"
// @Failure     404  {object}  handlers.ErrorResponse  "Font not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /fonts/{slug} [delete]
func (h *Handlers) DeleteFont(c *gin.Context) {
	removed, err := h.catalogue.DeleteBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		failService(c, err, ErrCodeDeleteFailed)
		return
	}
	if !removed {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "font not found")
		return
	}
	noContent(c)
}

// LocalSearch godoc
// @ID          localSearch
// @Summary     Search the local catalogue
// @Description Matches the query against font names and slugs and ranks the hits by relevance.
// @Description Every call is recorded in the local search log.
// @Tags        Search
// @Produce     json
// @Param       X-User-ID  header  int     false  "Chat user id"
// @Param       q          query   string  true   "Query"         example(arial bold)
// @Param       page       query   int     false  "Results page"  minimum(1) default(1)
// @Success     200  {object}  handlers.LocalSearchResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long query"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /local-search [get]
func (h *Handlers) LocalSearch(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	results, err := h.catalogue.Search(c.Request.Context(), middleware.UserID(c), q)
	if err != nil {
		failService(c, err, ErrCodeSearchFailed)
		return
	}
	page := utils.AtoiDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	per := h.opts.FontsPerPage
	ok(c, http.StatusOK, LocalSearchResponse{
		Query:      q,
		Results:    utils.Paginate(results, page, per),
		Pagination: newPagination(page, per, int64(len(results))),
	})
}

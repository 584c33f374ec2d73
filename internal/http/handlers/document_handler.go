// Document upload HTTP handler.
//
// POST /documents accepts a multipart font file (field "file"). The name of
// the file determines the catalogue slug and font name; the caller becomes
// the contributor.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-font-catalogue/internal/fontfiles"
	"github.com/tbourn/go-font-catalogue/internal/http/middleware"
)

// UploadDocument godoc
// @ID          uploadDocument
// @Summary     Upload a font file
// @Description Stores the file and records it in the catalogue as a document. An existing
// @Description entry with the same slug is updated in place and its previous file removed.
// @Tags        Documents
// @Accept      multipart/form-data
// @Produce     json
// @Param       X-User-ID     header    int     true   "Chat user id"
// @Param       file          formData  file    true   "Font or archive (.ttf .otf .woff .woff2 .eot .zip .rar)"
// @Param       contributor   formData  string  false  "Contributor display name"
// @Success     201  {object}  domain.CatalogueEntry
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or empty file"
// @Failure     401  {object}  handlers.ErrorResponse  "Identity required"
// @Failure     413  {object}  handlers.ErrorResponse  "File too large"
// @Failure     415  {object}  handlers.ErrorResponse  "Not a font file"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /documents [post]
func (h *Handlers) UploadDocument(c *gin.Context) {
	ctx := c.Request.Context()
	uid := middleware.UserID(c)
	if uid == 0 {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "X-User-ID required")
		return
	}
	if h.files == nil {
		fail(c, http.StatusServiceUnavailable, ErrCodeUploadFailed, "uploads are disabled")
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			failService(c, fontfiles.ErrTooLarge, ErrCodeUploadFailed)
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field \"file\" required")
		return
	}
	if !fontfiles.IsFontFile(fh.Filename) {
		fail(c, http.StatusUnsupportedMediaType, ErrCodeNotFontFile,
			fmt.Sprintf("unsupported file type %q", strings.ToLower(filepath.Ext(fh.Filename))))
		return
	}
	if h.opts.MaxUploadBytes > 0 && fh.Size > h.opts.MaxUploadBytes {
		failService(c, fontfiles.ErrTooLarge, ErrCodeUploadFailed)
		return
	}

	rec := fontfiles.DeriveRecord(fh.Filename, c.PostForm("contributor"))

	src, err := fh.Open()
	if err != nil {
		failService(c, err, ErrCodeUploadFailed)
		return
	}
	defer src.Close()

	path, err := h.files.Save(ctx, fh.Filename, src)
	if err != nil {
		failService(c, err, ErrCodeUploadFailed)
		return
	}

	e, err := h.catalogue.RecordUploadedFont(ctx, uid, rec, path)
	if err != nil {
		h.files.Remove(ctx, path)
		failService(c, err, ErrCodeUploadFailed)
		return
	}
	middleware.LoggerFrom(c).Info().Str("slug", e.Slug).Str("file", filepath.Base(path)).Msg("document stored")
	ok(c, http.StatusCreated, e)
}

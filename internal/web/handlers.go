package web

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/rolo/internal/config"
	"github.com/hpungsan/rolo/internal/contact"
	"github.com/hpungsan/rolo/internal/errors"
	"github.com/hpungsan/rolo/internal/ops"
	"github.com/hpungsan/rolo/internal/sheet"
	"github.com/hpungsan/rolo/internal/store"
)

// maxUploadBytes bounds a multipart import request, leaving room for form overhead.
const maxUploadBytes = ops.MaxImportBytes + 1<<20

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	st       *store.Store
	cfg      *config.Config
	renderer *Renderer
	now      func() time.Time
}

// HandleList handles GET /contacts: search by q within scope.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := ops.Search(r.Context(), h.st, ops.SearchInput{
		Term:  query,
		Scope: r.URL.Query().Get("scope"),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	title := "Contacts"
	if result.Scope == string(contact.ScopeBookmarked) {
		title = "Bookmarked"
	}
	h.renderer.renderPage(w, "list", ListPageData{
		PageData: PageData{
			Title:   title,
			Version: h.renderer.version,
			Nav:     result.Scope,
		},
		Items:  result.Items,
		Query:  query,
		Scope:  result.Scope,
		Total:  result.Total,
		Notice: importNotice(r.URL.Query().Get("imported")),
	})
}

// HandleDetail handles GET /contacts/{id}: view a single contact.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	c, err := ops.Get(r.Context(), h.st, ops.GetInput{ID: id, IncludeAvatar: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, c)
		return
	}

	name := displayName(c.ContactItem)
	h.renderer.renderPage(w, "detail", DetailPageData{
		PageData: PageData{
			Title:   name,
			Version: h.renderer.version,
		},
		Contact:     c.ContactItem,
		NoteHTML:    renderMarkdown(c.Note),
		DisplayName: name,
	})
}

// HandleBookmark handles POST /contacts/{id}/bookmark: flip the bookmark flag.
// An unknown id is not an error; nothing changes.
func (h *Handlers) HandleBookmark(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	result, err := ops.ToggleBookmark(r.Context(), h.st, ops.BookmarkInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	target := "/contacts"
	if result.Found {
		target = "/contacts/" + url.PathEscape(result.ID)
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// HandleDelete handles DELETE /contacts/{id}: remove a contact.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("contact ID is required"))
		return
	}

	result, err := ops.Delete(r.Context(), h.st, ops.DeleteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/contacts", http.StatusSeeOther)
}

// HandleExport handles GET /export: download the collection as a spreadsheet.
func (h *Handlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := sheet.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest(err.Error()))
		return
	}

	var buf bytes.Buffer
	if _, err := ops.ExportTo(r.Context(), &buf, h.st, h.cfg, format); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	filename := ops.ExportFilename(h.now(), format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprint(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleImport handles POST /import: append contacts from an uploaded
// spreadsheet in the multipart field "file".
func (h *Handlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid multipart form"))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file is required"))
		return
	}
	defer file.Close()

	format, err := sheet.FormatFromPath(header.Filename)
	if err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("file must have .xlsx or .csv extension"))
		return
	}

	result, err := ops.ImportReader(r.Context(), h.st, file, format)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}
	http.Redirect(w, r, "/contacts?imported="+fmt.Sprint(result.Imported), http.StatusSeeOther)
}

// importNotice is the banner shown after an import redirect.
func importNotice(n string) string {
	if _, err := strconv.Atoi(n); err != nil {
		return ""
	}
	return fmt.Sprintf("Imported %s contacts.", n)
}

// scopeQuery builds the list URL for a scope, keeping the search term.
func scopeQuery(scope, query string) string {
	v := url.Values{}
	if strings.TrimSpace(query) != "" {
		v.Set("q", query)
	}
	if scope != "" && scope != string(contact.ScopeAll) {
		v.Set("scope", scope)
	}
	if len(v) == 0 {
		return "/contacts"
	}
	return "/contacts?" + v.Encode()
}

package web

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/avelius/halo/internal/bubble"
	"github.com/avelius/halo/internal/config"
	"github.com/avelius/halo/internal/errors"
	"github.com/avelius/halo/internal/ops"
)

// Handlers contains HTTP route handlers for the web UI.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	renderer *Renderer
}

// HandleList handles GET /bubbles, the ranked overlay state.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	typeFilter := r.URL.Query().Get("type")
	all := parseBoolParam(r, "all")

	result, err := ops.List(r.Context(), h.db, ops.ListInput{
		Type: typeFilter,
		All:  all,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "list", ListPageData{
		PageData: PageData{
			Title:   "Bubbles",
			Version: h.renderer.version,
			Nav:     "bubbles",
		},
		Bubbles:         result.Bubbles,
		KeyboardVisible: result.KeyboardVisible,
		LastCategory:    result.LastCategory,
		TypeFilter:      typeFilter,
		All:             all,
		Total:           result.Total,
	})
}

// HandleDetail handles GET /bubbles/{id}. For
// accumulator bubbles it includes the collected items and an export preview.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("bubble ID is required"))
		return
	}

	result, err := ops.List(r.Context(), h.db, ops.ListInput{All: true})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	var view *ops.BubbleView
	for i := range result.Bubbles {
		if result.Bubbles[i].ID == id {
			view = &result.Bubbles[i]
			break
		}
	}
	if view == nil {
		h.renderer.renderError(w, r, errors.NewNotFound(id))
		return
	}

	data := DetailPageData{
		PageData: PageData{
			Title:   typeTitle(string(view.Type)),
			Version: h.renderer.version,
			Nav:     "bubbles",
		},
		Bubble: *view,
	}

	switch p := view.Payload.(type) {
	case bubble.TextPastePayload:
		data.RenderedHTML = renderMarkdown(p.Content)
	case bubble.PinnedPayload:
		data.RenderedHTML = renderMarkdown(p.Content)
	case bubble.AccumulatorPayload:
		state := p.State
		data.Accumulator = &state
		exp, expErr := ops.Export(r.Context(), h.db, ops.ExportInput{ID: id})
		if expErr == nil {
			data.ExportPreview = exp.Exported
		}
	}

	h.renderer.renderPage(w, r, "detail", data)
}

// HandleDelete handles DELETE /bubbles/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("bubble ID is required"))
		return
	}

	result, err := ops.Remove(r.Context(), h.db, ops.RemoveInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/bubbles")
		w.WriteHeader(http.StatusOK)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, map[string]any{
			"removed": result.Removed,
			"id":      result.ID,
		})
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/bubbles", http.StatusFound)
}

// HandleMinimize handles POST /bubbles/{id}/minimize, toggling minimized.
func (h *Handlers) HandleMinimize(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("bubble ID is required"))
		return
	}

	if _, err := ops.Minimize(r.Context(), h.db, ops.MinimizeInput{ID: id}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/bubbles/"+id, http.StatusFound)
}

// HandleIngest handles POST /ingest, feeding a content sample into the
// overlay from the browser.
func (h *Handlers) HandleIngest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	result, err := ops.Ingest(r.Context(), h.db, h.cfg, ops.IngestInput{
		Content:      r.FormValue("content"),
		Source:       "web",
		CreateBubble: r.FormValue("create_bubble") == "true",
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// JSON request
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		renderJSON(w, http.StatusOK, result)
		return
	}

	// Default: redirect
	http.Redirect(w, r, "/bubbles?all=true", http.StatusFound)
}

// HandleClassify handles GET /classify, the classify form and its result.
func (h *Handlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	sample := r.URL.Query().Get("q")

	data := ClassifyPageData{
		PageData: PageData{
			Title:   "Classify",
			Version: h.renderer.version,
			Nav:     "classify",
		},
		Sample:   sample,
		HasQuery: sample != "",
	}

	if sample != "" {
		result, err := ops.Classify(h.cfg, ops.ClassifyInput{Content: sample})
		if err != nil {
			h.renderer.renderError(w, r, err)
			return
		}
		data.Category = result.Category
		data.Actions = result.Actions
	}

	h.renderer.renderPage(w, r, "classify", data)
}

// HandleKeyboard handles POST /keyboard, flipping the keyboard flag to preview
// the policy table's effect.
func (h *Handlers) HandleKeyboard(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	visible := r.FormValue("visible") == "true"
	if _, err := ops.Keyboard(r.Context(), h.db, ops.KeyboardInput{Visible: visible}); err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, "/bubbles?all=true", http.StatusFound)
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/versely/versely/internal/adapters/secondary/songfile"
	"github.com/versely/versely/internal/domain/entities"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a JSON error response, translating missing records to
// 404.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, entities.ErrNotFound) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// handleHealth reports server liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"clients":   s.connMgr.Count(),
	})
}

// ---- collections ----

func (s *Server) listCollectionsHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cols, err := s.library.ListCollections(r.Context(), kind)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if cols == nil {
			cols = []entities.Collection{}
		}
		writeJSON(w, http.StatusOK, cols)
	}
}

func (s *Server) createCollectionHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		if body.Title == "" {
			badRequest(w, "title is required")
			return
		}

		c, err := s.library.CreateCollection(r.Context(), kind, body.Title, body.Description)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	}
}

func (s *Server) getCollectionHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := entities.CollectionRef{Kind: kind, ID: mux.Vars(r)["id"]}
		c, err := s.library.GetCollection(r.Context(), ref)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) updateCollectionHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := entities.CollectionRef{Kind: kind, ID: mux.Vars(r)["id"]}

		c, err := s.library.GetCollection(r.Context(), ref)
		if err != nil {
			s.writeError(w, err)
			return
		}

		var body struct {
			Title       *string  `json:"title"`
			Description *string  `json:"description"`
			SlideIDs    []string `json:"slideIds"`
		}
		if !decodeBody(w, r, &body) {
			return
		}

		if body.Title != nil {
			c.Title = *body.Title
		}
		if body.Description != nil {
			c.Description = *body.Description
		}
		if body.SlideIDs != nil {
			c.SlideIDs = body.SlideIDs
		}

		if err := s.library.UpdateCollection(r.Context(), c); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) deleteCollectionHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := entities.CollectionRef{Kind: kind, ID: mux.Vars(r)["id"]}
		if err := s.library.DeleteCollection(r.Context(), ref); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": ref.String()})
	}
}

func (s *Server) backgroundHandler(kind entities.CollectionKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := entities.CollectionRef{Kind: kind, ID: mux.Vars(r)["id"]}

		var body struct {
			URL string `json:"url"`
		}
		if !decodeBody(w, r, &body) {
			return
		}

		if err := s.library.ApplyBackground(r.Context(), ref, body.URL); err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"background": body.URL})
	}
}

// regenerateSermonHandler is the explicit segmentation path: sermons never
// auto-segment, the author pushes the button.
func (s *Server) regenerateSermonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := entities.CollectionRef{Kind: entities.KindSermon, ID: mux.Vars(r)["id"]}

		var body struct {
			Text *string `json:"text"`
		}
		if !decodeBody(w, r, &body) {
			return
		}

		text := ""
		if body.Text != nil {
			text = *body.Text
		} else {
			stored, err := s.library.Text(r.Context(), ref)
			if err != nil {
				s.writeError(w, err)
				return
			}
			text = stored
		}

		if err := s.regenerator.RegenerateNow(r.Context(), ref, text); err != nil {
			s.writeError(w, err)
			return
		}

		c, err := s.library.GetCollection(r.Context(), ref)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// handleImportSong accepts either a JSON body or a raw .song file.
func (s *Server) handleImportSong(w http.ResponseWriter, r *http.Request) {
	var title, author, background, lyrics string

	if r.Header.Get("Content-Type") == "application/json" {
		var body struct {
			Title      string `json:"title"`
			Author     string `json:"author"`
			Background string `json:"background"`
			Lyrics     string `json:"lyrics"`
		}
		if !decodeBody(w, r, &body) {
			return
		}
		title, author, background, lyrics = body.Title, body.Author, body.Background, body.Lyrics
	} else {
		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			badRequest(w, "reading body: "+err.Error())
			return
		}
		song, err := songfile.Parse(raw)
		if err != nil {
			badRequest(w, err.Error())
			return
		}
		title, author, background, lyrics = song.Title, song.Author, song.Background, song.Lyrics
	}

	if lyrics == "" {
		badRequest(w, "lyrics are required")
		return
	}

	c, err := s.library.ImportSong(r.Context(), title, author, background, lyrics)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// ---- slides ----

func (s *Server) handleListSlides(w http.ResponseWriter, r *http.Request) {
	slides, err := s.store.ListSlides(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if slides == nil {
		slides = []entities.Slide{}
	}
	writeJSON(w, http.StatusOK, slides)
}

func (s *Server) handleGetSlide(w http.ResponseWriter, r *http.Request) {
	slide, err := s.store.GetSlide(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slide)
}

func (s *Server) handlePutSlide(w http.ResponseWriter, r *http.Request) {
	var slide entities.Slide
	if !decodeBody(w, r, &slide) {
		return
	}
	slide.ID = mux.Vars(r)["id"]
	if err := slide.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	// The sanitizer eats HTML comments, so the background marker has to be
	// re-attached afterwards.
	background := slide.Background()
	slide.HTML = s.sanitizer.Sanitize(entities.StripBackgroundMarker(slide.HTML))
	if background != "" {
		slide.SetBackground(background)
	}

	if slide.UpdatedAt.IsZero() {
		slide.UpdatedAt = time.Now()
	}
	if slide.CreatedAt.IsZero() {
		slide.CreatedAt = slide.UpdatedAt
	}

	if err := s.store.UpsertSlide(r.Context(), &slide); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &slide)
}

func (s *Server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteSlide(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ---- text content ----

// handlePutContent stores text for an item. When the key addresses a
// collection's segmentable text field the write goes through the editing
// pipeline so slides regenerate.
func (s *Server) handlePutContent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemType string `json:"itemType"`
		ItemID   string `json:"itemId"`
		Field    string `json:"field"`
		Content  string `json:"content"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ItemType == "" || body.ItemID == "" || body.Field == "" {
		badRequest(w, "itemType, itemId, and field are required")
		return
	}

	kind := entities.CollectionKind(body.ItemType)
	if kind.Valid() && body.Field == kind.TextField() {
		ref := entities.CollectionRef{Kind: kind, ID: body.ItemID}
		s.regenerator.OnTextChanged(r.Context(), ref, body.Content)
		writeJSON(w, http.StatusAccepted, map[string]string{
			"key": entities.ContentKey(body.ItemType, body.Field, body.ItemID),
		})
		return
	}

	content := &entities.TextContent{
		Key:       entities.ContentKey(body.ItemType, body.Field, body.ItemID),
		ItemID:    body.ItemID,
		ItemType:  body.ItemType,
		Content:   body.Content,
		UpdatedAt: time.Now(),
	}
	if err := s.store.PutContent(r.Context(), content); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": content.Key})
}

// handleGetContent returns stored text. Absent keys yield empty content,
// not 404: the editor treats both the same.
func (s *Server) handleGetContent(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	content, err := s.store.GetContent(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key, "content": content})
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	if err := s.store.DeleteContent(r.Context(), key); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": key})
}

// ---- flows ----

func (s *Server) handleListFlows(w http.ResponseWriter, r *http.Request) {
	flows, err := s.flows.ListFlows(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if flows == nil {
		flows = []entities.Flow{}
	}
	writeJSON(w, http.StatusOK, flows)
}

func (s *Server) handleCreateFlow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Title == "" {
		badRequest(w, "title is required")
		return
	}

	f, err := s.flows.CreateFlow(r.Context(), body.Title)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFlow(w http.ResponseWriter, r *http.Request) {
	f, err := s.flows.GetFlow(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFlow(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.flows.DeleteFlow(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleAddFlowItem(w http.ResponseWriter, r *http.Request) {
	flowID := mux.Vars(r)["id"]

	var body struct {
		Type           string `json:"type"`
		CollectionKind string `json:"collectionKind"`
		CollectionID   string `json:"collectionId"`
		Title          string `json:"title"`
		Note           string `json:"note"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	var f *entities.Flow
	var err error

	switch entities.FlowItemType(body.Type) {
	case entities.FlowItemCollection:
		ref := entities.CollectionRef{
			Kind: entities.CollectionKind(body.CollectionKind),
			ID:   body.CollectionID,
		}
		if err := ref.Validate(); err != nil {
			badRequest(w, err.Error())
			return
		}
		f, err = s.flows.AddCollection(r.Context(), flowID, ref)

	case entities.FlowItemNote:
		if body.Title == "" {
			badRequest(w, "note title is required")
			return
		}
		f, err = s.flows.AddNote(r.Context(), flowID, body.Title, body.Note)

	default:
		badRequest(w, "type must be collection or note")
		return
	}

	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleRemoveFlowItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	f, err := s.flows.RemoveItem(r.Context(), vars["id"], vars["itemID"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleReorderFlow(w http.ResponseWriter, r *http.Request) {
	flowID := mux.Vars(r)["id"]

	var body struct {
		ItemID   string `json:"itemId"`
		Position int    `json:"position"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ItemID == "" {
		badRequest(w, "itemId is required")
		return
	}

	f, err := s.flows.Reorder(r.Context(), flowID, body.ItemID, body.Position)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handlePrintFlow(w http.ResponseWriter, r *http.Request) {
	f, err := s.flows.GetFlow(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, err)
		return
	}

	doc, err := s.printer.Render(r.Context(), f)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// ---- live display ----

func (s *Server) handleDisplayState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.presenter.State())
}

func (s *Server) handleDisplayShow(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string `json:"kind"`
		ID   string `json:"id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	ref := entities.CollectionRef{Kind: entities.CollectionKind(body.Kind), ID: body.ID}
	if err := ref.Validate(); err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.presenter.ShowCollection(r.Context(), ref); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.presenter.State())
}

func (s *Server) handleDisplayNavigate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Action string `json:"action"`
		Target int    `json:"target"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if err := s.presenter.Navigate(body.Action, body.Target); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.presenter.State())
}

func (s *Server) handleDisplayBlank(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	s.presenter.Blank(body.On)
	writeJSON(w, http.StatusOK, s.presenter.State())
}

func (s *Server) handleDisplayCycle(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On bool `json:"on"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	if body.On {
		s.presenter.StartCycle(context.Background())
	} else {
		s.presenter.StopCycle()
	}
	writeJSON(w, http.StatusOK, s.presenter.State())
}

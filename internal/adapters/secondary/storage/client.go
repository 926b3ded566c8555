package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/versely/versely/internal/domain/entities"
	"github.com/versely/versely/internal/domain/ports"
)

// RemoteStore is the device-side store. It keeps a full in-memory copy of
// the library and mirrors every write to the storage server when one is
// reachable. Reads are always served from the local copy so the editor
// stays usable when the server goes away mid-session.
type RemoteStore struct {
	baseURL string
	client  *http.Client
	cache   *MemoryStore
	logger  *slog.Logger
	online  bool
}

// NewRemoteStore builds a store pointed at the given server base URL
// (for example http://localhost:9090). Call Load before first use.
func NewRemoteStore(baseURL string, logger *slog.Logger) *RemoteStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RemoteStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   NewMemoryStore(),
		logger:  logger.With("component", "remote-store"),
	}
}

// Online reports whether the last health probe succeeded.
func (r *RemoteStore) Online() bool {
	return r.online
}

// Load probes the server and, when reachable, pulls the full library into
// the local copy. An unreachable server is not an error: the store starts
// empty and works offline.
func (r *RemoteStore) Load(ctx context.Context) error {
	if !r.probe(ctx) {
		r.logger.Warn("storage server unreachable, working offline", "url", r.baseURL)
		return nil
	}
	r.online = true

	var slides []entities.Slide
	if err := r.getJSON(ctx, "/api/slides", &slides); err != nil {
		return fmt.Errorf("loading slides: %w", err)
	}
	for i := range slides {
		if err := r.cache.UpsertSlide(ctx, &slides[i]); err != nil {
			return err
		}
	}

	for _, kind := range entities.CollectionKinds {
		var cols []entities.Collection
		if err := r.getJSON(ctx, "/api/"+kindPath(kind), &cols); err != nil {
			return fmt.Errorf("loading %s collections: %w", kind, err)
		}
		for i := range cols {
			if err := r.cache.CreateCollection(ctx, &cols[i]); err != nil {
				return err
			}
		}
	}

	var flows []entities.Flow
	if err := r.getJSON(ctx, "/api/flows", &flows); err != nil {
		return fmt.Errorf("loading flows: %w", err)
	}
	for i := range flows {
		if err := r.cache.CreateFlow(ctx, &flows[i]); err != nil {
			return err
		}
	}

	r.logger.Info("library loaded from storage server",
		"slides", len(slides), "flows", len(flows))
	return nil
}

// GetSlide returns a slide from the local copy.
func (r *RemoteStore) GetSlide(ctx context.Context, id string) (*entities.Slide, error) {
	return r.cache.GetSlide(ctx, id)
}

// ListSlides returns every slide in the local copy.
func (r *RemoteStore) ListSlides(ctx context.Context) ([]entities.Slide, error) {
	return r.cache.ListSlides(ctx)
}

// UpsertSlide writes locally and mirrors to the server.
func (r *RemoteStore) UpsertSlide(ctx context.Context, slide *entities.Slide) error {
	if err := r.cache.UpsertSlide(ctx, slide); err != nil {
		return err
	}
	r.mirror(http.MethodPut, "/api/slides/"+url.PathEscape(slide.ID), slide)
	return nil
}

// DeleteSlide removes locally and mirrors to the server.
func (r *RemoteStore) DeleteSlide(ctx context.Context, id string) error {
	if err := r.cache.DeleteSlide(ctx, id); err != nil {
		return err
	}
	r.mirror(http.MethodDelete, "/api/slides/"+url.PathEscape(id), nil)
	return nil
}

// GetCollection returns a collection from the local copy.
func (r *RemoteStore) GetCollection(ctx context.Context, ref entities.CollectionRef) (*entities.Collection, error) {
	return r.cache.GetCollection(ctx, ref)
}

// ListCollections lists collections of a kind from the local copy.
func (r *RemoteStore) ListCollections(ctx context.Context, kind entities.CollectionKind) ([]entities.Collection, error) {
	return r.cache.ListCollections(ctx, kind)
}

// CreateCollection writes locally and mirrors to the server.
func (r *RemoteStore) CreateCollection(ctx context.Context, c *entities.Collection) error {
	if err := r.cache.CreateCollection(ctx, c); err != nil {
		return err
	}
	r.mirror(http.MethodPost, "/api/"+kindPath(c.Kind), c)
	return nil
}

// UpdateCollection writes locally and mirrors to the server.
func (r *RemoteStore) UpdateCollection(ctx context.Context, c *entities.Collection) error {
	if err := r.cache.UpdateCollection(ctx, c); err != nil {
		return err
	}
	r.mirror(http.MethodPut, "/api/"+kindPath(c.Kind)+"/"+url.PathEscape(c.ID), c)
	return nil
}

// DeleteCollection removes locally and mirrors to the server.
func (r *RemoteStore) DeleteCollection(ctx context.Context, ref entities.CollectionRef) error {
	if err := r.cache.DeleteCollection(ctx, ref); err != nil {
		return err
	}
	r.mirror(http.MethodDelete, "/api/"+kindPath(ref.Kind)+"/"+url.PathEscape(ref.ID), nil)
	return nil
}

// GetFlow returns a flow from the local copy.
func (r *RemoteStore) GetFlow(ctx context.Context, id string) (*entities.Flow, error) {
	return r.cache.GetFlow(ctx, id)
}

// ListFlows lists flows from the local copy.
func (r *RemoteStore) ListFlows(ctx context.Context) ([]entities.Flow, error) {
	return r.cache.ListFlows(ctx)
}

// CreateFlow writes locally and mirrors to the server.
func (r *RemoteStore) CreateFlow(ctx context.Context, f *entities.Flow) error {
	if err := r.cache.CreateFlow(ctx, f); err != nil {
		return err
	}
	r.mirror(http.MethodPost, "/api/flows", f)
	return nil
}

// UpdateFlow writes locally and mirrors to the server.
func (r *RemoteStore) UpdateFlow(ctx context.Context, f *entities.Flow) error {
	if err := r.cache.UpdateFlow(ctx, f); err != nil {
		return err
	}
	r.mirror(http.MethodPut, "/api/flows/"+url.PathEscape(f.ID), f)
	return nil
}

// DeleteFlow removes locally and mirrors to the server.
func (r *RemoteStore) DeleteFlow(ctx context.Context, id string) error {
	if err := r.cache.DeleteFlow(ctx, id); err != nil {
		return err
	}
	r.mirror(http.MethodDelete, "/api/flows/"+url.PathEscape(id), nil)
	return nil
}

// GetContent reads text by key, preferring the server so edits made on
// another device are picked up. Falls back to the local copy when the
// server is unreachable.
func (r *RemoteStore) GetContent(ctx context.Context, key string) (string, error) {
	if r.online {
		var body struct {
			Content string `json:"content"`
		}
		err := r.getJSON(ctx, "/api/content/"+url.PathEscape(key), &body)
		if err == nil {
			return body.Content, nil
		}
		r.logger.Warn("remote content read failed, using local copy",
			"key", key, "error", err)
	}
	return r.cache.GetContent(ctx, key)
}

// PutContent writes locally and mirrors to the server.
func (r *RemoteStore) PutContent(ctx context.Context, content *entities.TextContent) error {
	if err := r.cache.PutContent(ctx, content); err != nil {
		return err
	}
	r.mirror(http.MethodPost, "/api/content", content)
	return nil
}

// DeleteContent removes locally and mirrors to the server.
func (r *RemoteStore) DeleteContent(ctx context.Context, key string) error {
	if err := r.cache.DeleteContent(ctx, key); err != nil {
		return err
	}
	r.mirror(http.MethodDelete, "/api/content/"+url.PathEscape(key), nil)
	return nil
}

func (r *RemoteStore) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (r *RemoteStore) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// mirror sends a write to the server without blocking the caller. Slow or
// failed mirror writes never surface to the editor; they are logged and
// the local copy stays authoritative for the session.
func (r *RemoteStore) mirror(method, path string, body interface{}) {
	if !r.online {
		return
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			r.logger.Error("encoding mirror payload", "path", path, "error", err)
			return
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
		if err != nil {
			r.logger.Error("building mirror request", "path", path, "error", err)
			return
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := r.client.Do(req)
		if err != nil {
			r.logger.Warn("mirror write failed", "method", method, "path", path, "error", err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 400 {
			r.logger.Warn("mirror write rejected",
				"method", method, "path", path, "status", resp.StatusCode)
		}
	}()
}

func kindPath(kind entities.CollectionKind) string {
	switch kind {
	case entities.KindSermon:
		return "sermons"
	case entities.KindAssetDeck:
		return "decks"
	default:
		return "songs"
	}
}

var _ ports.Store = (*RemoteStore)(nil)

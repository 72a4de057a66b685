// Package remoteserver is a reference remote authority for notes. It serves
// the HTTP contract the sync client expects and keeps its notes in a
// types.KVStore.
package remoteserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/mesh-intelligence/notesync/internal/kvjson"
	"github.com/mesh-intelligence/notesync/pkg/types"
)

// NotesKey is the persistence key holding the server's notes.
const NotesKey = "remote_notes"

// DefaultPrefix is the path the notes resource is mounted on.
const DefaultPrefix = "/notes"

// maxRequestBody bounds request bodies.
const maxRequestBody = 1 << 20

// Server validation errors.
var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrIDRequired          = errors.New("id is required")
	ErrNoteNotFound        = errors.New("note not found")
)

// Server holds the notes and serves them over HTTP.
type Server struct {
	mu     sync.Mutex
	kv     types.KVStore
	prefix string
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix mounts the notes resource at prefix instead of /notes.
func WithPrefix(prefix string) Option {
	return func(s *Server) { s.prefix = prefix }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithIDGenerator overrides how note ids are minted. The default is UUID v7.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) { s.newID = fn }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// New returns a Server storing notes in kv.
func New(kv types.KVStore, opts ...Option) *Server {
	s := &Server{
		kv:     kv,
		prefix: DefaultPrefix,
		now:    time.Now,
		newID:  func() string { return uuid.Must(uuid.NewV7()).String() },
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router: GET /health plus list, create, update and
// delete on the notes resource.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get(s.prefix, s.handleList)
	r.Post(s.prefix, s.handleCreate)
	r.Post(s.prefix+"/update", s.handleUpdate)
	r.Delete(s.prefix, s.handleDelete)
	return r
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	notes, err := s.load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.reply(w, http.StatusOK, notes, "")
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in types.CreatePayload
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := validate(in.Title, in.Description); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	now := s.now().UTC()
	n := types.RemoteNote{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.save(r.Context(), append(notes, n)); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("note created", "id", n.ID)
	s.reply(w, http.StatusCreated, n, "note created")
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var in types.UpdatePayload
	if err := decodeBody(w, r, &in); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if in.ID == "" {
		s.fail(w, http.StatusBadRequest, ErrIDRequired)
		return
	}
	if err := validate(in.Title, in.Description); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	i := indexOf(notes, in.ID)
	if i < 0 {
		s.fail(w, http.StatusNotFound, ErrNoteNotFound)
		return
	}
	notes[i].Title = in.Title
	notes[i].Description = in.Description
	notes[i].Image = in.Image
	if now := s.now().UTC(); now.After(notes[i].UpdatedAt) {
		notes[i].UpdatedAt = now
	}
	if err := s.save(r.Context(), notes); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("note updated", "id", in.ID)
	s.reply(w, http.StatusOK, notes[i], "note updated")
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var id string
	if err := runtime.BindQueryParameter("form", true, true, "id", r.URL.Query(), &id); err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	if id == "" {
		s.fail(w, http.StatusBadRequest, ErrIDRequired)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.load(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	i := indexOf(notes, id)
	if i < 0 {
		s.fail(w, http.StatusNotFound, ErrNoteNotFound)
		return
	}
	notes = append(notes[:i], notes[i+1:]...)
	if err := s.save(r.Context(), notes); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.Info("note deleted", "id", id)
	s.reply(w, http.StatusOK, nil, "note deleted")
}

func (s *Server) load(ctx context.Context) ([]types.RemoteNote, error) {
	return kvjson.Load[types.RemoteNote](ctx, s.kv, NotesKey)
}

func (s *Server) save(ctx context.Context, notes []types.RemoteNote) error {
	return kvjson.Save(ctx, s.kv, NotesKey, notes)
}

func (s *Server) reply(w http.ResponseWriter, status int, data any, msg string) {
	env := types.Envelope{Message: msg, Success: true}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			s.fail(w, http.StatusInternalServerError, err)
			return
		}
		env.Data = raw
	}
	writeJSON(w, status, env)
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, types.Envelope{Message: err.Error(), Success: false})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody reads a JSON body, or form fields when the request is a form
// submission.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "multipart/form-data", "application/x-www-form-urlencoded":
		if err := r.ParseMultipartForm(maxRequestBody); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return err
		}
		fields := map[string]string{}
		for _, k := range []string{"id", "title", "description", "image"} {
			if v := r.FormValue(k); v != "" {
				fields[k] = v
			}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dst)
	default:
		return json.NewDecoder(r.Body).Decode(dst)
	}
}

func validate(title, description string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if description == "" {
		return ErrDescriptionRequired
	}
	return nil
}

func indexOf(notes []types.RemoteNote, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

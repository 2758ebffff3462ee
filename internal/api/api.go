// Package api serves the library and accepts navigation events over HTTP,
// so a browser userscript can report the pages it visits.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/brogergvhs/lntracker/internal/library"
	"github.com/brogergvhs/lntracker/internal/providers"
	"github.com/brogergvhs/lntracker/internal/ui"
)

const maxBody = 32 << 20

type Server struct {
	lib     *library.Accessor
	router  *providers.Router
	fetcher providers.Fetcher
	log     *ui.Logger
	seen    providers.Repeats
	now     func() time.Time
}

type Options struct {
	Library        *library.Accessor
	Router         *providers.Router
	Fetcher        providers.Fetcher
	Log            *ui.Logger
	AllowedOrigins []string
}

// New returns the HTTP handler. A nil Fetcher means /visit requires html.
func New(opts Options) http.Handler {
	s := &Server{
		lib:     opts.Library,
		router:  opts.Router,
		fetcher: opts.Fetcher,
		log:     opts.Log,
		now:     time.Now,
	}
	if s.log == nil {
		s.log = ui.Discard()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Origin", "Content-Type"},
			AllowCredentials: false,
		}))
	}

	r.Post("/visit", s.visit)
	r.Route("/library", func(r chi.Router) {
		r.Get("/", s.list)
		r.Get("/counts", s.counts)
		r.Put("/{id}/status", s.setStatus)
		r.Delete("/{id}", s.remove)
	})
	r.Get("/export", s.export)
	r.Post("/import", s.importLibrary)

	return r
}

type visitRequest struct {
	URL  string `json:"url"`
	HTML string `json:"html"`
}

type visitResponse struct {
	Site     string `json:"site"`
	Handled  bool   `json:"handled"`
	Repeated bool   `json:"repeated,omitempty"`
}

func (s *Server) visit(w http.ResponseWriter, r *http.Request) {
	var req visitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	u, err := providers.ParseURL(req.URL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	site, ok := s.router.Lookup(u.Hostname())
	if !ok {
		writeJSON(w, http.StatusOK, visitResponse{})
		return
	}
	if s.seen.Repeat(u.String()) {
		writeJSON(w, http.StatusOK, visitResponse{Site: site.ID, Repeated: true})
		return
	}

	var page providers.Page
	switch {
	case req.HTML != "":
		page, err = providers.NewPage(req.URL, strings.NewReader(req.HTML))
	case s.fetcher != nil:
		page, err = s.fetcher.Fetch(r.Context(), req.URL)
	default:
		err = errors.New("html is required")
	}
	if err != nil {
		s.seen.Forget(u.String())
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	id, handled := s.router.Dispatch(r.Context(), page)
	writeJSON(w, http.StatusOK, visitResponse{Site: id, Handled: handled})
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	order, err := library.ParseSort(q.Get("sort"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lib, err := s.lib.Library(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lib.Select(library.Query{
		Text:   q.Get("q"),
		Status: q.Get("status"),
		Sort:   order,
	}))
}

func (s *Server) counts(w http.ResponseWriter, r *http.Request) {
	lib, err := s.lib.Library(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lib.Counts())
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody)).Decode(&body); err != nil || strings.TrimSpace(body.Status) == "" {
		writeError(w, http.StatusBadRequest, "body must be {\"status\": \"...\"}")
		return
	}

	e, err := s.lib.SetStatus(r.Context(), entryID(r), body.Status)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	if err := s.lib.Delete(r.Context(), entryID(r)); err != nil {
		s.fail(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	file, err := s.lib.Export(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", library.ExportFilename(s.now())))
	writeJSON(w, http.StatusOK, file)
}

type importResponse struct {
	Mode    library.ImportMode `json:"mode"`
	Entries int                `json:"entries"`
}

func (s *Server) importLibrary(w http.ResponseWriter, r *http.Request) {
	mode, err := library.ParseImportMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	lib, err := s.lib.Import(r.Context(), payload, mode)
	if err != nil {
		s.fail(w, err)
		return
	}

	writeJSON(w, http.StatusOK, importResponse{Mode: mode, Entries: len(lib)})
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, library.ErrUnrecognizedImport):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Errorf("api: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func entryID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}

	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

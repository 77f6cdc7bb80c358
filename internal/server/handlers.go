package server

// handlers.go contains the JSON API: the parsed diff, generated-status
// lookups and review comments.

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/diffdeck/diffdeck/internal/errors"
	"github.com/diffdeck/diffdeck/internal/storage"
)

// errorBody is the JSON shape of API failures.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{
		Code:    apperrors.GetCode(err),
		Message: apperrors.GetMessage(err),
	})
}

// handleDiff serves the parsed diff for the configured (or overridden)
// comparison. Responses are cached until the watcher invalidates them.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	patch := s.patch
	s.mu.Unlock()
	if patch != nil {
		writeJSON(w, http.StatusOK, patch)
		return
	}

	opts := s.opts
	q := r.URL.Query()
	if v := q.Get("target"); v != "" {
		opts.Target = v
	}
	if v := q.Get("base"); v != "" {
		opts.Base = v
	}
	if v := q.Get("ignoreWhitespace"); v != "" {
		opts.IgnoreWhitespace = v == "true" || v == "1"
	}

	key := opts.Target + "\x00" + opts.Base + "\x00" + strconv.FormatBool(opts.IgnoreWhitespace)

	s.mu.Lock()
	if s.cached != nil && s.cacheKey == key {
		resp := s.cached
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, resp)
		return
	}
	gen := s.gen
	s.mu.Unlock()

	resp, err := s.parser.ParseDiff(r.Context(), opts.Target, opts.Base, opts.IgnoreWhitespace)
	if err != nil {
		log.Printf("[Server] Diff failed: %v", err)
		writeError(w, statusForCode(apperrors.GetCode(err)), err)
		return
	}

	// An invalidation that fired while this parse was in flight means the
	// result predates the change. Serve it, but leave the cache empty so
	// the reload-triggered re-request derives a fresh one.
	s.mu.Lock()
	if s.gen == gen {
		s.cached = resp
		s.cacheKey = key
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleGeneratedStatus answers whether one file is generated, for lazy
// per-file checks the eager path-based pass couldn't decide.
func (s *Server) handleGeneratedStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest,
			apperrors.New(apperrors.CodeDiffParseFailed, "missing required query parameter: path"))
		return
	}
	ref := r.URL.Query().Get("ref")

	status := s.parser.GeneratedStatus(r.Context(), path, ref)
	writeJSON(w, http.StatusOK, status)
}

// handleComments serves GET (list, optional ?file=) and POST (create)
// on /api/comments.
func (s *Server) handleComments(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "comments are disabled", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		comments, err := s.store.ListComments(r.URL.Query().Get("file"))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, comments)

	case http.MethodPost:
		var c storage.Comment
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeError(w, http.StatusBadRequest,
				apperrors.Wrap(apperrors.CodeStorageQueryFailed, "invalid comment body", err))
			return
		}
		if c.File == "" || c.Body == "" {
			writeError(w, http.StatusBadRequest,
				apperrors.New(apperrors.CodeStorageQueryFailed, "comment requires file and body"))
			return
		}
		if err := s.store.SaveComment(&c); err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusCreated, &c)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleCommentByID serves DELETE and PATCH (resolve/unresolve) on
// /api/comments/{id}.
func (s *Server) handleCommentByID(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "comments are disabled", http.StatusNotFound)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/comments/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if err := s.store.DeleteComment(id); err != nil {
			writeError(w, statusForCode(apperrors.GetCode(err)), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case http.MethodPatch:
		var body struct {
			Resolved bool `json:"resolved"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest,
				apperrors.Wrap(apperrors.CodeStorageQueryFailed, "invalid patch body", err))
			return
		}
		if err := s.store.SetResolved(id, body.Resolved); err != nil {
			writeError(w, statusForCode(apperrors.GetCode(err)), err)
			return
		}
		c, err := s.store.GetComment(id)
		if err != nil {
			writeError(w, statusForCode(apperrors.GetCode(err)), err)
			return
		}
		writeJSON(w, http.StatusOK, c)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// statusForCode maps error codes onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case apperrors.CodeStorageNotFound:
		return http.StatusNotFound
	case apperrors.CodeGitNotARepo:
		return http.StatusBadRequest
	case apperrors.CodeGitOutputTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

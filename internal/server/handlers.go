package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tmcc-dev/designform/pkg/catalogue"
	"github.com/tmcc-dev/designform/pkg/design"
	"github.com/tmcc-dev/designform/pkg/errtree"
	"github.com/tmcc-dev/designform/pkg/render"
	"github.com/tmcc-dev/designform/pkg/validation"
)

type listResponse[T any] struct {
	Data []T `json:"data"`
}

type acceptedResponse struct {
	Valid         bool   `json:"valid"`
	VersionString string `json:"versionString"`
}

type rejectedResponse struct {
	Valid  bool               `json:"valid"`
	Errors *errtree.Tree      `json:"errors"`
	Issues []validation.Issue `json:"issues"`
}

type problem struct {
	Error string `json:"error"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeProblem(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	entries := s.catalogue.Search(catalogue.Query{
		Text:     query.Get("q"),
		Category: query.Get("category"),
		Limit:    limit,
	})
	if entries == nil {
		entries = []catalogue.Entry{}
	}
	writeJSON(w, http.StatusOK, listResponse[catalogue.Entry]{Data: entries})
}

func (s *Server) handleDesign(w http.ResponseWriter, r *http.Request) {
	entry, err := s.catalogue.Get(r.PathValue("slug"))
	if errors.Is(err, catalogue.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "design not found")
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleNewPage(w http.ResponseWriter, r *http.Request) {
	body, err := s.page.Render(r.Context(), render.View{
		Submission: design.NewSubmission(),
		Action:     "/api/designs",
		Categories: s.categoryNames(),
	})
	if err != nil {
		s.logger.Error("render page", zap.Error(err))
		writeProblem(w, http.StatusInternalServerError, "render failed")
		return
	}
	w.Header().Set("Content-Type", s.page.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	s.check(w, r, http.StatusOK)
}

// handleSubmit validates like handleValidate and hands an accepted record to
// the sink without waiting for it.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sub, versions, ok := s.check(w, r, http.StatusAccepted)
	if !ok {
		return
	}
	s.deliver(r.Context(), sub, versions)
}

// check decodes and validates the posted record and writes the response:
// accepted when valid, 422 with the error tree otherwise. It reports whether
// the record passed.
func (s *Server) check(w http.ResponseWriter, r *http.Request, accepted int) (design.Submission, string, bool) {
	sub, err := decodeSubmission(w, r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, err.Error())
		return design.Submission{}, "", false
	}
	result, err := validation.ValidateWith(r.Context(), s.schema, sub)
	if err != nil {
		writeProblem(w, http.StatusServiceUnavailable, err.Error())
		return design.Submission{}, "", false
	}
	if !result.Valid {
		writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{
			Errors: errtree.Map(result.Issues),
			Issues: result.Issues,
		})
		return design.Submission{}, "", false
	}

	versions := design.VersionString(sub.Versions)
	writeJSON(w, accepted, acceptedResponse{Valid: true, VersionString: versions})
	return sub, versions, true
}

func (s *Server) deliver(ctx context.Context, sub design.Submission, versions string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.deliveries.Add(1)
	go func() {
		defer s.deliveries.Done()
		defer cancel()
		if err := s.sink.Accept(ctx, sub, versions); err != nil {
			s.logger.Warn("submission sink failed", zap.String("title", sub.Title), zap.Error(err))
		}
	}()
}

func (s *Server) categoryNames() []string {
	tree := s.catalogue.Categories()
	names := make([]string, 0, len(tree))
	for _, c := range tree {
		names = append(names, c.Name)
	}
	return names
}

func decodeSubmission(w http.ResponseWriter, r *http.Request) (design.Submission, error) {
	var sub design.Submission
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&sub); err != nil {
		if errors.Is(err, io.EOF) {
			return sub, errors.New("request body is empty")
		}
		return sub, fmt.Errorf("invalid submission payload: %w", err)
	}
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeProblem(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, problem{Error: message})
}

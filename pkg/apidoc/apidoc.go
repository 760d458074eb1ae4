// Package apidoc embeds the OpenAPI description of the HTTP API and serves it
// as JSON.
package apidoc

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var document []byte

// Operation is one documented method and path.
type Operation struct {
	ID     string
	Method string
	Path   string
}

// Raw returns a copy of the embedded YAML document.
func Raw() []byte {
	return append([]byte(nil), document...)
}

// Load parses and validates the embedded document.
func Load(ctx context.Context) (*openapi3.T, error) {
	return Parse(ctx, document)
}

// Parse loads an OpenAPI document from raw YAML or JSON. External references
// are rejected.
func Parse(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(raw) == 0 {
		return nil, errors.New("apidoc: empty document")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("apidoc: load: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("apidoc: document has no paths")
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("apidoc: validate: %w", err)
	}
	return doc, nil
}

// Operations lists every documented operation sorted by path, then method.
func Operations(doc *openapi3.T) []Operation {
	if doc == nil || doc.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			entry := Operation{Method: strings.ToUpper(method), Path: path}
			if op != nil {
				entry.ID = op.OperationID
			}
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Method < out[j].Method
	})
	return out
}

// Handler serves doc as JSON. The document is encoded once.
func Handler(doc *openapi3.T) (http.Handler, error) {
	if doc == nil {
		return nil, errors.New("apidoc: document is required")
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("apidoc: encode: %w", err)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "public, max-age=300")
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(body)
	}), nil
}

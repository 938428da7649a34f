package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi"
)

// LoadOpenAPI parses the API document and validates it against the OpenAPI
// 3 schema.
func LoadOpenAPI(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// UndocumentedRoutes lists "METHOD path" for every API route mounted on the
// router that has no matching operation in doc.
func UndocumentedRoutes(doc *openapi3.T, router chi.Routes) ([]string, error) {
	var missing []string
	err := chi.Walk(router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if !strings.HasPrefix(route, "/api/") {
			return nil
		}
		if len(route) > 1 {
			route = strings.TrimSuffix(route, "/")
		}

		item := doc.Paths.Find(route)
		if item == nil || item.GetOperation(method) == nil {
			missing = append(missing, method+" "+route)
		}
		return nil
	})
	return missing, err
}

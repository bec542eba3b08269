package httpadapter

import (
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

func TestOpenAPIDocumentIsValid(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		t.Fatalf("load openapi document: %v", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		t.Fatalf("validate openapi document: %v", err)
	}
}

func TestOpenAPIDocumentCoversRoutes(t *testing.T) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		t.Fatalf("load openapi document: %v", err)
	}

	documented := make(map[string]bool)
	for path := range doc.Paths.Map() {
		documented[path] = true
	}

	routes := []string{
		"/healthz",
		"/v1/openapi.yaml",
		"/v1/files",
		"/v1/steps",
		"/v1/summary",
		"/v1/writer-context",
		"/v1/pipeline/step",
		"/v1/pipeline/run",
		"/v1/pipeline/run-async",
		"/v1/pipeline/files",
		"/v1/artifacts/{step}",
		"/v1/itinerary/run",
		"/v1/itinerary/latest",
		"/v1/itinerary/context",
		"/v1/itinerary/context/latest",
		"/v1/bookings/trip/extract",
		"/v1/bookings/trip",
		"/v1/bookings/generate",
		"/v1/bookings/latest",
	}
	for _, route := range routes {
		if !documented[route] {
			t.Errorf("route %s is not documented", route)
		}
	}
	for path := range documented {
		if strings.HasPrefix(path, "/v1/") || path == "/healthz" {
			continue
		}
		t.Errorf("documented path %s has no route", path)
	}
}

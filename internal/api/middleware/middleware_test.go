package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/emicklei/go-restful/v3"
)

func newContainer(route restful.RouteFunction) *restful.Container {
	container := restful.NewContainer()
	container.Filter(Logger)
	container.Filter(RecoverPanic)

	ws := new(restful.WebService)
	ws.Path("/test").Produces(restful.MIME_JSON)
	ws.Route(ws.GET("").To(route))
	container.Add(ws)
	return container
}

func TestLogger_GeneratesRequestID(t *testing.T) {
	var seen string
	container := newContainer(func(req *restful.Request, resp *restful.Response) {
		seen = RequestID(req)
		resp.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	container.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	header := rec.Header().Get(RequestIDHeader)
	if header == "" {
		t.Fatal("Expected a generated X-Request-ID header")
	}
	if seen != header {
		t.Errorf("Expected handler to see request id %q, got %q", header, seen)
	}
}

func TestLogger_EchoesRequestID(t *testing.T) {
	container := newContainer(func(req *restful.Request, resp *restful.Response) {
		resp.WriteHeader(http.StatusNoContent)
	})

	httpReq := httptest.NewRequest(http.MethodGet, "/test", nil)
	httpReq.Header.Set(RequestIDHeader, "req-123")

	rec := httptest.NewRecorder()
	container.ServeHTTP(rec, httpReq)

	if got := rec.Header().Get(RequestIDHeader); got != "req-123" {
		t.Errorf("Expected X-Request-ID 'req-123', got %q", got)
	}
}

func TestRecoverPanic(t *testing.T) {
	container := newContainer(func(req *restful.Request, resp *restful.Response) {
		panic("boom")
	})

	rec := httptest.NewRecorder()
	container.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != "internal server error" {
		t.Errorf("Expected 'internal server error', got %q", body.Error)
	}
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestLimits_BodySize(t *testing.T) {
	maxSize := int64(100) // 100 bytes

	handler := RequestLimits(maxSize, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))

	tests := []struct {
		name       string
		bodySize   int
		wantStatus int
	}{
		{name: "small body - accepted", bodySize: 50, wantStatus: http.StatusOK},
		{name: "exact limit - accepted", bodySize: 100, wantStatus: http.StatusOK},
		{name: "too large - rejected", bodySize: 150, wantStatus: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := bytes.Repeat([]byte("a"), tt.bodySize)
			req := httptest.NewRequest("DELETE", "/test", bytes.NewReader(body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("got status %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequestLimits_Timeout(t *testing.T) {
	var deadline time.Time
	var hasDeadline bool

	handler := RequestLimits(0, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, hasDeadline = r.Context().Deadline()
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/test", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !hasDeadline {
		t.Fatal("expected request context to carry a deadline")
	}
	if time.Until(deadline) > time.Minute {
		t.Errorf("deadline %v is further than the configured timeout", deadline)
	}
}

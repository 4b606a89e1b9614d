package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type switchUnlocker bool

func (s *switchUnlocker) Unlocked() bool { return bool(*s) }

func TestRequireUnlocked(t *testing.T) {
	var open switchUnlocker
	handler := RequireUnlocked(&open)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 while locked, got %d", w.Code)
	}

	open = true
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/state", nil))
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected pass-through once unlocked, got %d", w.Code)
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestRequestID_GeneratesNew(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid == "" {
			t.Error("expected request_id to be generated")
		}
		return c.String(http.StatusOK, "ok")
	}

	h := RequestID()(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("expected X-Request-ID response header")
	}
}

func TestRequestID_PreservesExisting(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "my-custom-id")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		rid := c.Get("request_id").(string)
		if rid != "my-custom-id" {
			t.Errorf("expected my-custom-id, got %s", rid)
		}
		return c.String(http.StatusOK, "ok")
	}

	h := RequestID()(handler)
	h(c)

	if rec.Header().Get(RequestIDHeader) != "my-custom-id" {
		t.Errorf("expected my-custom-id in response header, got %s", rec.Header().Get(RequestIDHeader))
	}
}

func TestLogger_PassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cds-services", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}

	if err := Logger(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRecovery_CatchesPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	logger := zerolog.New(os.Stderr)
	handler := func(c echo.Context) error {
		panic("boom")
	}

	if err := Recovery(logger)(handler)(c); err != nil {
		t.Fatalf("unexpected error after recovered panic: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 after panic, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("expected OperationOutcome body, got %s", rec.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	if err := SecurityHeaders()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected nosniff header")
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("expected no-store cache control")
	}
}

func TestRequestTimeout_Expires(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/cds-services/medication-prescribe", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		select {
		case <-c.Request().Context().Done():
			return c.Request().Context().Err()
		case <-time.After(2 * time.Second):
			return c.String(http.StatusOK, "too late")
		}
	}

	if err := RequestTimeout(50 * time.Millisecond)(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Errorf("expected 504, got %d", rec.Code)
	}
}

func TestRequestTimeout_CommittedResponseUntouched(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/cds-services", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	started := make(chan struct{})
	handler := func(c echo.Context) error {
		if err := c.String(http.StatusOK, "partial"); err != nil {
			return err
		}
		close(started)
		<-c.Request().Context().Done()
		return nil
	}

	h := RequestTimeout(30 * time.Millisecond)(handler)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	<-started

	if rec.Code != http.StatusOK {
		t.Errorf("a committed response must keep its status, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "OperationOutcome") {
		t.Errorf("504 body appended to a committed response: %s", rec.Body.String())
	}
}

func TestInMemoryCacheStore_Expiry(t *testing.T) {
	store := NewInMemoryCacheStore()
	store.Set("k", []byte("v"), 10*time.Millisecond)

	if v, ok := store.Get("k"); !ok || string(v) != "v" {
		t.Fatal("expected fresh entry to be returned")
	}

	time.Sleep(20 * time.Millisecond)
	if _, ok := store.Get("k"); ok {
		t.Error("expected expired entry to be evicted")
	}
}

func TestDiscoveryCache_ServesSecondRequestFromStore(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"hello": "world"})
	}
	mw := DiscoveryCache(store, time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/cds-services", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
	if calls != 1 {
		t.Errorf("expected handler to run once, ran %d times", calls)
	}
}

func TestDiscoveryCache_SkipsPost(t *testing.T) {
	e := echo.New()
	store := NewInMemoryCacheStore()
	calls := 0
	handler := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"cards": ""})
	}
	mw := DiscoveryCache(store, time.Minute)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/cds-services/patient-view", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if err := mw(handler)(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 2 {
		t.Errorf("expected POSTs to bypass cache, handler ran %d times", calls)
	}
}

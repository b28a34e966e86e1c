package fhir

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_Get(t *testing.T) {
	var gotPath, gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", fhirJSON)
		w.Write([]byte(`{"resourceType":"Patient","id":"pat-1"}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	payload, err := c.Get(context.Background(), srv.URL, "Patient/pat-1", "Bearer", "tok-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/Patient/pat-1" {
		t.Errorf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("unexpected authorization %q", gotAuth)
	}
	if gotAccept != fhirJSON {
		t.Errorf("unexpected accept %q", gotAccept)
	}

	m, ok := payload.(map[string]any)
	if !ok || m["id"] != "pat-1" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestClient_Get_NoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.Get(context.Background(), srv.URL, "Patient/pat-1", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "" {
		t.Errorf("expected no authorization header, got %q", gotAuth)
	}
}

func TestClient_Get_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	_, err := c.Get(context.Background(), srv.URL, "Patient/missing", "", "")
	if err == nil {
		t.Fatal("expected an error for 404")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Errorf("error should carry the status, got %v", err)
	}
}

func TestClient_Get_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(20 * time.Millisecond)
	if _, err := c.Get(context.Background(), srv.URL, "Patient/pat-1", "", ""); err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestClient_Get_SearchPath(t *testing.T) {
	var gotURI string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.URL.RequestURI()
		w.Write([]byte(`{"resourceType":"Bundle","entry":[]}`))
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	if _, err := c.Get(context.Background(), srv.URL+"/", "Condition?patient=pat-1&clinical-status=active", "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotURI != "/Condition?patient=pat-1&clinical-status=active" {
		t.Errorf("unexpected uri %s", gotURI)
	}
}

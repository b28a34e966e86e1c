package cds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type stubUpstream struct {
	mu        sync.Mutex
	responses map[string]any
	errs      map[string]error
	paths     []string
}

func (s *stubUpstream) Get(ctx context.Context, base, path, tokenType, accessToken string) (any, error) {
	s.mu.Lock()
	s.paths = append(s.paths, path)
	s.mu.Unlock()
	if err, ok := s.errs[path]; ok {
		return nil, err
	}
	if v, ok := s.responses[path]; ok {
		return v, nil
	}
	return map[string]any{"resourceType": "Bundle", "entry": []any{}}, nil
}

func patientViewRequest() *HookRequest {
	return &HookRequest{
		Hook:         HookPatientView,
		HookInstance: uuid.New().String(),
		FHIRServer:   "https://fhir.example.org",
		Context: map[string]any{
			"userId":    "Practitioner/123",
			"patientId": "pat-1",
		},
	}
}

func TestResolver_UnknownService(t *testing.T) {
	r := NewResolver(&stubUpstream{})
	result := r.Resolve(context.Background(), patientViewRequest(), "no-such-service")

	if result.Complete {
		t.Error("unknown service must not resolve complete")
	}
	if len(result.Data) != 0 {
		t.Errorf("expected empty data, got %v", result.Data)
	}
	if _, ok := result.Errors["service"]; !ok {
		t.Fatalf("expected a service error, got %v", result.Errors)
	}
}

func TestResolver_CallerSuppliedVerbatim(t *testing.T) {
	upstream := &stubUpstream{}
	r := NewResolver(upstream)

	supplied := map[string]any{"resourceType": "Patient", "id": "pat-1"}
	req := patientViewRequest()
	req.Prefetch = map[string]any{
		"patient":      supplied,
		"conditions":   map[string]any{"resourceType": "Bundle"},
		"medications":  map[string]any{"resourceType": "Bundle"},
		"observations": map[string]any{"resourceType": "Bundle"},
	}

	result := r.Resolve(context.Background(), req, "patient-safety-review")
	if !result.Complete {
		t.Error("all keys supplied, expected complete")
	}
	if len(upstream.paths) != 0 {
		t.Errorf("nothing should be fetched, got %v", upstream.paths)
	}
	if got, _ := result.Data["patient"].(map[string]any); got["id"] != "pat-1" {
		t.Errorf("supplied value must pass through verbatim, got %v", result.Data["patient"])
	}
}

func TestResolver_NoFHIRServer(t *testing.T) {
	upstream := &stubUpstream{}
	r := NewResolver(upstream)

	req := patientViewRequest()
	req.FHIRServer = ""

	result := r.Resolve(context.Background(), req, "patient-safety-review")
	if result.Complete {
		t.Error("missing keys without a server must not be complete")
	}
	if len(result.Errors) != 0 {
		t.Errorf("declining to grant a server is not an error, got %v", result.Errors)
	}
	if len(result.Data) != 4 {
		t.Fatalf("expected all 4 declared keys present, got %d", len(result.Data))
	}
	for key, v := range result.Data {
		if v != nil {
			t.Errorf("key %s should be null, got %v", key, v)
		}
	}
	if len(upstream.paths) != 0 {
		t.Errorf("nothing should be fetched, got %v", upstream.paths)
	}
}

func TestResolver_FetchesMissingKeys(t *testing.T) {
	upstream := &stubUpstream{
		responses: map[string]any{
			"Patient/pat-1": map[string]any{"resourceType": "Patient", "id": "pat-1"},
		},
	}
	r := NewResolver(upstream)

	result := r.Resolve(context.Background(), patientViewRequest(), "patient-safety-review")
	if !result.Complete {
		t.Fatalf("expected complete, errors: %v", result.Errors)
	}
	if len(upstream.paths) != 4 {
		t.Fatalf("expected 4 fetches, got %v", upstream.paths)
	}
	for _, p := range upstream.paths {
		if strings.Contains(p, "{{") {
			t.Errorf("template was not expanded: %s", p)
		}
		if strings.Contains(p, "patient=") && !strings.Contains(p, "patient=pat-1") {
			t.Errorf("patientId not substituted: %s", p)
		}
	}
}

func TestResolver_OneKeyFails(t *testing.T) {
	upstream := &stubUpstream{
		errs: map[string]error{
			"Patient/pat-1": fmt.Errorf("unexpected status 404"),
		},
	}
	r := NewResolver(upstream)

	result := r.Resolve(context.Background(), patientViewRequest(), "patient-safety-review")
	if result.Complete {
		t.Error("a failed key must leave the result incomplete")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly 1 error, got %v", result.Errors)
	}
	if result.Data["patient"] != nil {
		t.Error("the failed key must be null")
	}
	nonNil := 0
	for _, v := range result.Data {
		if v != nil {
			nonNil++
		}
	}
	if nonNil != 3 {
		t.Errorf("the other 3 keys must still resolve, got %d non-nil", nonNil)
	}
}

func TestBuildHookContext_WarningPerFailedKey(t *testing.T) {
	upstream := &stubUpstream{
		errs: map[string]error{
			"Patient/pat-1": fmt.Errorf("unexpected status 404"),
		},
	}
	r := NewResolver(upstream)

	hc := r.BuildHookContext(context.Background(), patientViewRequest(), "patient-safety-review")
	if len(hc.Warnings) != 2 {
		t.Fatalf("expected the fetch warning plus the summary line, got %v", hc.Warnings)
	}
	if !strings.HasPrefix(hc.Warnings[0], "Failed to fetch patient:") {
		t.Errorf("unexpected first warning %q", hc.Warnings[0])
	}
	if !strings.Contains(hc.Warnings[1], "patient") {
		t.Errorf("summary line should name the missing key, got %q", hc.Warnings[1])
	}
}

func TestBuildHookContext_CleanResolveNoWarnings(t *testing.T) {
	r := NewResolver(&stubUpstream{})
	hc := r.BuildHookContext(context.Background(), patientViewRequest(), "patient-safety-review")
	if len(hc.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", hc.Warnings)
	}
}

func TestExpandTemplate_MissingFieldEmpty(t *testing.T) {
	req := &HookRequest{Context: map[string]any{"patientId": "pat-1"}}
	got := expandTemplate("Encounter/{{context.encounterId}}?patient={{context.patientId}}", req)
	if got != "Encounter/?patient=pat-1" {
		t.Fatalf("unexpected expansion %q", got)
	}
}

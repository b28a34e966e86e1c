package cds

import (
	"testing"

	"github.com/google/uuid"
)

func orderSignDef() ServiceDefinition {
	def, _ := LookupService("order-safety-check")
	return def
}

func validOrderSignRequest() *HookRequest {
	return &HookRequest{
		Hook:         HookOrderSign,
		HookInstance: uuid.New().String(),
		Context: map[string]any{
			"userId":    "Practitioner/123",
			"patientId": "pat-1",
			"draftOrders": map[string]any{
				"resourceType": "Bundle",
				"entry":        []any{},
			},
		},
	}
}

func TestValidateRequest_Valid(t *testing.T) {
	if v := ValidateRequest(validOrderSignRequest(), orderSignDef()); len(v) != 0 {
		t.Fatalf("expected no violations, got %v", v)
	}
}

func TestValidateRequest_HookInstanceMustBeV4(t *testing.T) {
	req := validOrderSignRequest()
	// UUID-shaped but version 1.
	req.HookInstance = "12345678-1234-1234-1234-123456789abc"

	v := ValidateRequest(req, orderSignDef())
	if _, ok := v["hookInstance"]; !ok {
		t.Fatalf("expected a hookInstance violation, got %v", v)
	}
}

func TestValidateRequest_HookMismatch(t *testing.T) {
	req := validOrderSignRequest()
	req.Hook = HookPatientView

	v := ValidateRequest(req, orderSignDef())
	if _, ok := v["hook"]; !ok {
		t.Fatalf("expected a hook violation, got %v", v)
	}
}

func TestValidateRequest_MissingContextFields(t *testing.T) {
	req := validOrderSignRequest()
	delete(req.Context, "userId")
	delete(req.Context, "patientId")

	v := ValidateRequest(req, orderSignDef())
	if len(v) != 2 {
		t.Fatalf("expected violations for userId and patientId, got %v", v)
	}
}

func TestValidateRequest_DraftOrdersMustBeBundle(t *testing.T) {
	req := validOrderSignRequest()
	req.Context["draftOrders"] = "not a bundle"

	v := ValidateRequest(req, orderSignDef())
	if _, ok := v["context.draftOrders"]; !ok {
		t.Fatalf("expected a draftOrders violation, got %v", v)
	}
}

func TestValidateRequest_BadFHIRServer(t *testing.T) {
	req := validOrderSignRequest()
	req.FHIRServer = "ftp://fhir.example.org"

	v := ValidateRequest(req, orderSignDef())
	if _, ok := v["fhirServer"]; !ok {
		t.Fatalf("expected a fhirServer violation, got %v", v)
	}
}

func TestValidateRequest_IncompleteAuthorization(t *testing.T) {
	req := validOrderSignRequest()
	req.FHIRServer = "https://fhir.example.org"
	req.FHIRAuthorization = &FHIRAuthorization{
		AccessToken: "token",
		TokenType:   "Bearer",
	}

	v := ValidateRequest(req, orderSignDef())
	if _, ok := v["fhirAuthorization"]; !ok {
		t.Fatalf("expected a fhirAuthorization violation, got %v", v)
	}
}

func TestValidateRequest_CollectsAllViolations(t *testing.T) {
	req := &HookRequest{Hook: "made-up-hook", HookInstance: "nope"}

	v := ValidateRequest(req, orderSignDef())
	if len(v) < 3 {
		t.Fatalf("expected violations for hookInstance, hook and context, got %v", v)
	}
}

func TestLooksLikeUUID(t *testing.T) {
	if !looksLikeUUID("12345678-1234-1234-1234-123456789abc") {
		t.Error("8-4-4-4-12 hex should pass the loose check regardless of version")
	}
	if looksLikeUUID("12345678123412341234123456789abc") {
		t.Error("undashed hex must fail")
	}
	if looksLikeUUID("") {
		t.Error("empty must fail")
	}
}

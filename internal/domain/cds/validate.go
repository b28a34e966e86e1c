package cds

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/google/uuid"
)

// looksLikeUUID accepts any 8-4-4-4-12 hex-dash string. Card and suggestion
// ids are checked against this loose shape; only hookInstance gets the
// strict version-4 check.
var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

func looksLikeUUID(s string) bool {
	return uuidShape.MatchString(s)
}

func isUUIDv4(s string) bool {
	if !looksLikeUUID(s) {
		return false
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return u.Version() == 4
}

// isBundleShaped reports whether a context value looks like a FHIR Bundle.
func isBundleShaped(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	rt, _ := m["resourceType"].(string)
	return rt == "Bundle"
}

// ValidateRequest checks the structural invariants the decision core assumes.
// It returns a map of field path to violation message, empty when the
// request is valid.
func ValidateRequest(req *HookRequest, def ServiceDefinition) map[string]string {
	violations := map[string]string{}

	if !isUUIDv4(req.HookInstance) {
		violations["hookInstance"] = "hookInstance must be a version-4 UUID"
	}
	if req.Hook != def.Hook {
		violations["hook"] = fmt.Sprintf("hook %q does not match service hook %q", req.Hook, def.Hook)
	}

	if req.Context == nil {
		violations["context"] = "context is required"
	} else {
		if req.ContextString("userId") == "" {
			violations["context.userId"] = "context.userId is required"
		}
		if req.ContextString("patientId") == "" {
			violations["context.patientId"] = "context.patientId is required"
		}
		switch def.Hook {
		case HookOrderSign:
			if !isBundleShaped(req.Context["draftOrders"]) {
				violations["context.draftOrders"] = "context.draftOrders must be a Bundle"
			}
		case HookMedicationPrescribe:
			if !isBundleShaped(req.Context["medications"]) {
				violations["context.medications"] = "context.medications must be a Bundle"
			}
		}
	}

	if req.FHIRServer != "" {
		u, err := url.ParseRequestURI(req.FHIRServer)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			violations["fhirServer"] = "fhirServer must be a valid http(s) URL"
		}
	}

	if auth := req.FHIRAuthorization; auth != nil {
		if auth.AccessToken == "" || auth.TokenType == "" || auth.ExpiresIn == 0 ||
			auth.Scope == "" || auth.Subject == "" {
			violations["fhirAuthorization"] = "fhirAuthorization requires access_token, token_type, expires_in, scope and subject"
		}
	}

	return violations
}

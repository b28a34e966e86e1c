package fhir

import "encoding/json"

// Prefetch values arrive as loosely typed JSON: a single resource, a bundle
// of resources, an explicit null, or garbage. The extractors below pull the
// typed resources a rule needs out of whatever was supplied, treating
// anything malformed or absent as empty rather than as an error.

// rawResources normalizes a prefetch value into raw JSON resources. A bundle
// yields its entry resources; a single resource yields itself; anything else
// yields nothing.
func rawResources(v any) []json.RawMessage {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.ResourceType == "" {
		return nil
	}

	if probe.ResourceType == "Bundle" {
		var b Bundle
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil
		}
		return b.Resources()
	}
	return []json.RawMessage{raw}
}

func typeOf(raw json.RawMessage) string {
	var probe struct {
		ResourceType string `json:"resourceType"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return probe.ResourceType
}

// MedicationRequests extracts all MedicationRequest resources from a
// prefetch value.
func MedicationRequests(v any) []MedicationRequest {
	var out []MedicationRequest
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "MedicationRequest" {
			continue
		}
		var m MedicationRequest
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Allergies extracts all AllergyIntolerance resources from a prefetch value.
func Allergies(v any) []AllergyIntolerance {
	var out []AllergyIntolerance
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "AllergyIntolerance" {
			continue
		}
		var a AllergyIntolerance
		if err := json.Unmarshal(raw, &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Conditions extracts all Condition resources from a prefetch value.
func Conditions(v any) []Condition {
	var out []Condition
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "Condition" {
			continue
		}
		var c Condition
		if err := json.Unmarshal(raw, &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Observations extracts all Observation resources from a prefetch value.
func Observations(v any) []Observation {
	var out []Observation
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "Observation" {
			continue
		}
		var o Observation
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		out = append(out, o)
	}
	return out
}

// ServiceRequests extracts all ServiceRequest resources from a prefetch
// value.
func ServiceRequests(v any) []ServiceRequest {
	var out []ServiceRequest
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "ServiceRequest" {
			continue
		}
		var s ServiceRequest
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

// PatientResource extracts a single Patient from a prefetch value, or nil.
func PatientResource(v any) *Patient {
	for _, raw := range rawResources(v) {
		if typeOf(raw) != "Patient" {
			continue
		}
		var p Patient
		if err := json.Unmarshal(raw, &p); err != nil {
			continue
		}
		return &p
	}
	return nil
}

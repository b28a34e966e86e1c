package fhir

import "encoding/json"

// Bundle is the FHIR container resource. Entries are kept raw so callers can
// decode only the resource types they care about.
type Bundle struct {
	ResourceType string        `json:"resourceType"`
	Type         string        `json:"type,omitempty"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

// Resources returns the raw entry resources of the bundle, skipping entries
// without one.
func (b *Bundle) Resources() []json.RawMessage {
	if b == nil {
		return nil
	}
	out := make([]json.RawMessage, 0, len(b.Entry))
	for _, e := range b.Entry {
		if len(e.Resource) > 0 {
			out = append(out, e.Resource)
		}
	}
	return out
}

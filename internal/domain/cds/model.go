// Package cds implements an HL7 CDS Hooks 2.0 decision-support service:
// service discovery, prefetch resolution against an upstream FHIR server,
// static clinical-safety rule engines, and card assembly.
package cds

// Supported workflow triggers.
const (
	HookPatientView         = "patient-view"
	HookOrderSign           = "order-sign"
	HookMedicationPrescribe = "medication-prescribe"
)

// Card indicators, ordered critical < warning < info for display.
const (
	IndicatorCritical = "critical"
	IndicatorWarning  = "warning"
	IndicatorInfo     = "info"
)

// indicatorRank orders indicators for the assembler's severity sort.
// Unknown indicators sort last.
func indicatorRank(indicator string) int {
	switch indicator {
	case IndicatorCritical:
		return 0
	case IndicatorWarning:
		return 1
	case IndicatorInfo:
		return 2
	default:
		return 3
	}
}

// ServiceDefinition describes one CDS service in discovery. Definitions are
// static and immutable after process start.
type ServiceDefinition struct {
	ID          string            `json:"id"`
	Hook        string            `json:"hook"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description"`
	Prefetch    map[string]string `json:"prefetch,omitempty"`
}

// FHIRAuthorization carries the short-lived credential the EHR grants for
// reading the subject patient's data from its FHIR server.
type FHIRAuthorization struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
	Subject     string `json:"subject"`
}

// HookRequest is the payload POSTed to invoke a hook.
type HookRequest struct {
	Hook              string             `json:"hook"`
	HookInstance      string             `json:"hookInstance"`
	FHIRServer        string             `json:"fhirServer,omitempty"`
	FHIRAuthorization *FHIRAuthorization `json:"fhirAuthorization,omitempty"`
	Context           map[string]any     `json:"context"`
	Prefetch          map[string]any     `json:"prefetch,omitempty"`
}

// ContextString returns a context field as a string, or "" when absent or
// not a string.
func (r *HookRequest) ContextString(field string) string {
	if r.Context == nil {
		return ""
	}
	s, _ := r.Context[field].(string)
	return s
}

// Card is a single advisory card in the hook response. Immutable once built;
// construct through CardBuilder.
type Card struct {
	UUID              string       `json:"uuid,omitempty"`
	Summary           string       `json:"summary"`
	Detail            string       `json:"detail,omitempty"`
	Indicator         string       `json:"indicator"`
	Source            Source       `json:"source"`
	Suggestions       []Suggestion `json:"suggestions,omitempty"`
	Links             []Link       `json:"links,omitempty"`
	OverrideReasons   []Coding     `json:"overrideReasons,omitempty"`
	SelectionBehavior string       `json:"selectionBehavior,omitempty"`
}

// Source identifies where a card's guidance comes from.
type Source struct {
	Label string `json:"label"`
	URL   string `json:"url,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Suggestion is a remediation a user may accept.
type Suggestion struct {
	Label         string   `json:"label"`
	UUID          string   `json:"uuid,omitempty"`
	IsRecommended bool     `json:"isRecommended,omitempty"`
	Actions       []Action `json:"actions,omitempty"`
}

// Action is an individual create/update/delete operation within a
// suggestion, or an auto-applied system action.
type Action struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Resource    any    `json:"resource,omitempty"`
	ResourceID  string `json:"resourceId,omitempty"`
}

// Link is an external or SMART-app link on a card.
type Link struct {
	Label      string `json:"label"`
	URL        string `json:"url"`
	Type       string `json:"type"`
	AppContext string `json:"appContext,omitempty"`
}

// Coding is a code/system/display triple.
type Coding struct {
	Code    string `json:"code"`
	System  string `json:"system,omitempty"`
	Display string `json:"display,omitempty"`
}

// HookResponse is the envelope returned from hook invocation. Cards is
// always present, possibly empty; SystemActions is emitted only when at
// least one was added.
type HookResponse struct {
	Cards         []Card   `json:"cards"`
	SystemActions []Action `json:"systemActions,omitempty"`
}

// FeedbackRequest records what the user did with a previously returned card.
type FeedbackRequest struct {
	Card             string   `json:"card"`
	Outcome          string   `json:"outcome"`
	OverrideReasons  []Coding `json:"overrideReasons,omitempty"`
	OutcomeTimestamp string   `json:"outcomeTimestamp,omitempty"`
}

// ---------------------------------------------------------------------------
// Internal rule-engine output
// ---------------------------------------------------------------------------

// Issue categories.
const (
	CategoryAllergy          = "allergy"
	CategoryInteraction      = "interaction"
	CategoryContraindication = "contraindication"
	CategoryDuplicate        = "duplicate"
	CategoryRenalCaution     = "renal-caution"
	CategoryMissingPrereq    = "missing-prerequisite"
	CategoryCarePlan         = "care-plan"
)

// Remediation is a suggested fix attached to an issue: a label plus one or
// more actions.
type Remediation struct {
	Label         string
	IsRecommended bool
	Actions       []Action
}

// Issue is the internal result of one rule-engine match: a safety problem or
// a care recommendation. Issues are created fresh per request, never
// persisted, and consumed immediately by the card builders.
type Issue struct {
	ID            string
	Subject       string // reference to the medication/order/condition concerned
	Category      string
	Severity      string // an indicator constant
	Title         string
	Description   string
	Rationale     string
	InteractsWith string
	Remediation   *Remediation
	Source        *Source
}

// Package fhir holds the minimal FHIR R4 surface this service consumes:
// the handful of resource types the decision rules read, tolerant extraction
// from loosely typed prefetch payloads, and a read-only client for an
// upstream FHIR server.
package fhir

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// Display returns the best human-readable label for a concept: the text if
// present, otherwise the first coding display, otherwise the first code.
func (cc *CodeableConcept) Display() string {
	if cc == nil {
		return ""
	}
	if cc.Text != "" {
		return cc.Text
	}
	for _, c := range cc.Coding {
		if c.Display != "" {
			return c.Display
		}
	}
	for _, c := range cc.Coding {
		if c.Code != "" {
			return c.Code
		}
	}
	return ""
}

// First returns the first coding of a concept, or nil.
func (cc *CodeableConcept) First() *Coding {
	if cc == nil || len(cc.Coding) == 0 {
		return nil
	}
	return &cc.Coding[0]
}

// HasCode reports whether any coding in the concept carries the given code.
func (cc *CodeableConcept) HasCode(code string) bool {
	if cc == nil {
		return false
	}
	for _, c := range cc.Coding {
		if c.Code == code {
			return true
		}
	}
	return false
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Type      string `json:"type,omitempty"`
	Display   string `json:"display,omitempty"`
}

type Quantity struct {
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"`
	Code  string   `json:"code,omitempty"`
}

type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

// Patient carries the demographics the care-plan rules read.
type Patient struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id,omitempty"`
	Name         []HumanName `json:"name,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	BirthDate    string      `json:"birthDate,omitempty"`
}

// MedicationRequest is a draft or active medication order.
type MedicationRequest struct {
	ResourceType              string           `json:"resourceType"`
	ID                        string           `json:"id,omitempty"`
	Status                    string           `json:"status,omitempty"`
	Intent                    string           `json:"intent,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	Subject                   *Reference       `json:"subject,omitempty"`
	AuthoredOn                string           `json:"authoredOn,omitempty"`
}

// DisplayName returns the human-readable medication name.
func (m *MedicationRequest) DisplayName() string {
	return m.MedicationCodeableConcept.Display()
}

// PrimaryCoding returns the first medication coding, or nil when the order
// carries only free text.
func (m *MedicationRequest) PrimaryCoding() *Coding {
	return m.MedicationCodeableConcept.First()
}

// AllergyIntolerance is a recorded allergy or intolerance.
type AllergyIntolerance struct {
	ResourceType   string           `json:"resourceType"`
	ID             string           `json:"id,omitempty"`
	ClinicalStatus *CodeableConcept `json:"clinicalStatus,omitempty"`
	Code           *CodeableConcept `json:"code,omitempty"`
	Patient        *Reference       `json:"patient,omitempty"`
}

// DisplayName returns the human-readable allergen name.
func (a *AllergyIntolerance) DisplayName() string {
	return a.Code.Display()
}

// IsActive reports whether the allergy should be considered current. An
// absent clinical status counts as active.
func (a *AllergyIntolerance) IsActive() bool {
	if a.ClinicalStatus == nil {
		return true
	}
	return a.ClinicalStatus.HasCode("active")
}

// Condition is a problem-list entry or diagnosis.
type Condition struct {
	ResourceType   string           `json:"resourceType"`
	ID             string           `json:"id,omitempty"`
	ClinicalStatus *CodeableConcept `json:"clinicalStatus,omitempty"`
	Code           *CodeableConcept `json:"code,omitempty"`
	Subject        *Reference       `json:"subject,omitempty"`
}

// DisplayName returns the human-readable condition name.
func (c *Condition) DisplayName() string {
	return c.Code.Display()
}

// IsActive reports whether the condition is clinically active. Conditions
// with no clinical status count as active; resolved and inactive ones do not.
func (c *Condition) IsActive() bool {
	if c.ClinicalStatus == nil {
		return true
	}
	return c.ClinicalStatus.HasCode("active")
}

// Observation is a lab result or vital sign.
type Observation struct {
	ResourceType  string           `json:"resourceType"`
	ID            string           `json:"id,omitempty"`
	Status        string           `json:"status,omitempty"`
	Code          *CodeableConcept `json:"code,omitempty"`
	ValueQuantity *Quantity        `json:"valueQuantity,omitempty"`
	Subject       *Reference       `json:"subject,omitempty"`
}

// Value returns the numeric value of the observation and whether one exists.
func (o *Observation) Value() (float64, bool) {
	if o.ValueQuantity == nil || o.ValueQuantity.Value == nil {
		return 0, false
	}
	return *o.ValueQuantity.Value, true
}

// ServiceRequest is a draft non-medication order, e.g. a lab order.
type ServiceRequest struct {
	ResourceType string           `json:"resourceType"`
	ID           string           `json:"id,omitempty"`
	Status       string           `json:"status,omitempty"`
	Intent       string           `json:"intent,omitempty"`
	Code         *CodeableConcept `json:"code,omitempty"`
	Subject      *Reference       `json:"subject,omitempty"`
}

// DisplayName returns the human-readable order name.
func (s *ServiceRequest) DisplayName() string {
	return s.Code.Display()
}

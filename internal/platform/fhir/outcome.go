package fhir

// OperationOutcome is the FHIR error payload returned by the HTTP surface.
type OperationOutcome struct {
	ResourceType string                  `json:"resourceType"`
	Issue        []OperationOutcomeIssue `json:"issue"`
}

type OperationOutcomeIssue struct {
	Severity    string   `json:"severity"`
	Code        string   `json:"code"`
	Diagnostics string   `json:"diagnostics,omitempty"`
	Expression  []string `json:"expression,omitempty"`
}

func NewOperationOutcome(severity, code, diagnostics string) *OperationOutcome {
	return &OperationOutcome{
		ResourceType: "OperationOutcome",
		Issue: []OperationOutcomeIssue{
			{
				Severity:    severity,
				Code:        code,
				Diagnostics: diagnostics,
			},
		},
	}
}

func ErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome("error", "processing", diagnostics)
}

func NotFoundOutcome(resourceType, id string) *OperationOutcome {
	return NewOperationOutcome("error", "not-found", resourceType+"/"+id+" not found")
}

func InternalErrorOutcome(diagnostics string) *OperationOutcome {
	return NewOperationOutcome("fatal", "exception", diagnostics)
}

// ValidationOutcome reports one or more request-shape violations, each with
// its field path in the issue expression.
func ValidationOutcome(violations map[string]string) *OperationOutcome {
	oo := &OperationOutcome{ResourceType: "OperationOutcome"}
	for field, msg := range violations {
		oo.Issue = append(oo.Issue, OperationOutcomeIssue{
			Severity:    "error",
			Code:        "invalid",
			Diagnostics: msg,
			Expression:  []string{field},
		})
	}
	return oo
}

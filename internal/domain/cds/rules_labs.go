package cds

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// renalImpairment scans lab observations for a qualifying creatinine or
// eGFR reading. The first qualifying reading wins; there is no averaging or
// recency weighting.
func renalImpairment(observations []fhir.Observation) (string, bool) {
	for i := range observations {
		obs := &observations[i]
		val, ok := obs.Value()
		if !ok {
			continue
		}
		if isEGFRObservation(obs) && val < egfrImpairedBelow {
			return fmt.Sprintf("eGFR %.0f mL/min", val), true
		}
		if isCreatinineObservation(obs) && val > creatinineImpairedOver {
			return fmt.Sprintf("creatinine %.1f mg/dL", val), true
		}
	}
	return "", false
}

func isEGFRObservation(obs *fhir.Observation) bool {
	if obs.Code != nil {
		for _, c := range obs.Code.Coding {
			if egfrCodes[c.Code] {
				return true
			}
		}
	}
	label := normalizeToken(obs.Code.Display())
	for _, t := range egfrLabels {
		if tokensOverlap(label, t) {
			return true
		}
	}
	return false
}

func isCreatinineObservation(obs *fhir.Observation) bool {
	if obs.Code != nil {
		for _, c := range obs.Code.Coding {
			if creatinineCodes[c.Code] {
				return true
			}
		}
	}
	label := normalizeToken(obs.Code.Display())
	for _, t := range creatinineLabels {
		if tokensOverlap(label, t) {
			return true
		}
	}
	return false
}

// CheckRenalCaution warns on renally cleared medications when the lab
// history shows impaired renal function.
func CheckRenalCaution(meds []fhir.MedicationRequest, observations []fhir.Observation) []Issue {
	reading, impaired := renalImpairment(observations)
	if !impaired {
		return nil
	}

	var issues []Issue
	for i := range meds {
		med := &meds[i]
		medToken := normalizeToken(med.DisplayName())
		if medToken == "" {
			continue
		}

		for _, drug := range renallyCleared {
			if !tokensOverlap(medToken, drug) {
				continue
			}
			issues = append(issues, Issue{
				ID:          uuid.New().String(),
				Subject:     "MedicationRequest/" + med.ID,
				Category:    CategoryRenalCaution,
				Severity:    IndicatorWarning,
				Title:       fmt.Sprintf("Renal dosing caution: %s", med.DisplayName()),
				Description: fmt.Sprintf("%s is renally cleared and the patient shows impaired renal function (%s). Review dose or choose an alternative.", med.DisplayName(), reading),
			})
			break
		}
	}
	return issues
}

// CheckMissingPrerequisites flags ordered medications whose required
// baseline labs are not ordered in the same draft batch. Only used for
// draft-order review, where sibling lab orders are visible.
func CheckMissingPrerequisites(meds []fhir.MedicationRequest, labOrders []fhir.ServiceRequest) []Issue {
	var issues []Issue

	for i := range meds {
		med := &meds[i]
		medToken := normalizeToken(med.DisplayName())
		if medToken == "" {
			continue
		}

		// A medication can match both a class token and its own token in
		// the table; flag each distinct lab once.
		flagged := map[string]bool{}
		for _, prereq := range labPrerequisites {
			if !tokensOverlap(medToken, prereq.MedToken) || flagged[prereq.LabName] {
				continue
			}
			if hasLabOrder(labOrders, prereq.LabTokens) {
				continue
			}
			flagged[prereq.LabName] = true
			issues = append(issues, Issue{
				ID:          uuid.New().String(),
				Subject:     "MedicationRequest/" + med.ID,
				Category:    CategoryMissingPrereq,
				Severity:    IndicatorInfo,
				Title:       fmt.Sprintf("Baseline lab recommended: %s", prereq.LabName),
				Description: fmt.Sprintf("%s is being ordered without a %s in the same batch.", med.DisplayName(), prereq.LabName),
				Rationale:   prereq.Rationale,
				Remediation: &Remediation{
					Label: fmt.Sprintf("Order %s", prereq.LabName),
					Actions: []Action{
						{
							Type:        "create",
							Description: fmt.Sprintf("Create a %s order", prereq.LabName),
							Resource: map[string]any{
								"resourceType": "ServiceRequest",
								"status":       "draft",
								"intent":       "order",
								"code":         map[string]any{"text": prereq.LabName},
							},
						},
					},
				},
			})
		}
	}
	return issues
}

func hasLabOrder(labOrders []fhir.ServiceRequest, labTokens []string) bool {
	for i := range labOrders {
		orderToken := normalizeToken(labOrders[i].DisplayName())
		for _, t := range labTokens {
			if tokensOverlap(orderToken, t) {
				return true
			}
		}
	}
	return false
}

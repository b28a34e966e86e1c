package cds

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// CheckAllergies matches ordered medications against the patient's active
// allergy list, including statically known cross-reactive medication
// classes. Matching stops at the first hit per medication-allergy pair: a
// direct hit on the allergen's own token wins over a cross-reactive hit,
// and a medication flagged through one token is not re-flagged through
// another token of the same allergy.
func CheckAllergies(meds []fhir.MedicationRequest, allergies []fhir.AllergyIntolerance) []Issue {
	var issues []Issue

	for i := range meds {
		med := &meds[i]
		medToken := normalizeToken(med.DisplayName())
		if medToken == "" {
			continue
		}

		for j := range allergies {
			allergy := &allergies[j]
			if !allergy.IsActive() {
				continue
			}
			allergen := allergy.DisplayName()
			allergenToken := normalizeToken(allergen)
			if allergenToken == "" {
				continue
			}

			if tokensOverlap(medToken, allergenToken) {
				issues = append(issues, allergyIssue(med, allergen, false))
				continue
			}

			for _, class := range crossReactiveTokens(allergenToken) {
				if tokensOverlap(medToken, class) {
					issues = append(issues, allergyIssue(med, allergen, true))
					break
				}
			}
		}
	}

	return issues
}

// crossReactiveTokens returns the cross-reactive medication tokens for an
// allergen token, matching table keys by the same substring rule used for
// medications.
func crossReactiveTokens(allergenToken string) []string {
	var out []string
	for class, tokens := range crossReactivity {
		if tokensOverlap(allergenToken, class) {
			out = append(out, tokens...)
		}
	}
	return out
}

func allergyIssue(med *fhir.MedicationRequest, allergen string, crossReactive bool) Issue {
	medName := med.DisplayName()

	title := fmt.Sprintf("Allergy alert: %s", medName)
	desc := fmt.Sprintf("Patient has a documented allergy to %s.", allergen)
	if crossReactive {
		title = fmt.Sprintf("Cross-reactive allergy alert: %s", medName)
		desc = fmt.Sprintf("%s may cross-react with the patient's documented %s allergy.", medName, allergen)
	}

	return Issue{
		ID:            uuid.New().String(),
		Subject:       "MedicationRequest/" + med.ID,
		Category:      CategoryAllergy,
		Severity:      IndicatorCritical,
		Title:         title,
		Description:   desc,
		InteractsWith: allergen,
		Remediation: &Remediation{
			Label:         fmt.Sprintf("Remove %s order", medName),
			IsRecommended: true,
			Actions: []Action{
				{
					Type:        "delete",
					Description: fmt.Sprintf("Remove the order for %s", medName),
					ResourceID:  "MedicationRequest/" + med.ID,
				},
			},
		},
	}
}

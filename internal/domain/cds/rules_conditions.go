package cds

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// CheckContraindications flags ordered medications contraindicated by the
// patient's active conditions. Conditions whose clinical status is anything
// other than active (or unspecified) are ignored. Matching stops at the
// first contraindicated token per (code prefix, medication) pair.
func CheckContraindications(meds []fhir.MedicationRequest, conditions []fhir.Condition) []Issue {
	var issues []Issue
	seen := map[string]bool{}

	for i := range meds {
		med := &meds[i]
		medToken := normalizeToken(med.DisplayName())
		if medToken == "" {
			continue
		}

		for j := range conditions {
			cond := &conditions[j]
			if !cond.IsActive() {
				continue
			}
			coding := cond.Code.First()
			if coding == nil || coding.Code == "" {
				continue
			}
			prefix := codePrefix(coding.Code)

			entries, ok := contraindicationTable[prefix]
			if !ok {
				continue
			}

			pairKey := prefix + "|" + med.ID
			if seen[pairKey] {
				continue
			}

			for _, entry := range entries {
				if !tokensOverlap(medToken, normalizeToken(entry.Token)) {
					continue
				}
				seen[pairKey] = true
				issues = append(issues, contraindicationIssue(med, cond, entry))
				break
			}
		}
	}

	return issues
}

func contraindicationIssue(med *fhir.MedicationRequest, cond *fhir.Condition, entry contraindicatedDrug) Issue {
	medName := med.DisplayName()
	condName := cond.DisplayName()

	return Issue{
		ID:            uuid.New().String(),
		Subject:       "MedicationRequest/" + med.ID,
		Category:      CategoryContraindication,
		Severity:      entry.Severity,
		Title:         fmt.Sprintf("Contraindication: %s with %s", medName, condName),
		Description:   entry.Description,
		InteractsWith: condName,
	}
}

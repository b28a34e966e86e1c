package cds

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// CheckDuplicates reports ordered medications that duplicate an entry on
// the active medication list, and — when withinBatch is set, as it is for
// draft-order review — entries that duplicate each other inside the same
// batch. Duplication is an exact coding match (system plus code), never a
// display-text comparison. Batch pairs are reported once, on the
// lexicographically later identifier, so (A,B) and (B,A) do not both fire.
func CheckDuplicates(ordered, active []fhir.MedicationRequest, withinBatch bool) []Issue {
	var issues []Issue

	for i := range ordered {
		med := &ordered[i]
		coding := med.PrimaryCoding()
		if coding == nil || coding.Code == "" {
			continue
		}

		for j := range active {
			existing := &active[j]
			if !sameCoding(coding, existing.PrimaryCoding()) {
				continue
			}
			issues = append(issues, duplicateIssue(med, existing.DisplayName(), "the active medication list"))
		}

		if !withinBatch {
			continue
		}
		for j := range ordered {
			if i == j {
				continue
			}
			sibling := &ordered[j]
			if !sameCoding(coding, sibling.PrimaryCoding()) {
				continue
			}
			// Report on whichever order sorts later so each pair fires once.
			if med.ID <= sibling.ID {
				continue
			}
			issues = append(issues, duplicateIssue(med, sibling.DisplayName(), "this order batch"))
		}
	}

	return issues
}

func sameCoding(a, b *fhir.Coding) bool {
	if a == nil || b == nil {
		return false
	}
	return a.System == b.System && a.Code == b.Code && a.Code != ""
}

func duplicateIssue(med *fhir.MedicationRequest, existingName, where string) Issue {
	medName := med.DisplayName()

	return Issue{
		ID:            uuid.New().String(),
		Subject:       "MedicationRequest/" + med.ID,
		Category:      CategoryDuplicate,
		Severity:      IndicatorWarning,
		Title:         fmt.Sprintf("Duplicate therapy: %s", medName),
		Description:   fmt.Sprintf("%s duplicates %s already present on %s.", medName, existingName, where),
		InteractsWith: existingName,
		Remediation: &Remediation{
			Label: "Remove duplicate order",
			Actions: []Action{
				{
					Type:        "delete",
					Description: fmt.Sprintf("Remove the duplicate order for %s", medName),
					ResourceID:  "MedicationRequest/" + med.ID,
				},
			},
		},
	}
}

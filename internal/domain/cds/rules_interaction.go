package cds

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// CheckInteractions tests each ordered medication against every other
// medication in the combined new-plus-active set. Both orientations of each
// table row are tried with the substring-either-direction rule. A given
// (ordered medication, other medication) pair yields at most one issue even
// when several table rows match it.
func CheckInteractions(ordered, combined []fhir.MedicationRequest) []Issue {
	var issues []Issue
	seen := map[string]bool{}

	for i := range ordered {
		med := &ordered[i]
		medToken := normalizeToken(med.DisplayName())
		if medToken == "" {
			continue
		}

		for j := range combined {
			other := &combined[j]
			if sameMedication(med, other) {
				continue
			}
			otherToken := normalizeToken(other.DisplayName())
			if otherToken == "" {
				continue
			}

			pairKey := med.ID + "|" + otherToken
			if seen[pairKey] {
				continue
			}

			for _, row := range interactionTable {
				a := normalizeToken(row.DrugA)
				b := normalizeToken(row.DrugB)
				forward := tokensOverlap(medToken, a) && tokensOverlap(otherToken, b)
				reverse := tokensOverlap(medToken, b) && tokensOverlap(otherToken, a)
				if !forward && !reverse {
					continue
				}

				seen[pairKey] = true
				issues = append(issues, interactionIssue(med, other, row))
				break
			}
		}
	}

	return issues
}

// sameMedication reports whether two entries are the same order, by id when
// both carry one, otherwise by pointer identity being impossible across
// slices we fall back to identical display.
func sameMedication(a, b *fhir.MedicationRequest) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a == b
}

func interactionIssue(med, other *fhir.MedicationRequest, row drugInteraction) Issue {
	medName := med.DisplayName()
	otherName := other.DisplayName()

	return Issue{
		ID:            uuid.New().String(),
		Subject:       "MedicationRequest/" + med.ID,
		Category:      CategoryInteraction,
		Severity:      row.Severity,
		Title:         fmt.Sprintf("Drug interaction: %s and %s", medName, otherName),
		Description:   row.Description,
		Rationale:     row.Mechanism,
		InteractsWith: otherName,
	}
}

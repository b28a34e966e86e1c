package cds

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ehr/cds/internal/platform/fhir"
)

// CheckCarePlan produces chart-opening recommendations: fixed care-plan
// guidance for mapped active conditions, a vitals prompt when the record
// holds no observations at all, and a colorectal-screening prompt for
// patients aged 45-75.
func CheckCarePlan(patient *fhir.Patient, conditions []fhir.Condition, observations []fhir.Observation, now time.Time) []Issue {
	var issues []Issue
	seen := map[string]bool{}

	for i := range conditions {
		cond := &conditions[i]
		if !cond.IsActive() {
			continue
		}
		coding := cond.Code.First()
		if coding == nil || coding.Code == "" {
			continue
		}
		prefix := codePrefix(coding.Code)
		entry, ok := carePlanTable[prefix]
		if !ok || seen[prefix] {
			continue
		}
		seen[prefix] = true
		issues = append(issues, carePlanIssue(cond, entry))
	}

	if len(observations) == 0 {
		issues = append(issues, Issue{
			ID:          uuid.New().String(),
			Category:    CategoryCarePlan,
			Severity:    IndicatorInfo,
			Title:       "No observations on record",
			Description: "The chart holds no observations. Capture baseline vital signs at this visit.",
		})
	}

	if age, ok := patientAge(patient, now); ok &&
		age >= colorectalScreenMinAge && age <= colorectalScreenMaxAge {
		issues = append(issues, Issue{
			ID:          uuid.New().String(),
			Subject:     "Patient/" + patient.ID,
			Category:    CategoryCarePlan,
			Severity:    IndicatorInfo,
			Title:       "Colorectal cancer screening due",
			Description: fmt.Sprintf("Patient is %d; adults aged %d-%d should have up-to-date colorectal cancer screening.", age, colorectalScreenMinAge, colorectalScreenMaxAge),
			Rationale:   "USPSTF recommends colorectal screening for average-risk adults in this age range.",
			Source: &Source{
				Label: "USPSTF",
				URL:   "https://www.uspreventiveservicestaskforce.org",
			},
		})
	}

	return issues
}

func carePlanIssue(cond *fhir.Condition, entry carePlanEntry) Issue {
	var remediation *Remediation
	if len(entry.Actions) > 0 {
		actions := make([]Action, 0, len(entry.Actions))
		for _, desc := range entry.Actions {
			actions = append(actions, Action{
				Type:        "create",
				Description: desc,
				Resource: map[string]any{
					"resourceType": "Task",
					"status":       "requested",
					"description":  desc,
				},
			})
		}
		remediation = &Remediation{Label: entry.Title, Actions: actions}
	}

	issue := Issue{
		ID:          uuid.New().String(),
		Subject:     "Condition/" + cond.ID,
		Category:    CategoryCarePlan,
		Severity:    entry.Priority,
		Title:       entry.Title,
		Description: entry.Description,
		Rationale:   entry.Rationale,
		Remediation: remediation,
	}
	if entry.SourceLabel != "" {
		issue.Source = &Source{Label: entry.SourceLabel, URL: entry.SourceURL}
	}
	return issue
}

// patientAge computes whole years from the FHIR birthDate to now. Partial
// dates (YYYY or YYYY-MM) are accepted; the missing parts default to
// January 1st.
func patientAge(patient *fhir.Patient, now time.Time) (int, bool) {
	if patient == nil || patient.BirthDate == "" {
		return 0, false
	}

	var born time.Time
	var err error
	switch len(patient.BirthDate) {
	case 4:
		born, err = time.Parse("2006", patient.BirthDate)
	case 7:
		born, err = time.Parse("2006-01", patient.BirthDate)
	default:
		born, err = time.Parse("2006-01-02", patient.BirthDate)
	}
	if err != nil {
		return 0, false
	}

	age := now.Year() - born.Year()
	if now.Month() < born.Month() ||
		(now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

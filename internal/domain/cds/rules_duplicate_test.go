package cds

import (
	"testing"

	"github.com/ehr/cds/internal/platform/fhir"
)

const rxnorm = "http://www.nlm.nih.gov/research/umls/rxnorm"

func TestCheckDuplicates_AgainstActiveList(t *testing.T) {
	ordered := []fhir.MedicationRequest{medRequestCoded("m1", rxnorm, "197361", "Lisinopril 10 MG")}
	active := []fhir.MedicationRequest{medRequestCoded("m2", rxnorm, "197361", "Lisinopril 10 MG")}

	issues := CheckDuplicates(ordered, active, false)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Severity != IndicatorWarning {
		t.Errorf("expected warning severity, got %s", issues[0].Severity)
	}
	if issues[0].Category != CategoryDuplicate {
		t.Errorf("expected duplicate category, got %s", issues[0].Category)
	}
}

func TestCheckDuplicates_SameCodeDifferentSystem(t *testing.T) {
	ordered := []fhir.MedicationRequest{medRequestCoded("m1", rxnorm, "197361", "Lisinopril")}
	active := []fhir.MedicationRequest{medRequestCoded("m2", "http://snomed.info/sct", "197361", "Lisinopril")}

	if issues := CheckDuplicates(ordered, active, false); len(issues) != 0 {
		t.Fatalf("coding match requires system and code, got %d issues", len(issues))
	}
}

func TestCheckDuplicates_WithinBatchFiresOnce(t *testing.T) {
	ordered := []fhir.MedicationRequest{
		medRequestCoded("m1", rxnorm, "197361", "Lisinopril"),
		medRequestCoded("m2", rxnorm, "197361", "Lisinopril"),
	}

	issues := CheckDuplicates(ordered, nil, true)
	if len(issues) != 1 {
		t.Fatalf("expected a single issue for the batch pair, got %d", len(issues))
	}
	if issues[0].Subject != "MedicationRequest/m2" {
		t.Errorf("expected the later id to carry the issue, got %s", issues[0].Subject)
	}
}

func TestCheckDuplicates_BatchPairingDisabled(t *testing.T) {
	ordered := []fhir.MedicationRequest{
		medRequestCoded("m1", rxnorm, "197361", "Lisinopril"),
		medRequestCoded("m2", rxnorm, "197361", "Lisinopril"),
	}

	if issues := CheckDuplicates(ordered, nil, false); len(issues) != 0 {
		t.Fatalf("expected no batch issues when pairing is off, got %d", len(issues))
	}
}

func TestCheckDuplicates_FreeTextNeverMatches(t *testing.T) {
	ordered := []fhir.MedicationRequest{medRequest("m1", "Lisinopril")}
	active := []fhir.MedicationRequest{medRequest("m2", "Lisinopril")}

	if issues := CheckDuplicates(ordered, active, true); len(issues) != 0 {
		t.Fatalf("duplication is coding-based, display text must not match, got %d issues", len(issues))
	}
}

func TestCheckDuplicates_SuggestsRemoval(t *testing.T) {
	ordered := []fhir.MedicationRequest{medRequestCoded("m1", rxnorm, "197361", "Lisinopril")}
	active := []fhir.MedicationRequest{medRequestCoded("m2", rxnorm, "197361", "Lisinopril")}

	issues := CheckDuplicates(ordered, active, false)
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	rem := issues[0].Remediation
	if rem == nil || len(rem.Actions) != 1 || rem.Actions[0].Type != "delete" {
		t.Fatalf("expected a delete remediation, got %+v", rem)
	}
}

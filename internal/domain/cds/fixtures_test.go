package cds

import (
	"github.com/ehr/cds/internal/platform/fhir"
)

// Shared fixture constructors for the rule-engine tests.

func medRequest(id, name string) fhir.MedicationRequest {
	return fhir.MedicationRequest{
		ResourceType: "MedicationRequest",
		ID:           id,
		Status:       "draft",
		Intent:       "order",
		MedicationCodeableConcept: &fhir.CodeableConcept{
			Text: name,
		},
	}
}

func medRequestCoded(id, system, code, display string) fhir.MedicationRequest {
	return fhir.MedicationRequest{
		ResourceType: "MedicationRequest",
		ID:           id,
		Status:       "draft",
		Intent:       "order",
		MedicationCodeableConcept: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{System: system, Code: code, Display: display}},
		},
	}
}

func allergyTo(id, allergen string) fhir.AllergyIntolerance {
	return fhir.AllergyIntolerance{
		ResourceType: "AllergyIntolerance",
		ID:           id,
		ClinicalStatus: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{Code: "active"}},
		},
		Code: &fhir.CodeableConcept{Text: allergen},
	}
}

func inactiveAllergy(id, allergen string) fhir.AllergyIntolerance {
	a := allergyTo(id, allergen)
	a.ClinicalStatus = &fhir.CodeableConcept{
		Coding: []fhir.Coding{{Code: "resolved"}},
	}
	return a
}

func activeCondition(id, code, display string) fhir.Condition {
	return fhir.Condition{
		ResourceType: "Condition",
		ID:           id,
		ClinicalStatus: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{Code: "active"}},
		},
		Code: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{System: "http://hl7.org/fhir/sid/icd-10-cm", Code: code, Display: display}},
		},
	}
}

func resolvedCondition(id, code, display string) fhir.Condition {
	c := activeCondition(id, code, display)
	c.ClinicalStatus = &fhir.CodeableConcept{
		Coding: []fhir.Coding{{Code: "resolved"}},
	}
	return c
}

func labObservation(id, loinc, display string, value float64) fhir.Observation {
	return fhir.Observation{
		ResourceType: "Observation",
		ID:           id,
		Status:       "final",
		Code: &fhir.CodeableConcept{
			Coding: []fhir.Coding{{System: "http://loinc.org", Code: loinc, Display: display}},
		},
		ValueQuantity: &fhir.Quantity{Value: &value},
	}
}

func labOrder(id, name string) fhir.ServiceRequest {
	return fhir.ServiceRequest{
		ResourceType: "ServiceRequest",
		ID:           id,
		Status:       "draft",
		Intent:       "order",
		Code:         &fhir.CodeableConcept{Text: name},
	}
}

func patientBorn(id, birthDate string) *fhir.Patient {
	return &fhir.Patient{
		ResourceType: "Patient",
		ID:           id,
		BirthDate:    birthDate,
	}
}

func countByCategory(issues []Issue, category string) int {
	n := 0
	for _, issue := range issues {
		if issue.Category == category {
			n++
		}
	}
	return n
}

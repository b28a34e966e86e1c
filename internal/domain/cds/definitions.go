package cds

// The three service definitions, one per supported trigger. Prefetch
// templates use {{context.<field>}} placeholders filled from the request
// context at resolve time.

var serviceDefinitions = []ServiceDefinition{
	{
		ID:          "patient-safety-review",
		Hook:        HookPatientView,
		Title:       "Patient Safety Review",
		Description: "Care-plan recommendations and preventive-screening prompts when a chart is opened",
		Prefetch: map[string]string{
			"patient":      "Patient/{{context.patientId}}",
			"conditions":   "Condition?patient={{context.patientId}}&clinical-status=active",
			"medications":  "MedicationRequest?patient={{context.patientId}}&status=active",
			"observations": "Observation?patient={{context.patientId}}&category=laboratory&_count=50",
		},
	},
	{
		ID:          "order-safety-check",
		Hook:        HookOrderSign,
		Title:       "Order Safety Check",
		Description: "Allergy, interaction, contraindication, duplicate and lab-prerequisite checks on draft orders",
		Prefetch: map[string]string{
			"patient":           "Patient/{{context.patientId}}",
			"allergies":         "AllergyIntolerance?patient={{context.patientId}}",
			"activeMedications": "MedicationRequest?patient={{context.patientId}}&status=active",
			"conditions":        "Condition?patient={{context.patientId}}&clinical-status=active",
			"observations":      "Observation?patient={{context.patientId}}&category=laboratory&_count=50",
		},
	},
	{
		ID:          "medication-safety-check",
		Hook:        HookMedicationPrescribe,
		Title:       "Medication Safety Check",
		Description: "Allergy, interaction, contraindication, duplicate and renal-dosing checks while prescribing",
		Prefetch: map[string]string{
			"patient":           "Patient/{{context.patientId}}",
			"allergies":         "AllergyIntolerance?patient={{context.patientId}}",
			"activeMedications": "MedicationRequest?patient={{context.patientId}}&status=active",
			"conditions":        "Condition?patient={{context.patientId}}&clinical-status=active",
			"observations":      "Observation?patient={{context.patientId}}&category=laboratory&_count=50",
		},
	},
}

// ServiceDefinitions returns the static discovery list in registration
// order.
func ServiceDefinitions() []ServiceDefinition {
	out := make([]ServiceDefinition, len(serviceDefinitions))
	copy(out, serviceDefinitions)
	return out
}

// LookupService returns the definition with the given id.
func LookupService(id string) (ServiceDefinition, bool) {
	for _, def := range serviceDefinitions {
		if def.ID == id {
			return def, true
		}
	}
	return ServiceDefinition{}, false
}

package cds

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ehr/cds/internal/platform/fhir"
)

// Service evaluates hook invocations: it resolves prefetch, runs the rule
// engines for the triggering hook, and assembles the card response.
type Service struct {
	resolver *Resolver
	assembly AssemblerConfig
	logger   zerolog.Logger
	now      func() time.Time
}

func NewService(resolver *Resolver, assembly AssemblerConfig, logger zerolog.Logger) *Service {
	return &Service{
		resolver: resolver,
		assembly: assembly,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate dispatches an already-validated request to the engine set for its
// hook.
func (s *Service) Evaluate(ctx context.Context, req *HookRequest, serviceID string) HookResponse {
	hc := s.resolver.BuildHookContext(ctx, req, serviceID)

	var issues []Issue
	switch req.Hook {
	case HookPatientView:
		issues = s.patientView(hc)
	case HookOrderSign:
		issues = s.orderSign(hc)
	case HookMedicationPrescribe:
		issues = s.medicationPrescribe(hc)
	}

	return s.assemble(hc, issues)
}

// patientView reviews the patient's current record: condition-driven care
// recommendations, screening prompts, and a vitals nudge when no
// observations exist.
func (s *Service) patientView(hc HookContext) []Issue {
	patient := fhir.PatientResource(hc.Prefetch.Data["patient"])
	conditions := fhir.Conditions(hc.Prefetch.Data["conditions"])
	observations := fhir.Observations(hc.Prefetch.Data["observations"])

	return CheckCarePlan(patient, conditions, observations, s.now())
}

// orderSign screens the draft orders against the patient's allergies,
// existing medications, conditions, and labs.
func (s *Service) orderSign(hc HookContext) []Issue {
	ordered := fhir.MedicationRequests(hc.Request.Context["draftOrders"])
	return s.screenMedications(hc, ordered, true)
}

// medicationPrescribe screens the proposed prescriptions. Prescriptions are
// entered one at a time, so batch pairing and lab-prerequisite prompts stay
// out; those run at signing.
func (s *Service) medicationPrescribe(hc HookContext) []Issue {
	proposed := fhir.MedicationRequests(hc.Request.Context["medications"])

	var issues []Issue
	allergies := fhir.Allergies(hc.Prefetch.Data["allergies"])
	conditions := fhir.Conditions(hc.Prefetch.Data["conditions"])
	observations := fhir.Observations(hc.Prefetch.Data["observations"])
	active := fhir.MedicationRequests(hc.Prefetch.Data["activeMedications"])

	issues = append(issues, CheckAllergies(proposed, allergies)...)
	issues = append(issues, CheckInteractions(proposed, append(active, proposed...))...)
	issues = append(issues, CheckContraindications(proposed, conditions)...)
	issues = append(issues, CheckDuplicates(proposed, active, false)...)
	issues = append(issues, CheckRenalCaution(proposed, observations)...)
	return issues
}

func (s *Service) screenMedications(hc HookContext, ordered []fhir.MedicationRequest, signing bool) []Issue {
	allergies := fhir.Allergies(hc.Prefetch.Data["allergies"])
	conditions := fhir.Conditions(hc.Prefetch.Data["conditions"])
	observations := fhir.Observations(hc.Prefetch.Data["observations"])
	active := fhir.MedicationRequests(hc.Prefetch.Data["activeMedications"])
	labOrders := fhir.ServiceRequests(hc.Request.Context["draftOrders"])

	var issues []Issue
	issues = append(issues, CheckAllergies(ordered, allergies)...)
	issues = append(issues, CheckInteractions(ordered, append(active, ordered...))...)
	issues = append(issues, CheckContraindications(ordered, conditions)...)
	issues = append(issues, CheckDuplicates(ordered, active, signing)...)
	issues = append(issues, CheckRenalCaution(ordered, observations)...)
	if signing {
		issues = append(issues, CheckMissingPrerequisites(ordered, labOrders)...)
	}
	return issues
}

// assemble turns issues into cards, appends the prefetch advisory when
// anything went sideways during resolution, and builds the final response.
func (s *Service) assemble(hc HookContext, issues []Issue) HookResponse {
	responder := NewResponder(s.assembly)

	for _, issue := range issues {
		card, err := s.issueToCard(issue)
		if err != nil {
			s.logger.Error().Err(err).
				Str("category", issue.Category).
				Str("subject", issue.Subject).
				Msg("dropping card that failed validation")
			continue
		}
		responder.Add(*card)
	}

	if len(hc.Warnings) > 0 {
		if card, err := s.advisoryCard(hc.Warnings); err == nil {
			responder.Add(*card)
		}
	}

	resp, stats := responder.BuildWithStats()
	s.logger.Debug().
		Str("hook", hc.Request.Hook).
		Int("issues", len(issues)).
		Int("cards", stats.Included).
		Int("excluded", stats.Excluded).
		Msg("hook evaluated")
	return resp
}

func (s *Service) issueToCard(issue Issue) (*Card, error) {
	b := NewCardBuilder().
		WithSummary(issue.Title).
		WithDetail(issueDetail(issue)).
		WithIndicator(issue.Severity)

	if issue.Source != nil {
		b.WithSource(issue.Source.Label, issue.Source.URL, issue.Source.Icon)
	} else {
		b.WithSource("Patient Safety Review", "", "")
	}

	if issue.Remediation != nil {
		sb := NewSuggestionBuilder().WithLabel(issue.Remediation.Label)
		if issue.Remediation.IsRecommended {
			sb.Recommended()
		}
		for _, a := range issue.Remediation.Actions {
			sb.AddAction(a)
		}
		suggestion, err := sb.Build()
		if err != nil {
			return nil, err
		}
		b.AddSuggestion(*suggestion)
	}

	return b.Build()
}

func issueDetail(issue Issue) string {
	detail := issue.Description
	if issue.Rationale != "" {
		if detail != "" {
			detail += "\n\n"
		}
		detail += issue.Rationale
	}
	return detail
}

// advisoryCard folds prefetch warnings into a single informational card so
// the clinician knows the review ran on partial data.
func (s *Service) advisoryCard(warnings []string) (*Card, error) {
	detail := ""
	for i, w := range warnings {
		if i > 0 {
			detail += "\n"
		}
		detail += w
	}
	return NewCardBuilder().
		WithSummary("Some patient data could not be retrieved").
		WithDetail(detail).
		WithIndicator(IndicatorInfo).
		WithSource("Patient Safety Review", "", "").
		Build()
}

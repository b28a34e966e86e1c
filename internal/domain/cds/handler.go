package cds

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/cds/internal/platform/fhir"
)

// DiscoveryResponse is the body of GET /cds-services.
type DiscoveryResponse struct {
	Services []ServiceDefinition `json:"services"`
}

type Handler struct {
	svc      *Service
	feedback FeedbackRepository
}

func NewHandler(svc *Service, feedback FeedbackRepository) *Handler {
	return &Handler{svc: svc, feedback: feedback}
}

// RegisterRoutes wires the CDS Hooks surface. discoveryMW applies to the two
// discovery GETs only; hook invocation and feedback must never be served
// from a cache.
func (h *Handler) RegisterRoutes(e *echo.Echo, discoveryMW ...echo.MiddlewareFunc) {
	e.GET("/cds-services", h.Discover, discoveryMW...)
	e.GET("/cds-services/:id", h.DescribeService, discoveryMW...)
	e.POST("/cds-services/:id", h.InvokeService)
	e.POST("/cds-services/:id/feedback", h.RecordFeedback)
}

// Discover lists every service this server offers.
func (h *Handler) Discover(c echo.Context) error {
	return c.JSON(http.StatusOK, DiscoveryResponse{Services: ServiceDefinitions()})
}

// DescribeService returns a single service definition.
func (h *Handler) DescribeService(c echo.Context) error {
	id := c.Param("id")
	def, ok := LookupService(id)
	if !ok {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("CDSService", id))
	}
	return c.JSON(http.StatusOK, def)
}

// InvokeService runs a hook invocation end to end. Validation failures come
// back as a 400 OperationOutcome naming every offending field; a valid
// request always yields 200 with a cards array, possibly empty.
func (h *Handler) InvokeService(c echo.Context) error {
	id := c.Param("id")
	def, ok := LookupService(id)
	if !ok {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("CDSService", id))
	}

	var req HookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("request body is not valid JSON"))
	}

	if violations := ValidateRequest(&req, def); len(violations) > 0 {
		return c.JSON(http.StatusBadRequest, fhir.ValidationOutcome(violations))
	}

	resp := h.svc.Evaluate(c.Request().Context(), &req, id)
	return c.JSON(http.StatusOK, resp)
}

// RecordFeedback accepts the EHR's report of what the user did with a card.
// Acceptance is best effort; a storage failure is logged and never surfaced
// to the EHR.
func (h *Handler) RecordFeedback(c echo.Context) error {
	id := c.Param("id")
	if _, ok := LookupService(id); !ok {
		return c.JSON(http.StatusNotFound, fhir.NotFoundOutcome("CDSService", id))
	}

	var body struct {
		Feedback []FeedbackRequest `json:"feedback"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, fhir.ErrorOutcome("request body is not valid JSON"))
	}

	violations := make(map[string]string)
	for _, fb := range body.Feedback {
		if !looksLikeUUID(fb.Card) {
			violations["feedback.card"] = "card must be a card uuid"
		}
		switch fb.Outcome {
		case "accepted", "overridden":
		default:
			violations["feedback.outcome"] = "outcome must be accepted or overridden"
		}
	}
	if len(violations) > 0 {
		return c.JSON(http.StatusBadRequest, fhir.ValidationOutcome(violations))
	}

	if h.feedback != nil {
		for _, fb := range body.Feedback {
			if err := h.feedback.Record(c.Request().Context(), id, &fb); err != nil {
				h.svc.logger.Error().Err(err).
					Str("service", id).
					Str("card", fb.Card).
					Msg("failed to record card feedback")
			}
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"received": len(body.Feedback)})
}

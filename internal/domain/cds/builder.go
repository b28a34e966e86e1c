package cds

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// The builders below accumulate optional fields through chained setters and
// validate everything at Build time, collecting every violation rather than
// stopping at the first. Build returns an aggregated error for the hard-fail
// path; TryBuild returns the violation list for callers that expect failure.
// A built value is immutable; the builder is scratch state and Reset returns
// it to empty for reuse.

// ValidationError aggregates every constraint violation found at build time.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Violations, "; "))
}

// ---------------------------------------------------------------------------
// CardBuilder
// ---------------------------------------------------------------------------

type CardBuilder struct {
	card Card
}

func NewCardBuilder() *CardBuilder {
	return &CardBuilder{}
}

func (b *CardBuilder) WithUUID(id string) *CardBuilder {
	b.card.UUID = id
	return b
}

func (b *CardBuilder) WithSummary(summary string) *CardBuilder {
	b.card.Summary = summary
	return b
}

func (b *CardBuilder) WithDetail(detail string) *CardBuilder {
	b.card.Detail = detail
	return b
}

func (b *CardBuilder) WithIndicator(indicator string) *CardBuilder {
	b.card.Indicator = indicator
	return b
}

func (b *CardBuilder) WithSource(label, url, icon string) *CardBuilder {
	b.card.Source = Source{Label: label, URL: url, Icon: icon}
	return b
}

func (b *CardBuilder) AddSuggestion(s Suggestion) *CardBuilder {
	b.card.Suggestions = append(b.card.Suggestions, s)
	return b
}

func (b *CardBuilder) AddLink(l Link) *CardBuilder {
	b.card.Links = append(b.card.Links, l)
	return b
}

func (b *CardBuilder) AddOverrideReason(c Coding) *CardBuilder {
	b.card.OverrideReasons = append(b.card.OverrideReasons, c)
	return b
}

func (b *CardBuilder) WithSelectionBehavior(behavior string) *CardBuilder {
	b.card.SelectionBehavior = behavior
	return b
}

func (b *CardBuilder) validate() []string {
	var violations []string

	if strings.TrimSpace(b.card.Summary) == "" {
		violations = append(violations, "summary must not be empty")
	}
	switch b.card.Indicator {
	case IndicatorInfo, IndicatorWarning, IndicatorCritical:
	case "":
		violations = append(violations, "indicator is required")
	default:
		violations = append(violations, fmt.Sprintf("indicator %q is not one of info, warning, critical", b.card.Indicator))
	}
	if strings.TrimSpace(b.card.Source.Label) == "" {
		violations = append(violations, "source label must not be empty")
	}
	if b.card.UUID != "" && !looksLikeUUID(b.card.UUID) {
		violations = append(violations, fmt.Sprintf("card uuid %q is not UUID-shaped", b.card.UUID))
	}
	switch b.card.SelectionBehavior {
	case "", "at-most-one", "any":
	default:
		violations = append(violations, fmt.Sprintf("selectionBehavior %q is not one of at-most-one, any", b.card.SelectionBehavior))
	}

	return violations
}

// Build validates the accumulated fields and returns the immutable card,
// or an aggregated error listing every violation.
func (b *CardBuilder) Build() (*Card, error) {
	card, violations := b.TryBuild()
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return card, nil
}

// TryBuild is the non-raising variant: it returns the card or nil plus the
// full violation list.
func (b *CardBuilder) TryBuild() (*Card, []string) {
	if violations := b.validate(); len(violations) > 0 {
		return nil, violations
	}
	card := b.card
	if card.UUID == "" {
		card.UUID = uuid.New().String()
	}
	card.Suggestions = append([]Suggestion(nil), b.card.Suggestions...)
	card.Links = append([]Link(nil), b.card.Links...)
	card.OverrideReasons = append([]Coding(nil), b.card.OverrideReasons...)
	return &card, nil
}

// Reset returns the builder to the empty state for reuse.
func (b *CardBuilder) Reset() *CardBuilder {
	b.card = Card{}
	return b
}

// ---------------------------------------------------------------------------
// SuggestionBuilder
// ---------------------------------------------------------------------------

type SuggestionBuilder struct {
	suggestion Suggestion
}

func NewSuggestionBuilder() *SuggestionBuilder {
	return &SuggestionBuilder{}
}

func (b *SuggestionBuilder) WithLabel(label string) *SuggestionBuilder {
	b.suggestion.Label = label
	return b
}

func (b *SuggestionBuilder) WithUUID(id string) *SuggestionBuilder {
	b.suggestion.UUID = id
	return b
}

func (b *SuggestionBuilder) Recommended() *SuggestionBuilder {
	b.suggestion.IsRecommended = true
	return b
}

func (b *SuggestionBuilder) AddAction(a Action) *SuggestionBuilder {
	b.suggestion.Actions = append(b.suggestion.Actions, a)
	return b
}

func (b *SuggestionBuilder) Build() (*Suggestion, error) {
	s, violations := b.TryBuild()
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return s, nil
}

func (b *SuggestionBuilder) TryBuild() (*Suggestion, []string) {
	var violations []string
	if strings.TrimSpace(b.suggestion.Label) == "" {
		violations = append(violations, "suggestion label must not be empty")
	}
	if b.suggestion.UUID != "" && !looksLikeUUID(b.suggestion.UUID) {
		violations = append(violations, fmt.Sprintf("suggestion uuid %q is not UUID-shaped", b.suggestion.UUID))
	}
	if len(violations) > 0 {
		return nil, violations
	}

	s := b.suggestion
	if s.UUID == "" {
		s.UUID = uuid.New().String()
	}
	s.Actions = append([]Action(nil), b.suggestion.Actions...)
	return &s, nil
}

func (b *SuggestionBuilder) Reset() *SuggestionBuilder {
	b.suggestion = Suggestion{}
	return b
}

// ---------------------------------------------------------------------------
// ActionBuilder
// ---------------------------------------------------------------------------

type ActionBuilder struct {
	action Action
}

func NewActionBuilder() *ActionBuilder {
	return &ActionBuilder{}
}

func (b *ActionBuilder) WithType(t string) *ActionBuilder {
	b.action.Type = t
	return b
}

func (b *ActionBuilder) WithDescription(d string) *ActionBuilder {
	b.action.Description = d
	return b
}

func (b *ActionBuilder) WithResource(r any) *ActionBuilder {
	b.action.Resource = r
	return b
}

func (b *ActionBuilder) WithResourceID(id string) *ActionBuilder {
	b.action.ResourceID = id
	return b
}

func (b *ActionBuilder) Build() (*Action, error) {
	a, violations := b.TryBuild()
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return a, nil
}

func (b *ActionBuilder) TryBuild() (*Action, []string) {
	var violations []string

	switch b.action.Type {
	case "create", "update":
		if b.action.Resource == nil {
			violations = append(violations, fmt.Sprintf("%s action requires a resource payload", b.action.Type))
		} else if resourceTypeTag(b.action.Resource) == "" {
			violations = append(violations, "action resource must carry a resourceType")
		}
	case "delete":
		if strings.TrimSpace(b.action.ResourceID) == "" {
			violations = append(violations, "delete action requires a resource identifier")
		}
	case "":
		violations = append(violations, "action type is required")
	default:
		violations = append(violations, fmt.Sprintf("action type %q is not one of create, update, delete", b.action.Type))
	}
	if strings.TrimSpace(b.action.Description) == "" {
		violations = append(violations, "action description must not be empty")
	}

	if len(violations) > 0 {
		return nil, violations
	}
	a := b.action
	return &a, nil
}

func (b *ActionBuilder) Reset() *ActionBuilder {
	b.action = Action{}
	return b
}

// resourceTypeTag pulls the resourceType tag out of an action payload,
// whatever form it was supplied in.
func resourceTypeTag(r any) string {
	switch v := r.(type) {
	case map[string]any:
		rt, _ := v["resourceType"].(string)
		return rt
	case map[string]string:
		return v["resourceType"]
	case interface{ GetResourceType() string }:
		return v.GetResourceType()
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// LinkBuilder
// ---------------------------------------------------------------------------

type LinkBuilder struct {
	link Link
}

func NewLinkBuilder() *LinkBuilder {
	return &LinkBuilder{}
}

func (b *LinkBuilder) WithLabel(label string) *LinkBuilder {
	b.link.Label = label
	return b
}

func (b *LinkBuilder) WithURL(u string) *LinkBuilder {
	b.link.URL = u
	return b
}

func (b *LinkBuilder) WithType(t string) *LinkBuilder {
	b.link.Type = t
	return b
}

func (b *LinkBuilder) WithAppContext(ctx string) *LinkBuilder {
	b.link.AppContext = ctx
	return b
}

func (b *LinkBuilder) Build() (*Link, error) {
	l, violations := b.TryBuild()
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return l, nil
}

func (b *LinkBuilder) TryBuild() (*Link, []string) {
	var violations []string

	if strings.TrimSpace(b.link.Label) == "" {
		violations = append(violations, "link label must not be empty")
	}
	if strings.TrimSpace(b.link.URL) == "" {
		violations = append(violations, "link url must not be empty")
	} else if u, err := url.Parse(b.link.URL); err != nil || u.Scheme == "" {
		violations = append(violations, fmt.Sprintf("link url %q does not parse as a URL", b.link.URL))
	}
	switch b.link.Type {
	case "absolute", "smart":
	case "":
		violations = append(violations, "link type is required")
	default:
		violations = append(violations, fmt.Sprintf("link type %q is not one of absolute, smart", b.link.Type))
	}
	if b.link.AppContext != "" && b.link.Type != "smart" {
		violations = append(violations, "appContext is only legal on smart links")
	}

	if len(violations) > 0 {
		return nil, violations
	}
	l := b.link
	return &l, nil
}

func (b *LinkBuilder) Reset() *LinkBuilder {
	b.link = Link{}
	return b
}

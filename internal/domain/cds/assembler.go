package cds

import (
	"sort"
	"strings"
)

// DefaultMaxCards caps a response when the caller does not configure a limit.
const DefaultMaxCards = 10

// AssemblerConfig tunes how a Responder shapes its output.
type AssemblerConfig struct {
	// MaxCards is the hard cap on cards per response. Zero means
	// DefaultMaxCards.
	MaxCards int
	// DedupeBySummary drops later cards whose summary matches an earlier
	// card's, case-insensitively.
	DedupeBySummary bool
	// SkipSort preserves insertion order instead of sorting by severity.
	SkipSort bool
}

// ResponseStats reports what an assembler build kept and dropped.
type ResponseStats struct {
	Total      int
	Included   int
	Excluded   int
	BySeverity map[string]int
}

// Responder accumulates cards and system actions for one hook invocation and
// assembles the final response: dedupe, severity sort, cap.
type Responder struct {
	cfg     AssemblerConfig
	cards   []Card
	actions []Action
}

func NewResponder(cfg AssemblerConfig) *Responder {
	if cfg.MaxCards <= 0 {
		cfg.MaxCards = DefaultMaxCards
	}
	return &Responder{cfg: cfg}
}

func (r *Responder) Add(card Card) {
	r.cards = append(r.cards, card)
}

func (r *Responder) AddSystemAction(a Action) {
	r.actions = append(r.actions, a)
}

// Build assembles the response. Dedupe runs before the cap so a duplicate
// never crowds out a distinct card, and the severity sort is stable so cards
// of equal indicator keep their insertion order. Cards is never nil.
func (r *Responder) Build() HookResponse {
	resp, _ := r.BuildWithStats()
	return resp
}

// BuildWithStats is Build plus a summary of what was kept and dropped.
func (r *Responder) BuildWithStats() (HookResponse, ResponseStats) {
	cards := append([]Card(nil), r.cards...)

	if r.cfg.DedupeBySummary {
		seen := make(map[string]bool, len(cards))
		kept := cards[:0]
		for _, c := range cards {
			key := strings.ToLower(c.Summary)
			if seen[key] {
				continue
			}
			seen[key] = true
			kept = append(kept, c)
		}
		cards = kept
	}

	if !r.cfg.SkipSort {
		sort.SliceStable(cards, func(i, j int) bool {
			return indicatorRank(cards[i].Indicator) < indicatorRank(cards[j].Indicator)
		})
	}

	if len(cards) > r.cfg.MaxCards {
		cards = cards[:r.cfg.MaxCards]
	}

	stats := ResponseStats{
		Total:      len(r.cards),
		Included:   len(cards),
		Excluded:   len(r.cards) - len(cards),
		BySeverity: make(map[string]int, 3),
	}
	for _, c := range cards {
		stats.BySeverity[c.Indicator]++
	}

	if cards == nil {
		cards = []Card{}
	}

	resp := HookResponse{Cards: cards}
	if len(r.actions) > 0 {
		resp.SystemActions = append([]Action(nil), r.actions...)
	}
	return resp, stats
}

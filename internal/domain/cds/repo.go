package cds

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FeedbackRecord is one stored feedback entry.
type FeedbackRecord struct {
	ID               uuid.UUID
	ServiceID        string
	CardUUID         string
	Outcome          string
	OverrideReasons  []Coding
	OutcomeTimestamp string
	ReceivedAt       time.Time
}

// FeedbackRepository persists card feedback for later review.
type FeedbackRepository interface {
	Record(ctx context.Context, serviceID string, fb *FeedbackRequest) error
	ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*FeedbackRecord, int, error)
}

// MemoryFeedbackRepository keeps feedback in process memory. It is the
// default when no DATABASE_URL is configured.
type MemoryFeedbackRepository struct {
	mu      sync.Mutex
	records []*FeedbackRecord
}

func NewMemoryFeedbackRepository() *MemoryFeedbackRepository {
	return &MemoryFeedbackRepository{}
}

func (r *MemoryFeedbackRepository) Record(ctx context.Context, serviceID string, fb *FeedbackRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, &FeedbackRecord{
		ID:               uuid.New(),
		ServiceID:        serviceID,
		CardUUID:         fb.Card,
		Outcome:          fb.Outcome,
		OverrideReasons:  append([]Coding(nil), fb.OverrideReasons...),
		OutcomeTimestamp: fb.OutcomeTimestamp,
		ReceivedAt:       time.Now().UTC(),
	})
	return nil
}

func (r *MemoryFeedbackRepository) ListByService(ctx context.Context, serviceID string, limit, offset int) ([]*FeedbackRecord, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*FeedbackRecord
	for _, rec := range r.records {
		if rec.ServiceID == serviceID {
			matched = append(matched, rec)
		}
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

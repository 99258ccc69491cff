package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "parkshare/internal/app/outbox"
	infraoutbox "parkshare/internal/infra/outbox"
)

type outboxState string

const (
	outboxNew     outboxState = "NEW"
	outboxClaimed outboxState = "CLAIMED"
	outboxSent    outboxState = "SENT"
	outboxFailed  outboxState = "FAILED"
)

// defaultClaimTTL bounds how long a claim holds off other workers, so a
// restarted worker can reclaim items a dead one left mid-publish.
const defaultClaimTTL = time.Minute

type outboxItem struct {
	record      appoutbox.EventRecord
	state       outboxState
	attempts    int
	nextAttempt time.Time
	claimedBy   string
	claimedAt   time.Time
	lastError   string
}

// Outbox stores pending events in memory and exposes the same claim/ack
// surface the Mongo store offers, so the publish worker runs unchanged in
// dev mode.
type Outbox struct {
	mu       sync.Mutex
	items    []*outboxItem
	claimTTL time.Duration
}

func NewOutbox() *Outbox {
	return &Outbox{claimTTL: defaultClaimTTL}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, &outboxItem{
		record:      record,
		state:       outboxNew,
		nextAttempt: time.Now().UTC(),
	})
	return nil
}

func (o *Outbox) Claim(ctx context.Context, workerID string) (*infraoutbox.EventDocument, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now().UTC()
	for _, item := range o.items {
		switch item.state {
		case outboxNew, outboxFailed:
			if item.nextAttempt.After(now) {
				continue
			}
		case outboxClaimed:
			// A stale claim means its worker died mid-publish; take it over.
			if now.Sub(item.claimedAt) < o.claimTTL {
				continue
			}
		default:
			continue
		}
		item.state = outboxClaimed
		item.claimedBy = workerID
		item.claimedAt = now
		return &infraoutbox.EventDocument{
			ID:         item.record.ID,
			Name:       item.record.Name,
			Payload:    item.record.Payload,
			OccurredAt: item.record.OccurredAt,
			Aggregate:  item.record.Aggregate,
			Headers:    item.record.Headers,
			Attempts:   item.attempts,
		}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if item := o.find(id); item != nil {
		item.state = outboxSent
	}
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if item := o.find(id); item != nil {
		item.state = outboxFailed
		item.attempts++
		item.nextAttempt = next
		item.lastError = errMsg
	}
	return nil
}

// Pending returns unsent records, oldest first; handy in tests.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	var out []appoutbox.EventRecord
	for _, item := range o.items {
		if item.state != outboxSent {
			out = append(out, item.record)
		}
	}
	return out
}

func (o *Outbox) find(id string) *outboxItem {
	for _, item := range o.items {
		if item.record.ID == id {
			return item
		}
	}
	return nil
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)

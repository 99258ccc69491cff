package memory

import (
	"context"
	"testing"
	"time"

	appoutbox "parkshare/internal/app/outbox"
)

func addRecord(t *testing.T, o *Outbox, id string) {
	t.Helper()
	rec := appoutbox.EventRecord{ID: id, Name: "reservation.requested", Aggregate: "res-1"}
	if err := o.Add(context.Background(), rec); err != nil {
		t.Fatalf("Add: %v", err)
	}
}

func TestOutboxClaimLifecycle(t *testing.T) {
	ctx := context.Background()
	o := NewOutbox()
	addRecord(t, o, "evt-1")

	doc, err := o.Claim(ctx, "worker-a")
	if err != nil || doc == nil || doc.ID != "evt-1" {
		t.Fatalf("claim = %+v, %v", doc, err)
	}
	// Claimed items are invisible to other workers.
	if doc, _ := o.Claim(ctx, "worker-b"); doc != nil {
		t.Fatalf("double claim: %+v", doc)
	}
	if err := o.MarkSent(ctx, "evt-1"); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if pending := o.Pending(); len(pending) != 0 {
		t.Fatalf("pending after send = %+v", pending)
	}
}

func TestOutboxReclaimsStaleClaims(t *testing.T) {
	ctx := context.Background()
	o := NewOutbox()
	addRecord(t, o, "evt-1")

	if doc, _ := o.Claim(ctx, "worker-a"); doc == nil {
		t.Fatal("first claim failed")
	}
	// Age the claim past the TTL, as if worker-a died mid-publish.
	o.mu.Lock()
	o.items[0].claimedAt = time.Now().UTC().Add(-2 * defaultClaimTTL)
	o.mu.Unlock()

	doc, err := o.Claim(ctx, "worker-b")
	if err != nil || doc == nil || doc.ID != "evt-1" {
		t.Fatalf("reclaim = %+v, %v", doc, err)
	}
	o.mu.Lock()
	claimedBy := o.items[0].claimedBy
	o.mu.Unlock()
	if claimedBy != "worker-b" {
		t.Fatalf("claimed_by = %q", claimedBy)
	}
}

func TestOutboxFailedItemsWaitForBackoff(t *testing.T) {
	ctx := context.Background()
	o := NewOutbox()
	addRecord(t, o, "evt-1")

	doc, _ := o.Claim(ctx, "worker-a")
	if doc == nil {
		t.Fatal("claim failed")
	}
	if err := o.MarkFailed(ctx, "evt-1", time.Now().UTC().Add(time.Hour), "broker down"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if doc, _ := o.Claim(ctx, "worker-a"); doc != nil {
		t.Fatalf("claimed before backoff elapsed: %+v", doc)
	}
	o.mu.Lock()
	o.items[0].nextAttempt = time.Now().UTC().Add(-time.Second)
	o.mu.Unlock()
	doc, _ = o.Claim(ctx, "worker-a")
	if doc == nil || doc.Attempts != 1 {
		t.Fatalf("retry claim = %+v", doc)
	}
}

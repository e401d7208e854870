package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
)

func init() {
	// Retries back off exponentially; skip the waits in tests.
	sleepFunc = func(time.Duration) {}
}

func newAuditStore(t *testing.T) *store.Store {
	t.Helper()
	return store.New(t.TempDir(), 2*time.Second)
}

func seedFact(t *testing.T, st *store.Store, id, sourceURL string, confidence int) {
	t.Helper()
	tx, err := st.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	defer tx.Release()
	if err := tx.AppendClaim(model.Claim{
		ID:            id,
		Class:         model.ClassFact,
		Statement:     "statement " + id,
		SourceURL:     sourceURL,
		EvidenceQuote: "quote " + id,
		Confidence:    confidence,
		Timestamp:     "2026-02-01T00:00:00Z",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
}

func newTestAuditor(st *store.Store) *Auditor {
	return New(st, model.AuditConfig{Timeout: 2 * time.Second, MaxWorkers: 4}, "veridex-test/1.0", "", "", nil)
}

func TestAuditor_LiveSourcePassesClean(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead {
			t.Errorf("Expected HEAD, got %s", r.Method)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	st := newAuditStore(t)
	seedFact(t, st, "f1", server.URL, 85)

	summary, err := newTestAuditor(st).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Checked != 1 || summary.Dead != 0 {
		t.Errorf("Expected checked=1 dead=0, got %+v", summary)
	}
	if got := len(st.Validations()); got != 0 {
		t.Errorf("Expected no validations for a live source, got %d", got)
	}
}

func TestAuditor_DeadSourceRecordsCappedValidation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer server.Close()

	st := newAuditStore(t)
	seedFact(t, st, "f1", server.URL, 90)

	summary, err := newTestAuditor(st).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Dead != 1 || summary.Validations != 1 {
		t.Errorf("Expected dead=1 validations=1, got %+v", summary)
	}

	validations := st.Validations()
	if len(validations) != 1 {
		t.Fatalf("Expected 1 validation, got %d", len(validations))
	}
	v := validations[0]
	if v.EventType != model.EventWeakEvidence {
		t.Errorf("Expected weak_evidence, got %s", v.EventType)
	}
	if v.ConfidenceDelta != 0 {
		t.Errorf("Expected delta 0, got %d", v.ConfidenceDelta)
	}
	if got := v.RecommendedConfidence["f1"]; got != SourceCap {
		t.Errorf("Expected recommendation capped to %d, got %d", SourceCap, got)
	}
}

func TestAuditor_LowConfidenceFactKeepsItsValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	st := newAuditStore(t)
	seedFact(t, st, "f1", server.URL, 40)

	if _, err := newTestAuditor(st).Run(context.Background()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	v := st.Validations()
	if len(v) != 1 {
		t.Fatalf("Expected 1 validation, got %d", len(v))
	}
	if got := v[0].RecommendedConfidence["f1"]; got != 40 {
		t.Errorf("Expected 40 kept below the cap, got %d", got)
	}
}

func TestAuditor_NotModifiedCountsAsAccessible(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotModified)
	}))
	defer server.Close()

	st := newAuditStore(t)
	seedFact(t, st, "f1", server.URL, 80)

	summary, err := newTestAuditor(st).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Dead != 0 {
		t.Errorf("Expected 3xx to count as accessible, got %+v", summary)
	}
}

func TestAuditor_RetriesTransientFailures(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	st := newAuditStore(t)
	seedFact(t, st, "f1", server.URL, 80)

	summary, err := newTestAuditor(st).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := atomic.LoadInt32(&hits); got != 3 {
		t.Errorf("Expected 3 attempts, got %d", got)
	}
	if summary.Dead != 0 {
		t.Errorf("Expected source accessible after retries, got %+v", summary)
	}
}

func TestAuditor_SkipsFactsWithoutSource(t *testing.T) {
	st := newAuditStore(t)
	seedFact(t, st, "f1", model.None, 80)

	summary, err := newTestAuditor(st).Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Checked != 0 {
		t.Errorf("Expected sourceless facts skipped, got %+v", summary)
	}
}

func TestAuditor_UnreachableHostIsDead(t *testing.T) {
	st := newAuditStore(t)
	seedFact(t, st, "f1", "http://127.0.0.1:1/gone", 80)

	a := New(st, model.AuditConfig{Timeout: 500 * time.Millisecond, MaxWorkers: 2}, "veridex-test/1.0", "", "", nil)
	summary, err := a.Run(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.Dead != 1 {
		t.Errorf("Expected unreachable source marked dead, got %+v", summary)
	}
}

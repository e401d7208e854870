// Package audit re-checks the source URLs of settled FACT claims. The
// validation engine treats facts as settled and never re-analyzes them, so
// link rot is the one way a fact silently loses its footing; the auditor
// records a weak_evidence Validation for every dead or inaccessible source.
package audit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppetrenko/veridex/internal/ident"
	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/ppetrenko/veridex/internal/util"
	"go.uber.org/zap"
)

const maxRetries = 3

// sleepFunc is the sleep used between retries (injectable for tests)
var sleepFunc = time.Sleep

// SourceCap is the recommended confidence ceiling for a fact whose source
// no longer resolves. Matches the engine's weak-evidence cap.
const SourceCap = 60

// CheckResult is the outcome of probing one claim's source URL
type CheckResult struct {
	ClaimID      string
	URL          string
	IsAccessible bool
	StatusCode   int
	Error        string
}

// Auditor probes FACT sources concurrently and records findings
type Auditor struct {
	store      *store.Store
	httpClient *http.Client
	userAgent  string
	maxWorkers int
	log        *zap.Logger
	now        func() string
}

// New creates an auditor
func New(st *store.Store, cfg model.AuditConfig, userAgent, httpProxy, httpsProxy string, log *zap.Logger) *Auditor {
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 10
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Auditor{
		store: st,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  userAgent,
		maxWorkers: maxWorkers,
		log:        log,
		now:        model.NowUTC,
	}
}

// Summary reports one audit run
type Summary struct {
	Checked     int `json:"checked"`
	Dead        int `json:"dead"`
	Validations int `json:"validations_added"`
}

// Run probes every stored FACT's source and appends weak_evidence
// Validations for the dead ones under the store lock.
func (a *Auditor) Run(ctx context.Context) (Summary, error) {
	facts := a.store.Claims(store.CategoryFacts)

	var toCheck []model.Claim
	for _, f := range facts {
		if f.HasSource() {
			toCheck = append(toCheck, f)
		}
	}

	results := a.checkAll(ctx, toCheck)

	var validations []model.Validation
	for i, res := range results {
		if res.IsAccessible {
			continue
		}
		validations = append(validations, a.buildValidation(toCheck[i], res))
	}

	if len(validations) > 0 {
		tx, err := a.store.Begin()
		if err != nil {
			return Summary{}, err
		}
		defer tx.Release()
		if err := tx.AppendValidations(validations); err != nil {
			return Summary{}, fmt.Errorf("append validations: %w", err)
		}
	}

	summary := Summary{
		Checked:     len(toCheck),
		Dead:        len(validations),
		Validations: len(validations),
	}
	a.log.Info("audit complete",
		zap.Int("checked", summary.Checked),
		zap.Int("dead", summary.Dead),
	)
	return summary, nil
}

// checkAll probes all sources concurrently with a bounded worker count
func (a *Auditor) checkAll(ctx context.Context, claims []model.Claim) []CheckResult {
	results := make([]CheckResult, len(claims))
	var wg sync.WaitGroup
	semaphore := make(chan struct{}, a.maxWorkers)

	for i, claim := range claims {
		wg.Add(1)
		go func(idx int, c model.Claim) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = CheckResult{
					ClaimID: c.ID,
					URL:     c.SourceURL,
					Error:   "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = a.checkWithRetry(ctx, c)
		}(i, claim)
	}

	wg.Wait()
	return results
}

func (a *Auditor) checkWithRetry(ctx context.Context, claim model.Claim) CheckResult {
	var result CheckResult
	for attempt := 0; attempt < maxRetries; attempt++ {
		result = a.check(ctx, claim)
		if !isRetryable(result) {
			return result
		}
		if attempt < maxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			sleepFunc(backoff)
		}
	}
	return result
}

func (a *Auditor) check(ctx context.Context, claim model.Claim) CheckResult {
	result := CheckResult{ClaimID: claim.ID, URL: claim.SourceURL}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, claim.SourceURL, nil)
	if err != nil {
		result.Error = fmt.Sprintf("create request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.IsAccessible = true
	}
	return result
}

func (a *Auditor) buildValidation(claim model.Claim, res CheckResult) model.Validation {
	rationale := fmt.Sprintf("Source no longer resolves (status=%d); cap confidence to %d.", res.StatusCode, SourceCap)
	if res.Error != "" {
		rationale = fmt.Sprintf("Source unreachable (%s); cap confidence to %d.", res.Error, SourceCap)
	}
	recommended := claim.Confidence
	if recommended > SourceCap {
		recommended = SourceCap
	}
	ts := a.now()
	return model.Validation{
		ID:              ident.MakeID(string(model.EventWeakEvidence), claim.ID, ts),
		EventType:       model.EventWeakEvidence,
		RelatedClaimIDs: []string{claim.ID},
		Rationale:       rationale,
		ConfidenceDelta: 0,
		RecommendedConfidence: map[string]int{
			claim.ID: recommended,
		},
		CreatedAt: ts,
	}
}

// isRetryable reports whether the result indicates a transient failure
func isRetryable(result CheckResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" {
		s := strings.ToLower(result.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}

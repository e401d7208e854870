// Package collect implements the collector: a continuous loop that rotates
// through seed queries, asks a search endpoint for a lead, reduces the top
// result page to text, has a language model classify the finding, and
// appends the classified claim to the store. The collector's only contract
// with the rest of the system is "produces a classified claim record".
package collect

import (
	"context"
	"fmt"
	"time"

	"github.com/ppetrenko/veridex/internal/cache"
	"github.com/ppetrenko/veridex/internal/ident"
	"github.com/ppetrenko/veridex/internal/llm"
	"github.com/ppetrenko/veridex/internal/model"
	"github.com/ppetrenko/veridex/internal/store"
	"github.com/ppetrenko/veridex/internal/util"
	"go.uber.org/zap"
)

// Classifier is the slice of llm.Provider the collector needs
type Classifier interface {
	Classify(ctx context.Context, req llm.ClassifyRequest) (string, error)
}

// Searcher returns the top result for a query
type Searcher interface {
	Top(ctx context.Context, query string) (*SearchResult, error)
}

// TextFetcher reduces a URL to visible page text
type TextFetcher interface {
	VisibleText(ctx context.Context, rawURL string) string
}

// Collector runs collection cycles against the store
type Collector struct {
	store      *store.Store
	searcher   Searcher
	fetcher    TextFetcher
	classifier Classifier
	queries    []string
	interval   time.Duration
	maxCycles  int
	log        *zap.Logger
	now        func() string
}

// New wires a collector from configuration
func New(st *store.Store, cfg model.CollectorConfig, classifier Classifier, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}

	var pageCache cache.Cache
	if cfg.CacheDir != "" {
		pageCache = cache.NewLayeredCache(cfg.CacheTTL, cfg.CacheDir, cfg.CacheTTL)
	}

	searcher := NewSearchClient(cfg.SearchURL, cfg.UserAgent, cfg.HTTPTimeout, pageCache, cfg.CacheTTL)
	fetcher := NewPageFetcher(PageFetcherOptions{
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  cfg.UserAgent,
		MaxBytes:   cfg.MaxPageBytes,
		MaxChars:   cfg.MaxPageChars,
		HTTPProxy:  cfg.HTTPProxy,
		HTTPSProxy: cfg.HTTPSProxy,
		Robots:     util.NewRobotsChecker(cfg.UserAgent, cfg.HTTPTimeout),
		Limiter:    NewLimiter(cfg.RatePerSecond, cfg.RateBurst),
		Cache:      pageCache,
		CacheTTL:   cfg.CacheTTL,
	})

	queries := cfg.Queries
	if len(queries) == 0 {
		queries = model.DefaultQueries
	}

	return &Collector{
		store:      st,
		searcher:   searcher,
		fetcher:    fetcher,
		classifier: classifier,
		queries:    queries,
		interval:   cfg.Interval,
		maxCycles:  cfg.MaxCycles,
		log:        log,
		now:        model.NowUTC,
	}
}

// NewWithParts wires a collector from explicit collaborators (for tests)
func NewWithParts(st *store.Store, searcher Searcher, fetcher TextFetcher, classifier Classifier, queries []string, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{
		store:      st,
		searcher:   searcher,
		fetcher:    fetcher,
		classifier: classifier,
		queries:    queries,
		log:        log,
		now:        model.NowUTC,
	}
}

// Run loops collection cycles until the context is cancelled or maxCycles
// is reached. A cycle never fails for upstream reasons; only lock timeouts
// and store write failures propagate.
func (c *Collector) Run(ctx context.Context) error {
	c.log.Info("collector started",
		zap.Duration("interval", c.interval),
		zap.Int("queries", len(c.queries)),
	)
	cycle := 0
	for {
		if err := c.RunOnce(ctx); err != nil {
			return err
		}
		cycle++
		if c.maxCycles > 0 && cycle >= c.maxCycles {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.interval):
		}
	}
}

// RunOnce performs one collection cycle: search, fetch, classify, append.
// Unreachable upstreams degrade to a sentinel UNSURE record.
func (c *Collector) RunOnce(ctx context.Context) error {
	state := c.store.State()
	queryIndex := state.QueryCursor % len(c.queries)
	if queryIndex < 0 {
		queryIndex = 0
	}
	query := c.queries[queryIndex]

	var (
		raw         string
		resultURL   string
		resultTitle string
	)

	result, err := c.searcher.Top(ctx, query)
	if err != nil || result == nil {
		if err != nil {
			c.log.Warn("search unavailable", zap.String("query", query), zap.Error(err))
		}
		raw = DegradedBlock(
			"No search results for query.",
			"No search results available this cycle.",
			"Search endpoint returned empty or failed.",
		)
	} else {
		resultURL = result.URL
		resultTitle = result.Title
		pageText := c.fetcher.VisibleText(ctx, resultURL)
		raw, err = c.classifier.Classify(ctx, llm.ClassifyRequest{
			Query:    query,
			Title:    resultTitle,
			URL:      resultURL,
			Content:  result.Content,
			PageText: pageText,
		})
		if err != nil {
			c.log.Warn("classifier unavailable", zap.String("query", query), zap.Error(err))
			raw = DegradedBlock(
				"LLM unavailable; recorded placeholder.",
				"Unable to classify due to model error.",
				"Model endpoint unreachable.",
			)
		}
	}

	parsed := ApplyHardRules(ParseBlock(raw), resultURL)
	ts := c.now()

	episode := model.Episode{
		ID:            ident.MakeID(query, resultURL, ts),
		Timestamp:     ts,
		Query:         query,
		ResultURL:     resultURL,
		ResultTitle:   resultTitle,
		Class:         parsed.Class,
		Statement:     parsed.Statement,
		Update:        parsed.Update,
		SourceURL:     parsed.Source,
		EvidenceQuote: parsed.Evidence,
		Confidence:    parsed.Confidence,
		Reason:        parsed.Reason,
		RawOutput:     raw,
	}

	claim := model.Claim{
		ID:            ident.MakeID(query, parsed.Statement, ts),
		Class:         parsed.Class,
		Statement:     parsed.Statement,
		SourceURL:     parsed.Source,
		EvidenceQuote: parsed.Evidence,
		Confidence:    parsed.Confidence,
		Reason:        parsed.Reason,
		Timestamp:     ts,
	}
	if claim.HasSource() {
		claim.SourceDomain = ident.Domain(claim.SourceURL)
	}

	if err := c.append(episode, claim, queryIndex); err != nil {
		return err
	}

	c.log.Info("cycle complete",
		zap.String("query", query),
		zap.String("class", string(parsed.Class)),
		zap.String("source", parsed.Source),
		zap.Int("confidence", parsed.Confidence),
	)
	return nil
}

// append writes the episode, the claim and the state update in one lock
// scope so no reader ever sees the logs and counters disagree by more than
// one whole transaction.
func (c *Collector) append(episode model.Episode, claim model.Claim, queryIndex int) error {
	tx, err := c.store.Begin()
	if err != nil {
		return err
	}
	defer tx.Release()

	if err := tx.AppendEpisode(episode); err != nil {
		return fmt.Errorf("append episode: %w", err)
	}
	if err := tx.AppendClaim(claim); err != nil {
		return fmt.Errorf("append claim: %w", err)
	}

	st := tx.State()
	st.LastCollectorRun = episode.Timestamp
	st.QueryCursor = (queryIndex + 1) % len(c.queries)
	st.CountClaim(claim.Class)
	if err := tx.WriteState(st); err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	return nil
}

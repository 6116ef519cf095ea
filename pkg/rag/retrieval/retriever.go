package retrieval

import (
	"context"
	"sync"

	"finbot-be/internal/constant"
	"finbot-be/internal/dto"
	"finbot-be/internal/pkg/logger"
	"finbot-be/pkg/notion"
)

const (
	// defaultPageSize bounds payload size and token cost when no date
	// filter is set; a set range implies more rows are expected.
	defaultPageSize  = 30
	filteredPageSize = 200

	workerCount = 5

	excerptBlocks = 30
	excerptChars  = 500

	contentBodyField = "content_body"
)

// RecordSource is the store surface the retriever needs.
type RecordSource interface {
	QueryDatabase(ctx context.Context, databaseID string, q notion.Query) ([]notion.Record, error)
	PageExcerpt(ctx context.Context, pageID string, maxBlocks, maxChars int) (string, error)
}

// Retriever fans one classified query out across every source mapped to
// the domain plus the always-included global sources.
type Retriever struct {
	store   RecordSource
	sources map[string]string // source key -> database ID; empty means unconfigured
	logger  logger.ILogger
}

func NewRetriever(store RecordSource, sources map[string]string, log logger.ILogger) *Retriever {
	return &Retriever{store: store, sources: sources, logger: log}
}

// SourceSet returns the deduplicated source keys for a domain: domain
// sources first, then globals. KNOWLEDGE is global sources only.
func (r *Retriever) SourceSet(domain constant.Domain) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, key := range constant.DomainSources[domain] {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	for _, key := range constant.GlobalSources {
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}

// Retrieve queries all sources concurrently and joins on the full set.
// A failing source is logged and absent from the result; so is a
// source with zero surviving records. The map is therefore sparse.
func (r *Retriever) Retrieve(ctx context.Context, domain constant.Domain, dateRange dto.DateRange) (map[string][]notion.Record, error) {
	results := make(map[string][]notion.Record)
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, workerCount)

	for _, key := range r.SourceSet(domain) {
		databaseID := r.sources[key]
		if databaseID == "" {
			continue // source not configured, silently skipped
		}

		wg.Add(1)
		go func(key, databaseID string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			records, err := r.fetchSource(ctx, key, databaseID, domain, dateRange)
			if err != nil {
				r.logger.Warn("retrieval", "source query failed", map[string]interface{}{
					"source": key,
					"error":  err.Error(),
				})
				return
			}
			if len(records) == 0 {
				return
			}

			mu.Lock()
			results[key] = records
			mu.Unlock()
		}(key, databaseID)
	}

	wg.Wait()
	return results, nil
}

func (r *Retriever) fetchSource(ctx context.Context, key, databaseID string, domain constant.Domain, dateRange dto.DateRange) ([]notion.Record, error) {
	q := notion.Query{PageSize: defaultPageSize}

	if !dateRange.IsZero() {
		q.PageSize = filteredPageSize
		if domain == constant.DomainFinance {
			q.Filter = notion.DatePropertyFilter(constant.FinanceDateProperty, dateRange.Start, dateRange.End)
		} else {
			// No stable date property outside the finance ledgers;
			// bound the creation timestamp instead.
			q.Filter = notion.CreatedTimeFilter(dateRange.Start, dateRange.End)
		}
	}

	switch domain {
	case constant.DomainFinance, constant.DomainHealth, constant.DomainInvestment:
		q.Sorts = []notion.Sort{notion.CreatedTimeDescending}
	}

	records, err := r.store.QueryDatabase(ctx, databaseID, q)
	if err != nil {
		return nil, err
	}

	kept := records[:0]
	for _, rec := range records {
		if len(rec.Fields) == 0 {
			continue
		}
		if domain == constant.DomainKnowledge {
			r.attachExcerpt(ctx, key, &rec)
		}
		kept = append(kept, rec)
	}
	return kept, nil
}

// attachExcerpt pulls page body text for knowledge rows; a title alone
// carries no signal for free-text notes.
func (r *Retriever) attachExcerpt(ctx context.Context, key string, rec *notion.Record) {
	excerpt, err := r.store.PageExcerpt(ctx, rec.ID, excerptBlocks, excerptChars)
	if err != nil {
		r.logger.Warn("retrieval", "page excerpt failed", map[string]interface{}{
			"source": key,
			"page":   rec.ID,
			"error":  err.Error(),
		})
		return
	}
	if excerpt != "" {
		rec.Fields[contentBodyField] = excerpt
	}
}

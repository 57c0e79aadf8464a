package analytics

import "time"

type EventType string

const (
	EventQuery      EventType = "query"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventCorpusLoad EventType = "corpus_load"
	EventZeroResult EventType = "zero_result"
)

// QueryEvent is emitted once per evaluated query, carrying enough of the
// compiled query and its outcome to support the aggregator's top-query and
// latency-percentile reporting.
type QueryEvent struct {
	Type       EventType `json:"type"`
	QueryText  string    `json:"query_text"`
	ClauseLen  int       `json:"clause_len"`
	MatchCount int       `json:"match_count"`
	Returned   int       `json:"returned"`
	LatencyMs  int64     `json:"latency_ms"`
	CacheHit   bool      `json:"cache_hit"`
	Strict     bool      `json:"strict"`
	Timestamp  time.Time `json:"timestamp"`
	RequestID  string    `json:"request_id"`
}

// CorpusLoadEvent is emitted once when the query service finishes loading
// and indexing a corpus file.
type CorpusLoadEvent struct {
	Type       EventType `json:"type"`
	Path       string    `json:"path"`
	TokenCount int       `json:"token_count"`
	LatencyMs  int64     `json:"latency_ms"`
	Timestamp  time.Time `json:"timestamp"`
}

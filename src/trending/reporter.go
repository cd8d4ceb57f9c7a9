package trending

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/farcaster"
	"github.com/selfai-labs/selfai/src/metrics"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
	previewRunes = 100
	// sentiment is not analysed yet; every topic reports this value.
	placeholderSentiment = "positive"
)

// Source is the trend discovery collaborator.
type Source interface {
	Trending(ctx context.Context, limit int) ([]farcaster.Cast, error)
}

// Topic is one trending item as reported to callers.
type Topic struct {
	Topic           string `json:"topic"`
	EngagementCount int    `json:"engagementCount"`
	Sentiment       string `json:"sentiment"`
}

type Reporter struct {
	source  Source
	logger  zerolog.Logger
	timeout time.Duration
}

func NewReporter(source Source, logger zerolog.Logger, timeout time.Duration) *Reporter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Reporter{source: source, logger: logger, timeout: timeout}
}

// ClampLimit applies the default and the upper bound to a requested limit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// FetchTrending returns at most limit topics. Collaborator failures yield an
// empty list, never an error.
func (r *Reporter) FetchTrending(ctx context.Context, limit int) []Topic {
	limit = ClampLimit(limit)
	out := []Topic{}
	if r == nil || r.source == nil {
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	casts, err := r.source.Trending(ctx, limit)
	metrics.RecordCollaboratorCall("trending", err == nil, time.Since(start))
	if err != nil {
		r.logger.Warn().Err(err).Int("limit", limit).Msg("trending fetch failed")
		return out
	}

	for _, cast := range casts {
		if len(out) == limit {
			break
		}
		out = append(out, Topic{
			Topic:           companions.Preview(cast.Text, previewRunes),
			EngagementCount: cast.RepliesCount + cast.ReactionsCount,
			Sentiment:       placeholderSentiment,
		})
	}
	return out
}

// Topics returns only the topic strings, for prompt building.
func (r *Reporter) Topics(ctx context.Context, limit int) []string {
	topics := r.FetchTrending(ctx, limit)
	out := make([]string, 0, len(topics))
	for _, t := range topics {
		if t.Topic != "" {
			out = append(out, t.Topic)
		}
	}
	return out
}

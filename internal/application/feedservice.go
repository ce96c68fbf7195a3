package application

import (
	"context"
	"log/slog"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// FeedService glues feed retrieval to normalization. Upstream failures are
// collapsed into an empty payload here so a feed render never hard-fails;
// the distinction between "no data" and "unreachable" survives only in the
// logs.
type FeedService struct {
	feeds      driven.FeedFetcher
	normalizer *Normalizer
	logger     *slog.Logger
}

// NewFeedService creates a FeedService.
func NewFeedService(feeds driven.FeedFetcher, normalizer *Normalizer, logger *slog.Logger) *FeedService {
	return &FeedService{
		feeds:      feeds,
		normalizer: normalizer,
		logger:     logger,
	}
}

// GroupFeed fetches and normalizes the feed for a group. The returned error
// is cancellation only; everything else degrades to an empty feed with an
// unresolved group.
func (s *FeedService) GroupFeed(ctx context.Context, groupID int64) (model.NormalizedFeed, error) {
	payload, err := s.feeds.FetchGroupFeed(ctx, groupID)
	if err != nil {
		if ctx.Err() != nil {
			return model.NormalizedFeed{}, ctx.Err()
		}
		s.logger.Warn("group feed fetch degraded to empty",
			"group_id", groupID,
			"error", err,
		)
		payload = model.RawFeedPayload{}
	}

	return s.normalizer.Normalize(ctx, payload, groupID)
}

package driven

import (
	"context"
	"errors"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
)

// ErrUpstream tags transport and HTTP failures talking to the provider.
// Nothing in this module retries it; callers decide whether to degrade or
// surface it.
var ErrUpstream = errors.New("upstream provider request failed")

// ImageFetcher retrieves image binaries through the authenticated client.
type ImageFetcher interface {
	// FetchImage GETs the given absolute URL with the client's auth header
	// and returns the inline image. Failures wrap ErrUpstream.
	FetchImage(ctx context.Context, url string) (*model.InlineImage, error)
}

// FeedFetcher reads the provider's feed endpoints.
type FeedFetcher interface {
	ImageFetcher

	// FetchGroupFeed GETs the group-messages endpoint for the given group.
	// Failures wrap ErrUpstream; the caller collapses them into an empty
	// payload at the normalization boundary.
	FetchGroupFeed(ctx context.Context, groupID int64) (model.RawFeedPayload, error)
}

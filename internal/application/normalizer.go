// Package application contains use-case orchestration services.
package application

import (
	"context"
	"log/slog"

	"github.com/araddon/dateparse"
	"golang.org/x/sync/errgroup"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
	"github.com/yamfeedhq/yamfeed/internal/domain/port/driven"
)

// unknownLabel is emitted wherever provider data cannot be resolved.
const unknownLabel = "Unknown"

// senderTypeUser is the only sender type that survives normalization;
// system and bot messages are dropped entirely.
const senderTypeUser = "user"

// attachmentTypeImage is the only attachment type that survives
// normalization. Everything else (ymodules, polls, files) is dropped
// without a placeholder.
const attachmentTypeImage = "image"

const defaultImageFetchLimit = 4

// referenceKey identifies one cross-referenced entity in the provider's
// flat reference list.
type referenceKey struct {
	kind string
	id   int64
}

// referenceIndex maps (type, id) to a reference. Built with the first
// occurrence winning on duplicate keys, so lookups keep the semantics of a
// linear first-match scan.
type referenceIndex map[referenceKey]model.RawReference

func indexReferences(refs []model.RawReference) referenceIndex {
	index := make(referenceIndex, len(refs))
	for _, ref := range refs {
		key := referenceKey{kind: ref.Type, id: ref.ID}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = ref
	}
	return index
}

// Normalizer turns raw provider payloads into render-ready feeds. Aside
// from the per-attachment inline image fetches it is a pure transformation.
type Normalizer struct {
	images     driven.ImageFetcher
	dateFormat string
	fetchLimit int
	logger     *slog.Logger
}

// NewNormalizer creates a Normalizer. dateFormat is a Go reference layout
// for display dates; fetchLimit bounds concurrent image fetches and falls
// back to a small default when not positive.
func NewNormalizer(images driven.ImageFetcher, dateFormat string, fetchLimit int, logger *slog.Logger) *Normalizer {
	if fetchLimit <= 0 {
		fetchLimit = defaultImageFetchLimit
	}
	return &Normalizer{
		images:     images,
		dateFormat: dateFormat,
		fetchLimit: fetchLimit,
		logger:     logger,
	}
}

// Normalize derives the render-ready feed from a raw payload. An empty
// payload short-circuits to an unresolved group with no messages; the
// reference list is not consulted. The only error it returns is
// cancellation: a canceled context aborts the whole call rather than
// yielding a partial feed.
func (n *Normalizer) Normalize(ctx context.Context, payload model.RawFeedPayload, groupID int64) (model.NormalizedFeed, error) {
	feed := model.NormalizedFeed{
		Group:    model.GroupSummary{ID: groupID, Name: unknownLabel},
		Messages: []model.NormalizedMessage{},
	}

	if len(payload.Messages) == 0 {
		return feed, nil
	}

	refs := indexReferences(payload.References)
	feed.Group = resolveGroup(refs, groupID)

	for _, msg := range payload.Messages {
		if msg.SenderType != senderTypeUser {
			continue
		}

		normalized, err := n.normalizeMessage(ctx, refs, msg)
		if err != nil {
			return model.NormalizedFeed{}, err
		}
		feed.Messages = append(feed.Messages, normalized)
	}

	return feed, nil
}

func (n *Normalizer) normalizeMessage(ctx context.Context, refs referenceIndex, msg model.RawMessage) (model.NormalizedMessage, error) {
	author := resolveAuthor(refs, msg.SenderID)
	replies, shares := resolveThreadStats(refs, msg.ThreadID)

	attachments, err := n.resolveAttachments(ctx, msg.Attachments)
	if err != nil {
		return model.NormalizedMessage{}, err
	}

	likes := msg.LikedBy.Count
	if likes < 0 {
		likes = 0
	}

	return model.NormalizedMessage{
		AuthorName:  author.name,
		AuthorURL:   author.url,
		AuthorImage: author.image,
		Date:        n.formatDate(msg.CreatedAt),
		Body:        model.TrustedHTML(msg.Body.Rich),
		URL:         msg.WebURL,
		RepliedToID: msg.RepliedToID,
		ThreadID:    msg.ThreadID,
		LikeCount:   likes,
		ReplyCount:  replies,
		ShareCount:  shares,
		Attachments: attachments,
	}, nil
}

type authorInfo struct {
	name  string
	url   string
	image string
}

func resolveAuthor(refs referenceIndex, senderID int64) authorInfo {
	ref, ok := refs[referenceKey{kind: "user", id: senderID}]
	if !ok {
		return authorInfo{name: unknownLabel, image: unknownLabel}
	}
	return authorInfo{name: ref.FullName, url: ref.WebURL, image: ref.MugshotURL}
}

// resolveThreadStats derives reply and share counts from the thread
// reference. The provider's "updates" counter includes the thread's root
// message, so one is subtracted; a zero counter stays zero.
func resolveThreadStats(refs referenceIndex, threadID int64) (replies, shares int) {
	ref, ok := refs[referenceKey{kind: "thread", id: threadID}]
	if !ok {
		return 0, 0
	}

	if ref.Stats.Updates > 0 {
		replies = ref.Stats.Updates - 1
	}
	return replies, ref.Stats.Shares
}

func resolveGroup(refs referenceIndex, groupID int64) model.GroupSummary {
	ref, ok := refs[referenceKey{kind: "group", id: groupID}]
	if !ok {
		return model.GroupSummary{ID: groupID, Name: unknownLabel}
	}
	return model.GroupSummary{
		ID:    groupID,
		Name:  ref.FullName,
		URL:   ref.WebURL,
		Image: ref.MugshotURL,
	}
}

// resolveAttachments keeps image attachments in their original order and
// fetches each one's inline preview through the authenticated client.
// Fetches run concurrently up to the configured limit; a failed fetch
// leaves the attachment metadata intact with a nil inline image.
func (n *Normalizer) resolveAttachments(ctx context.Context, raw []model.RawAttachment) ([]model.NormalizedAttachment, error) {
	attachments := make([]model.NormalizedAttachment, 0, len(raw))
	for _, att := range raw {
		if att.Type != attachmentTypeImage {
			continue
		}

		name := att.FullName
		if name == "" {
			name = att.Name
		}
		if name == "" {
			name = unknownLabel
		}

		description := att.Description
		if description == "" {
			description = name
		}

		attachments = append(attachments, model.NormalizedAttachment{
			Type:        att.Type,
			Name:        name,
			URL:         att.WebURL,
			PreviewURL:  att.PreviewURL,
			Description: description,
			Thumbnail:   att.ThumbnailURL,
		})
	}

	if len(attachments) == 0 {
		return attachments, nil
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(n.fetchLimit)

	for i := range attachments {
		slot := &attachments[i]
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			img, err := n.images.FetchImage(groupCtx, slot.PreviewURL)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				n.logger.Warn("attachment image fetch degraded to nil",
					"url", slot.PreviewURL,
					"error", err,
				)
				return nil
			}

			slot.Inline = img
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return attachments, nil
}

// formatDate renders the provider timestamp with the configured layout.
// Unparsable input yields the literal "Unknown" rather than an error.
func (n *Normalizer) formatDate(raw string) string {
	if raw == "" {
		return unknownLabel
	}

	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return unknownLabel
	}

	return parsed.Format(n.dateFormat)
}

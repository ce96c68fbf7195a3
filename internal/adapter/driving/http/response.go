package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/yamfeedhq/yamfeed/internal/domain/model"
)

// textPolicy strips all markup from fields that are rendered as plain text.
// Provider display names occasionally arrive with embedded tags.
var textPolicy = bluemonday.StrictPolicy()

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// FeedResponse is the JSON representation of a normalized group feed.
type FeedResponse struct {
	Group    GroupResponse     `json:"group"`
	Messages []MessageResponse `json:"messages"`
}

// GroupResponse describes the feed's group.
type GroupResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	URL   string `json:"url"`
	Image string `json:"image"`
}

// MessageResponse is the JSON representation of a single feed message.
// BodyHTML carries the provider's rich markup verbatim; every other text
// field is stripped to plain text.
type MessageResponse struct {
	AuthorName  string               `json:"author_name"`
	AuthorURL   string               `json:"author_url"`
	AuthorImage string               `json:"author_image"`
	Date        string               `json:"date"`
	BodyHTML    string               `json:"body_html"`
	URL         string               `json:"url"`
	RepliedToID *int64               `json:"replied_to_id,omitempty"`
	ThreadID    int64                `json:"thread_id"`
	LikeCount   int                  `json:"like_count"`
	Likes       string               `json:"likes"`
	ReplyCount  int                  `json:"reply_count"`
	Replies     string               `json:"replies"`
	ShareCount  int                  `json:"share_count"`
	Shares      string               `json:"shares"`
	Attachments []AttachmentResponse `json:"attachments"`
}

// AttachmentResponse is the JSON representation of an image attachment.
type AttachmentResponse struct {
	Type        string               `json:"type"`
	Name        string               `json:"name"`
	URL         string               `json:"url"`
	PreviewURL  string               `json:"preview_url"`
	Description string               `json:"description"`
	Thumbnail   string               `json:"thumbnail"`
	Inline      *InlineImageResponse `json:"inline,omitempty"`
}

// InlineImageResponse carries a fetched image ready for embedding.
type InlineImageResponse struct {
	MimeType string `json:"mime_type"`
	DataURI  string `json:"data_uri"`
}

// CreateIdentityRequest is the JSON body for the identity registration endpoint.
type CreateIdentityRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// IdentityResponse is the JSON representation of a registered identity.
type IdentityResponse struct {
	Ref         string `json:"ref"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// countLabel renders a counter with its pluralized noun, e.g. "1 like",
// "3 replies".
func countLabel(count int, singular, plural string) string {
	if count == 1 {
		return "1 " + singular
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// toFeedResponse converts a normalized feed to its JSON representation.
func toFeedResponse(feed model.NormalizedFeed) FeedResponse {
	messages := make([]MessageResponse, 0, len(feed.Messages))
	for _, msg := range feed.Messages {
		messages = append(messages, toMessageResponse(msg))
	}

	return FeedResponse{
		Group: GroupResponse{
			ID:    feed.Group.ID,
			Name:  textPolicy.Sanitize(feed.Group.Name),
			URL:   feed.Group.URL,
			Image: feed.Group.Image,
		},
		Messages: messages,
	}
}

func toMessageResponse(msg model.NormalizedMessage) MessageResponse {
	attachments := make([]AttachmentResponse, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, toAttachmentResponse(att))
	}

	return MessageResponse{
		AuthorName:  textPolicy.Sanitize(msg.AuthorName),
		AuthorURL:   msg.AuthorURL,
		AuthorImage: msg.AuthorImage,
		Date:        msg.Date,
		BodyHTML:    string(msg.Body),
		URL:         msg.URL,
		RepliedToID: msg.RepliedToID,
		ThreadID:    msg.ThreadID,
		LikeCount:   msg.LikeCount,
		Likes:       countLabel(msg.LikeCount, "like", "likes"),
		ReplyCount:  msg.ReplyCount,
		Replies:     countLabel(msg.ReplyCount, "reply", "replies"),
		ShareCount:  msg.ShareCount,
		Shares:      countLabel(msg.ShareCount, "share", "shares"),
		Attachments: attachments,
	}
}

func toAttachmentResponse(att model.NormalizedAttachment) AttachmentResponse {
	resp := AttachmentResponse{
		Type:        att.Type,
		Name:        textPolicy.Sanitize(att.Name),
		URL:         att.URL,
		PreviewURL:  att.PreviewURL,
		Description: textPolicy.Sanitize(att.Description),
		Thumbnail:   att.Thumbnail,
	}

	if att.Inline != nil {
		resp.Inline = &InlineImageResponse{
			MimeType: att.Inline.MimeType,
			DataURI:  fmt.Sprintf("data:%s;base64,%s", att.Inline.MimeType, att.Inline.Base64Data),
		}
	}

	return resp
}

// toIdentityResponse converts a domain Identity to its JSON representation.
func toIdentityResponse(identity model.Identity) IdentityResponse {
	return IdentityResponse{
		Ref:         identity.Ref,
		Username:    identity.Username,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		CreatedAt:   identity.CreatedAt.UTC().Format(time.RFC3339),
	}
}

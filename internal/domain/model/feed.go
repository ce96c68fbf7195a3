package model

// RawFeedPayload is the provider's group-feed response: an ordered message
// list plus a flat list of cross-referenced entities (users, groups,
// threads). The provider does not guarantee (type, id) uniqueness in the
// reference list; consumers must treat the first matching entry as
// authoritative.
type RawFeedPayload struct {
	Messages   []RawMessage   `json:"messages"`
	References []RawReference `json:"references"`
}

// RawMessage is a single message as delivered by the provider. Most fields
// are optional on the wire; default substitution happens during
// normalization, not here.
type RawMessage struct {
	ID          int64           `json:"id"`
	SenderType  string          `json:"sender_type"`
	SenderID    int64           `json:"sender_id"`
	ThreadID    int64           `json:"thread_id"`
	RepliedToID *int64          `json:"replied_to_id"`
	CreatedAt   string          `json:"created_at"`
	WebURL      string          `json:"web_url"`
	Body        RawBody         `json:"body"`
	LikedBy     RawLikedBy      `json:"liked_by"`
	Attachments []RawAttachment `json:"attachments"`
}

// RawBody carries the provider's message body renditions.
type RawBody struct {
	Plain string `json:"plain"`
	Rich  string `json:"rich"`
}

// RawLikedBy carries the like counter for a message.
type RawLikedBy struct {
	Count int `json:"count"`
}

// RawAttachment is a message attachment. Only "image" attachments survive
// normalization; other types (ymodules, polls, files) are dropped.
type RawAttachment struct {
	Type         string `json:"type"`
	Name         string `json:"name"`
	FullName     string `json:"full_name"`
	WebURL       string `json:"web_url"`
	PreviewURL   string `json:"preview_url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Description  string `json:"description"`
}

// RawReference is one entry of the flat, heterogeneous reference list,
// tagged by Type ("user", "group", "thread", ...).
type RawReference struct {
	Type       string   `json:"type"`
	ID         int64    `json:"id"`
	FullName   string   `json:"full_name"`
	WebURL     string   `json:"web_url"`
	MugshotURL string   `json:"mugshot_url"`
	Stats      RawStats `json:"stats"`
}

// RawStats holds thread-level counters. Updates includes the thread's root
// message, so the reply count is Updates-1.
type RawStats struct {
	Updates int `json:"updates"`
	Shares  int `json:"shares"`
}

// TrustedHTML is pre-rendered markup received from the provider and passed
// through without re-escaping. The provider is inside the trust boundary;
// consumers must not escape it again, and must not widen the type to plain
// strings from untrusted sources.
type TrustedHTML string

// NormalizedFeed is the render-ready feed model derived from a
// RawFeedPayload. It shares no state with the raw payload.
type NormalizedFeed struct {
	Group    GroupSummary
	Messages []NormalizedMessage
}

// GroupSummary describes the feed's group. An unresolved group keeps its ID
// and carries the "Unknown" name with empty URL and image.
type GroupSummary struct {
	ID    int64
	Name  string
	URL   string
	Image string
}

// NormalizedMessage is one feed message with all references resolved.
type NormalizedMessage struct {
	AuthorName  string
	AuthorURL   string
	AuthorImage string
	Date        string // Formatted display date; "Unknown" when unparsable.
	Body        TrustedHTML
	URL         string
	RepliedToID *int64
	ThreadID    int64
	LikeCount   int
	ReplyCount  int
	ShareCount  int
	Attachments []NormalizedAttachment
}

// NormalizedAttachment is an image attachment with its metadata and,
// when the binary fetch succeeded, the inline image data.
type NormalizedAttachment struct {
	Type        string
	Name        string
	URL         string
	PreviewURL  string
	Description string
	Thumbnail   string
	Inline      *InlineImage
}

// InlineImage is an image binary fetched through the authenticated client,
// ready for embedding as a data URI.
type InlineImage struct {
	MimeType   string
	Base64Data string
}

package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// PendingUploadURL is the placeholder a client puts in a media entry's URL
// when the binary is uploaded alongside the submission. The upsert engine
// replaces placeholders with final storage URLs in array order.
const PendingUploadURL = "pending://upload"

// Contribution is one contributor's message for one recipient. At most one
// live row exists per (ContributorToken, RecipientID, EventID); resubmission
// updates content in place.
type Contribution struct {
	ID               uuid.UUID
	EventID          uuid.UUID
	RecipientID      uuid.UUID
	ContributorToken string
	ContributorName  *string
	Content          string
	Formatting       Formatting
	Media            []MediaItem
	Drawings         []Drawing
	Stickers         []Sticker
	Signature        *Signature
	BackgroundColor  string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Formatting holds rich-text presentation hints. The core never interprets
// them; they round-trip to the rendering collaborator.
type Formatting struct {
	Font      string `json:"font,omitempty"`
	FontSize  int    `json:"fontSize,omitempty"`
	Color     string `json:"color,omitempty"`
	Align     string `json:"align,omitempty"`
	Bold      bool   `json:"bold,omitempty"`
	Italic    bool   `json:"italic,omitempty"`
	Underline bool   `json:"underline,omitempty"`
}

// MediaItem is a positioned image or GIF on the contribution page.
type MediaItem struct {
	ID       string  `json:"id,omitempty"`
	URL      string  `json:"url"`
	Kind     string  `json:"kind,omitempty"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

// IsPendingUpload reports whether this entry still carries the upload
// placeholder instead of a final storage URL.
func (m MediaItem) IsPendingUpload() bool {
	return m.URL == PendingUploadURL
}

// Drawing is an opaque canvas capture. The stroke data is produced and
// consumed by the editor and renderer; the core only stores it.
type Drawing struct {
	ID     string          `json:"id,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
	X      float64         `json:"x,omitempty"`
	Y      float64         `json:"y,omitempty"`
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
}

// Sticker is a legacy positioned sticker. New clients send stickers as
// media entries; old payloads still carry this field.
type Sticker struct {
	ID       string  `json:"id,omitempty"`
	URL      string  `json:"url"`
	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
}

// Signature is the contributor's sign-off.
type Signature struct {
	Name string          `json:"name,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RawContent carries the structured sub-fields of a submission as received
// on the wire, before lenient decoding.
type RawContent struct {
	Formatting json.RawMessage
	Media      json.RawMessage
	Drawings   json.RawMessage
	Stickers   json.RawMessage
	Signature  json.RawMessage
}

// DecodedContent is the outcome of decoding RawContent. A malformed field
// degrades to its zero value instead of failing the submission; the names
// of degraded fields are recorded so the loss is observable.
type DecodedContent struct {
	Formatting Formatting
	Media      []MediaItem
	Drawings   []Drawing
	Stickers   []Sticker
	Signature  *Signature
	Degraded   []string
}

// DecodeContent decodes every structured sub-field independently. One bad
// field never poisons the others: partial content loss is preferred over
// total submission failure.
func DecodeContent(raw RawContent) DecodedContent {
	var out DecodedContent
	out.Formatting = decodeField[Formatting](raw.Formatting, "formatting", &out.Degraded)
	out.Media = decodeField[[]MediaItem](raw.Media, "media", &out.Degraded)
	out.Drawings = decodeField[[]Drawing](raw.Drawings, "drawings", &out.Degraded)
	out.Stickers = decodeField[[]Sticker](raw.Stickers, "stickers", &out.Degraded)

	if len(raw.Signature) > 0 && !isJSONNull(raw.Signature) {
		var sig Signature
		if err := json.Unmarshal(raw.Signature, &sig); err != nil {
			out.Degraded = append(out.Degraded, "signature")
		} else {
			out.Signature = &sig
		}
	}

	return out
}

func decodeField[T any](raw json.RawMessage, name string, degraded *[]string) T {
	var v T
	if len(raw) == 0 || isJSONNull(raw) {
		return v
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		*degraded = append(*degraded, name)
		var zero T
		return zero
	}
	return v
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

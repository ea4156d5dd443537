package ytdlp

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// unknownValue is shown for missing text fields.
const unknownValue = "Unknown"

// ErrNotJSONObject indicates a probe line that is valid JSON but not an object.
var ErrNotJSONObject = errors.New("metadata is not a JSON object")

// MediaMetadata is the normalized subset of the JSON printed by --dump-json.
// Every field is populated: missing values become "Unknown", 0 or an empty string.
type MediaMetadata struct {
	// ID is the extractor-specific identifier of the item.
	ID string
	// Title of the item, "Unknown" when absent.
	Title string
	// Description of the item, empty when absent.
	Description string
	// Uploader is the channel or account name, "Unknown" when absent.
	Uploader string
	// Duration in whole seconds, 0 when unknown.
	Duration int64
	// ViewCount is 0 when unknown.
	ViewCount int64
	// LikeCount is 0 when unknown.
	LikeCount int64
	// UploadDate in YYYYMMDD form, empty when absent.
	UploadDate string
	// ExtractorKey names the yt-dlp extractor, "Unknown" when absent.
	ExtractorKey string
	// FormatsCount is the number of formats offered by the source.
	FormatsCount int
	// Formats lists the offered formats in the order yt-dlp printed them.
	Formats []MediaFormat
	// WebpageURL is the canonical URL of the item.
	WebpageURL string
}

// rawMetadata mirrors the fields of interest in the yt-dlp JSON.
// Pointers distinguish absent and null values from zero.
type rawMetadata struct {
	ID           *string     `json:"id"`
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Uploader     *string     `json:"uploader"`
	Channel      *string     `json:"channel"`
	Duration     *float64    `json:"duration"`
	ViewCount    *float64    `json:"view_count"`
	LikeCount    *float64    `json:"like_count"`
	UploadDate   *string     `json:"upload_date"`
	ExtractorKey *string     `json:"extractor_key"`
	Formats      []rawFormat `json:"formats"`
	WebpageURL   *string     `json:"webpage_url"`
}

// MediaFormat is one entry of the formats offered by the source.
type MediaFormat struct {
	// ID is the format code accepted by --format.
	ID string
	// Extension is the container extension, empty when absent.
	Extension string
	// Resolution is "WIDTHxHEIGHT", "HEIGHTp", "audio only" or "Unknown".
	Resolution string
}

type rawFormat struct {
	FormatID   *string  `json:"format_id"`
	Ext        *string  `json:"ext"`
	Resolution *string  `json:"resolution"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	VCodec     *string  `json:"vcodec"`
}

// DurationValue returns the duration as time.Duration.
func (m *MediaMetadata) DurationValue() time.Duration {
	return time.Duration(m.Duration) * time.Second
}

// FormattedUploadDate returns the upload date as YYYY-MM-DD, or the raw value when it is not 8 digits.
func (m *MediaMetadata) FormattedUploadDate() string {
	const compactDateLength = 8

	if len(m.UploadDate) != compactDateLength {
		return m.UploadDate
	}

	return m.UploadDate[:4] + "-" + m.UploadDate[4:6] + "-" + m.UploadDate[6:]
}

// ParseMetadata decodes one JSON object and normalizes it.
// Valid JSON that is not an object, such as null or an array, is rejected.
func ParseMetadata(data []byte) (*MediaMetadata, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] != '{' && json.Valid(trimmed) {
		return nil, ErrNotJSONObject
	}

	var raw rawMetadata
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	uploader := text(raw.Uploader, "")
	if uploader == "" {
		uploader = text(raw.Channel, unknownValue)
	}

	return &MediaMetadata{
		ID:           text(raw.ID, ""),
		Title:        text(raw.Title, unknownValue),
		Description:  text(raw.Description, ""),
		Uploader:     uploader,
		Duration:     count(raw.Duration),
		ViewCount:    count(raw.ViewCount),
		LikeCount:    count(raw.LikeCount),
		UploadDate:   text(raw.UploadDate, ""),
		ExtractorKey: text(raw.ExtractorKey, unknownValue),
		FormatsCount: len(raw.Formats),
		Formats:      normalizeFormats(raw.Formats),
		WebpageURL:   text(raw.WebpageURL, ""),
	}, nil
}
// normalizeFormats returns nil when the source offered no formats.
func normalizeFormats(raw []rawFormat) []MediaFormat {
	if len(raw) == 0 {
		return nil
	}

	formats := make([]MediaFormat, 0, len(raw))
	for _, f := range raw {
		formats = append(formats, MediaFormat{
			ID:         text(f.FormatID, unknownValue),
			Extension:  text(f.Ext, ""),
			Resolution: f.resolution(),
		})
	}

	return formats
}

func (f *rawFormat) resolution() string {
	if value := text(f.Resolution, ""); value != "" {
		return value
	}

	width, height := count(f.Width), count(f.Height)

	switch {
	case width > 0 && height > 0:
		return strconv.FormatInt(width, 10) + "x" + strconv.FormatInt(height, 10)
	case height > 0:
		return strconv.FormatInt(height, 10) + "p"
	case text(f.VCodec, "") == "none":
		return "audio only"
	default:
		return unknownValue
	}
}

func text(v *string, fallback string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return fallback
	}

	return *v
}

// count converts a JSON number to a non-negative integer, 0 when absent.
func count(v *float64) int64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) {
		return 0
	}

	if *v >= math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(*v)
}

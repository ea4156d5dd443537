package platform

import "strings"

// ID identifies a hosting platform.
type ID string

// Unknown is returned by the classifier when no domain fragment matches.
const Unknown ID = "unknown"

// Kind tells the dispatcher how a platform's URLs are handled.
type Kind uint8

const (
	// KindExtract URLs are handed to the external extraction tool.
	KindExtract Kind = iota
	// KindDirect URLs point at files on a CDN and are fetched over plain HTTP.
	KindDirect
	// KindUnavailable platforms cannot be downloaded from at all.
	KindUnavailable
)

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindExtract:
		return "extract"
	case KindDirect:
		return "direct"
	case KindUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Quality names accepted by every ladder.
const (
	QualityBest  = "best"
	QualityWorst = "worst"
	QualityAudio = "audio"
)

// Format is the kind of content requested from a source.
type Format string

// Supported formats.
const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
	FormatImage Format = "image"
)

// ParseFormat normalizes a format name.
// Unrecognized names yield FormatVideo and false.
func ParseFormat(name string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatVideo, FormatAudio, FormatImage:
		return f, true
	case "":
		return FormatVideo, true
	default:
		return FormatVideo, false
	}
}

// Profile is the static description of a platform.
// Profiles are built once at start-up and never mutated afterwards.
type Profile struct {
	// ID is the stable identifier, also used as the output sub-directory.
	ID ID
	// Name is the display name.
	Name string
	// Category groups platforms in the listing.
	Category string
	// Status is the support status shown in the listing.
	Status string
	// Domains are the lower-case fragments matched against a URL host.
	Domains []string
	// Ladder maps an abstract quality to a format selector.
	Ladder map[string]string
	// DefaultSelector is used when the requested quality is not in the ladder.
	DefaultSelector string
	// MergeFormat is the container passed to --merge-output-format, if any.
	MergeFormat string
	// SupportsPlaylist allows playlist mode.
	SupportsPlaylist bool
	// SupportsGeoBypass adds --geo-bypass.
	SupportsGeoBypass bool
	// SupportsThumbnail adds --write-thumbnail next to the media.
	SupportsThumbnail bool
	// Kind selects the download path.
	Kind Kind
	// FailureHint is printed after a failed download.
	FailureHint []string
	// Notice and Alternative explain why an unavailable platform is refused.
	Notice      string
	Alternative string
	// AllowedHosts is the allow-list for direct downloads.
	AllowedHosts []string
	// PlaceholderName is used for direct downloads whose URL path yields no file name.
	PlaceholderName string
	// LoginURL is opened by the browser cookie export.
	LoginURL string
}

// Selector resolves a quality through the ladder.
// Unknown qualities silently fall back to the default selector.
func (p *Profile) Selector(quality string) string {
	if selector, ok := p.Ladder[strings.ToLower(strings.TrimSpace(quality))]; ok {
		return selector
	}

	return p.DefaultSelector
}

// IsHostAllowed reports whether host is on the direct download allow-list.
func (p *Profile) IsHostAllowed(host string) bool {
	for _, allowed := range p.AllowedHosts {
		if host == allowed {
			return true
		}
	}

	return false
}

func (p *Profile) clone() *Profile {
	c := *p
	c.Domains = append([]string(nil), p.Domains...)
	c.FailureHint = append([]string(nil), p.FailureHint...)
	c.AllowedHosts = append([]string(nil), p.AllowedHosts...)

	c.Ladder = make(map[string]string, len(p.Ladder))
	for k, v := range p.Ladder {
		c.Ladder[k] = v
	}

	return &c
}

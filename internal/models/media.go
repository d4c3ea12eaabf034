package models

type MediaKind string

const (
	MediaMovie MediaKind = "movie"
	MediaTV    MediaKind = "tv"
)

// MediaStatus mirrors the backend availability codes 1..5.
type MediaStatus int

const (
	StatusUnknown MediaStatus = iota + 1
	StatusPending
	StatusProcessing
	StatusPartiallyAvailable
	StatusAvailable
)

func (s MediaStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "Processing"
	case StatusPartiallyAvailable:
		return "Partially available"
	case StatusAvailable:
		return "Available"
	}
	return "Not requested"
}

// Requestable reports whether a new request makes sense for this tier.
func (s MediaStatus) Requestable() bool {
	return s == 0 || s == StatusUnknown || s == StatusPartiallyAvailable
}

type SearchResultItem struct {
	Title      string      `json:"title"`
	Year       string      `json:"year"`
	CatalogID  int         `json:"catalog_id"`
	Kind       MediaKind   `json:"kind"`
	PosterPath string      `json:"poster_path,omitempty"`
	Overview   string      `json:"overview,omitempty"`
	Status     MediaStatus `json:"status"`
	Status4K   MediaStatus `json:"status_4k"`
	MediaID    int         `json:"media_id,omitempty"`
}

func (i SearchResultItem) Label() string {
	if i.Year == "" {
		return i.Title
	}
	return i.Title + " (" + i.Year + ")"
}

// IssueType is the backend issue category.
type IssueType int

const (
	IssueVideo IssueType = iota + 1
	IssueAudio
	IssueSubtitles
	IssueOther
)

func (t IssueType) Valid() bool { return t >= IssueVideo && t <= IssueOther }

func (t IssueType) String() string {
	switch t {
	case IssueVideo:
		return "Video"
	case IssueAudio:
		return "Audio"
	case IssueSubtitles:
		return "Subtitles"
	case IssueOther:
		return "Other"
	}
	return "Unknown"
}

// Quality is the tier picked on the confirm buttons.
type Quality string

const (
	Quality1080p Quality = "1080p"
	Quality4K    Quality = "4k"
	QualityBoth  Quality = "both"
)

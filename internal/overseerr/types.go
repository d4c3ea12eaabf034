package overseerr

import (
	"strings"

	"mediabot/internal/models"
)

// Credentials selects how a call authenticates. APIKey and SessionToken are
// mutually exclusive; ActAsUser is only honored together with APIKey.
type Credentials struct {
	APIKey       string
	SessionToken string
	ActAsUser    int
}

func (c Credentials) Describe() string {
	switch {
	case c.SessionToken != "":
		return "session"
	case c.APIKey != "" && c.ActAsUser > 0:
		return "api-key as user"
	case c.APIKey != "":
		return "api-key"
	}
	return "anonymous"
}

type mediaInfo struct {
	ID       int `json:"id"`
	Status   int `json:"status"`
	Status4K int `json:"status4k"`
}

type searchResult struct {
	ID            int        `json:"id"`
	MediaType     string     `json:"mediaType"`
	Title         string     `json:"title"`
	Name          string     `json:"name"`
	OriginalTitle string     `json:"originalTitle"`
	OriginalName  string     `json:"originalName"`
	ReleaseDate   string     `json:"releaseDate"`
	FirstAirDate  string     `json:"firstAirDate"`
	PosterPath    string     `json:"posterPath"`
	Overview      string     `json:"overview"`
	MediaInfo     *mediaInfo `json:"mediaInfo"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	TotalPages   int            `json:"totalPages"`
	TotalResults int            `json:"totalResults"`
	Results      []searchResult `json:"results"`
}

func (r searchResult) toItem() (models.SearchResultItem, bool) {
	var kind models.MediaKind
	var date string
	switch r.MediaType {
	case string(models.MediaMovie):
		kind, date = models.MediaMovie, r.ReleaseDate
	case string(models.MediaTV):
		kind, date = models.MediaTV, r.FirstAirDate
	default:
		return models.SearchResultItem{}, false
	}

	title := firstNonEmpty(r.Name, r.OriginalName, r.Title, r.OriginalTitle)
	if title == "" {
		title = "Unknown Title"
	}
	year, _, _ := strings.Cut(date, "-")

	item := models.SearchResultItem{
		Title:      title,
		Year:       year,
		CatalogID:  r.ID,
		Kind:       kind,
		PosterPath: r.PosterPath,
		Overview:   r.Overview,
		Status:     models.StatusUnknown,
		Status4K:   models.StatusUnknown,
	}
	if r.MediaInfo != nil {
		item.MediaID = r.MediaInfo.ID
		item.Status = statusOf(r.MediaInfo.Status)
		item.Status4K = statusOf(r.MediaInfo.Status4K)
	}
	return item, true
}

func statusOf(code int) models.MediaStatus {
	if code < int(models.StatusUnknown) || code > int(models.StatusAvailable) {
		return models.StatusUnknown
	}
	return models.MediaStatus(code)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// RequestOptions describes a new media request.
type RequestOptions struct {
	Kind      models.MediaKind
	CatalogID int
	Is4K      bool
	UserID    int
}

type requestBody struct {
	MediaType string `json:"mediaType"`
	MediaID   int    `json:"mediaId"`
	Is4K      bool   `json:"is4k"`
	Seasons   string `json:"seasons,omitempty"`
	UserID    int    `json:"userId,omitempty"`
}

// RequestResult is the created request as echoed by the backend.
type RequestResult struct {
	ID    int `json:"id"`
	Media struct {
		ID     int `json:"id"`
		Status int `json:"status"`
	} `json:"media"`
}

type issueBody struct {
	IssueType int    `json:"issueType"`
	Message   string `json:"message"`
	MediaID   int    `json:"mediaId"`
}

// IssueResult is the created issue.
type IssueResult struct {
	ID        int `json:"id"`
	IssueType int `json:"issueType"`
}

type backendUser struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	Username     string `json:"username"`
	PlexUsername string `json:"plexUsername"`
}

func (u backendUser) toIdentity() models.Identity {
	name := firstNonEmpty(u.DisplayName, u.Username, u.PlexUsername, u.Email)
	return models.Identity{ID: u.ID, DisplayName: name, Email: u.Email}
}

type userListResponse struct {
	PageInfo struct {
		Pages    int `json:"pages"`
		PageSize int `json:"pageSize"`
		Results  int `json:"results"`
		Page     int `json:"page"`
	} `json:"pageInfo"`
	Results []backendUser `json:"results"`
}

type createUserBody struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Permissions int    `json:"permissions"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is a fresh backend session.
type LoginResult struct {
	Token string
	User  models.Identity
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

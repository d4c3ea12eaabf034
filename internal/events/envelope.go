package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	KeyMediaRequested  = "media.requested"
	KeyIssueReported   = "issue.reported"
	KeyIdentityCreated = "identity.created"
	KeyModeSwitched    = "mode.switched"
)

type Meta struct {
	// Interaction correlation id
	CorrelationID string `json:"correlation_id,omitempty"`
	// Unique event id
	ID       string    `json:"id"`
	Producer string    `json:"producer"`
	Time     time.Time `json:"time"`
	// Event name and version, e.g. media.requested.v1
	Type string `json:"type"`
}

type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

func NewEnvelope(key, correlationID string, data any) Envelope {
	return Envelope{
		Meta: Meta{
			CorrelationID: correlationID,
			ID:            uuid.NewString(),
			Producer:      "mediabot",
			Time:          time.Now().UTC(),
			Type:          key + ".v1",
		},
		Data: data,
	}
}

type MediaRequested struct {
	ChatUserID    int64  `json:"chat_user_id"`
	Mode          string `json:"mode"`
	BackendUserID int    `json:"backend_user_id,omitempty"`
	CatalogID     int    `json:"catalog_id"`
	MediaType     string `json:"media_type"`
	Title         string `json:"title"`
	Is4K          bool   `json:"is4k"`
	RequestID     int    `json:"request_id"`
}

type IssueReported struct {
	ChatUserID    int64  `json:"chat_user_id"`
	Mode          string `json:"mode"`
	BackendUserID int    `json:"backend_user_id,omitempty"`
	MediaID       int    `json:"media_id"`
	Title         string `json:"title"`
	IssueType     string `json:"issue_type"`
	IssueID       int    `json:"issue_id"`
}

type IdentityCreated struct {
	ChatUserID    int64  `json:"chat_user_id"`
	BackendUserID int    `json:"backend_user_id"`
	DisplayName   string `json:"display_name"`
}

type ModeSwitched struct {
	AdminID int64  `json:"admin_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

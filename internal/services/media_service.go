package services

import (
	"context"
	"fmt"
	"strings"

	"mediabot/internal/errs"
	"mediabot/internal/events"
	"mediabot/internal/models"
	"mediabot/internal/overseerr"
	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

type MediaServiceInterface interface {
	Enable4K() bool
	Search(ctx context.Context, query string) ([]models.SearchResultItem, error)
	Request(ctx context.Context, userID int64, item models.SearchResultItem, quality models.Quality) ([]TierOutcome, error)
	ReportIssue(ctx context.Context, userID int64, target models.SearchResultItem, issueType models.IssueType, description string) (*overseerr.IssueResult, error)
	Identities(ctx context.Context) ([]models.Identity, error)
	CreateIdentity(ctx context.Context, userID, chatID int64, draft models.IdentityDraft) (*models.Identity, error)
}

// TierOutcome is the result of requesting one quality tier.
type TierOutcome struct {
	Is4K   bool
	Result *overseerr.RequestResult
	Err    error
}

type MediaService struct {
	client    overseerr.ClientInterface
	sessions  SessionServiceInterface
	modes     ModeServiceInterface
	publisher events.Publisher
	enable4K  bool
	logger    providers.Logger
}

func NewMediaService(
	conf *structures.Config,
	client overseerr.ClientInterface,
	sessions SessionServiceInterface,
	modes ModeServiceInterface,
	publisher events.Publisher,
	logger providers.Logger,
) *MediaService {
	return &MediaService{
		client:    client,
		sessions:  sessions,
		modes:     modes,
		publisher: publisher,
		enable4K:  conf.Backend.Enable4K,
		logger:    logger,
	}
}

func (ms *MediaService) Enable4K() bool {
	return ms.enable4K
}

// Search always runs on the service key; no user attribution is needed to
// read the catalog.
func (ms *MediaService) Search(ctx context.Context, query string) ([]models.SearchResultItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search", errs.ErrInvalidInput)
	}
	items, err := ms.client.Search(ctx, ms.sessions.ServiceCredentials(), query)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("search %q: %w", query, errs.ErrNotFound)
	}
	return items, nil
}

// Request files one request per tier of quality under the credentials of the
// current mode. Tier failures are reported per outcome; the error return is
// reserved for failures that stop every tier.
func (ms *MediaService) Request(ctx context.Context, userID int64, item models.SearchResultItem, quality models.Quality) ([]TierOutcome, error) {
	var tiers []bool
	switch quality {
	case models.Quality1080p:
		tiers = []bool{false}
	case models.Quality4K:
		tiers = []bool{true}
	case models.QualityBoth:
		tiers = []bool{false, true}
	default:
		return nil, fmt.Errorf("%w: quality %q", errs.ErrInvalidInput, quality)
	}
	if quality != models.Quality1080p && !ms.enable4K {
		return nil, fmt.Errorf("%w: 4K requests are disabled", errs.ErrInvalidInput)
	}

	creds, err := ms.sessions.Attribution(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]TierOutcome, 0, len(tiers))
	for _, is4K := range tiers {
		res, err := ms.client.CreateRequest(ctx, creds, overseerr.RequestOptions{
			Kind:      item.Kind,
			CatalogID: item.CatalogID,
			Is4K:      is4K,
			UserID:    creds.ActAsUser,
		})
		out = append(out, TierOutcome{Is4K: is4K, Result: res, Err: err})
		if err != nil {
			ms.logger.Warnf(providers.TypeApp, "Request of %s %d (4k=%t) by user %d failed: %s", item.Kind, item.CatalogID, is4K, userID, err)
			continue
		}
		ms.logger.Infof(providers.TypeApp, "User %d requested %s %d (4k=%t) as request %d", userID, item.Kind, item.CatalogID, is4K, res.ID)
		publish(ctx, ms.publisher, ms.logger, events.KeyMediaRequested, events.MediaRequested{
			ChatUserID:    userID,
			Mode:          string(ms.modes.Mode()),
			BackendUserID: creds.ActAsUser,
			CatalogID:     item.CatalogID,
			MediaType:     string(item.Kind),
			Title:         item.Title,
			Is4K:          is4K,
			RequestID:     res.ID,
		})
	}
	return out, nil
}

func (ms *MediaService) ReportIssue(ctx context.Context, userID int64, target models.SearchResultItem, issueType models.IssueType, description string) (*overseerr.IssueResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, fmt.Errorf("%w: empty issue description", errs.ErrInvalidInput)
	}
	if target.MediaID == 0 {
		return nil, fmt.Errorf("report %q: %w: title is not in the library", target.Title, errs.ErrNotFound)
	}
	creds, err := ms.sessions.Attribution(ctx, userID)
	if err != nil {
		return nil, err
	}
	res, err := ms.client.CreateIssue(ctx, creds, target.MediaID, issueType, description)
	if err != nil {
		ms.logger.Warnf(providers.TypeApp, "Issue on media %d by user %d failed: %s", target.MediaID, userID, err)
		return nil, err
	}
	ms.logger.Infof(providers.TypeApp, "User %d reported %s issue %d on media %d", userID, issueType, res.ID, target.MediaID)
	publish(ctx, ms.publisher, ms.logger, events.KeyIssueReported, events.IssueReported{
		ChatUserID:    userID,
		Mode:          string(ms.modes.Mode()),
		BackendUserID: creds.ActAsUser,
		MediaID:       target.MediaID,
		Title:         target.Title,
		IssueType:     issueType.String(),
		IssueID:       res.ID,
	})
	return res, nil
}

func (ms *MediaService) Identities(ctx context.Context) ([]models.Identity, error) {
	return ms.client.ListUsers(ctx, ms.sessions.ServiceCredentials())
}

// CreateIdentity adds a backend user and selects it for userID.
func (ms *MediaService) CreateIdentity(ctx context.Context, userID, chatID int64, draft models.IdentityDraft) (*models.Identity, error) {
	if draft.Email == "" || draft.DisplayName == "" {
		return nil, fmt.Errorf("%w: incomplete identity", errs.ErrInvalidInput)
	}
	id, err := ms.client.CreateUser(ctx, ms.sessions.ServiceCredentials(), draft.Email, draft.DisplayName)
	if err != nil {
		return nil, err
	}
	if id.DisplayName == "" {
		id.DisplayName = draft.DisplayName
	}
	ms.logger.Infof(providers.TypeApp, "User %d created backend identity %d", userID, id.ID)
	if err := ms.sessions.SelectIdentity(ctx, userID, chatID, *id); err != nil {
		return id, err
	}
	publish(ctx, ms.publisher, ms.logger, events.KeyIdentityCreated, events.IdentityCreated{
		ChatUserID:    userID,
		BackendUserID: id.ID,
		DisplayName:   id.DisplayName,
	})
	return id, nil
}

package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabot/internal/errs"
	"mediabot/internal/events"
	"mediabot/internal/models"
	"mediabot/internal/structures"
	"mediabot/internal/testutil"
)

var venom = models.SearchResultItem{Title: "Venom", Year: "2018", CatalogID: 335983, Kind: models.MediaMovie}

func TestSearch_UsesServiceKey(t *testing.T) {
	f := newFixture(t)
	f.backend.SearchResults = []map[string]any{testutil.SearchHit(335983, "movie", "Venom", "2018-10-05", 0, 0)}

	items, err := f.media.Search(context.Background(), "  Venom ")
	require.NoError(t, err)
	require.Len(t, items, 1)

	calls := f.backend.CallsTo(http.MethodGet, "/search")
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.FakeAPIKey, calls[0].APIKey)
	assert.Empty(t, calls[0].Session)
	assert.Empty(t, calls[0].ActAs)
}

func TestSearch_EmptyAndNoHits(t *testing.T) {
	f := newFixture(t)
	_, err := f.media.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Empty(t, f.backend.Calls)

	_, err = f.media.Search(context.Background(), "zzzz")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestRequest_NeedsLoginInDirectMode(t *testing.T) {
	f := newFixture(t)
	_, err := f.media.Request(context.Background(), userID, venom, models.Quality1080p)
	assert.ErrorIs(t, err, errs.ErrNotLoggedIn)
	assert.Empty(t, f.backend.CallsTo(http.MethodPost, "/request"))
}

// A mode switch between two requests changes the attribution of the second.
func TestRequest_AttributionFollowsModeSwitch(t *testing.T) {
	f := newFixture(t)
	f.seedUsers(t, adminID, userID)
	ctx := WithCorrelationID(context.Background(), "")

	sess, err := f.sessions.Login(ctx, userID, "ann@example.com", "ann-pw")
	require.NoError(t, err)
	out, err := f.media.Request(ctx, userID, venom, models.Quality1080p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.NoError(t, out[0].Err)

	f.switchMode(t, models.ModeKeyImpersonation)
	require.NoError(t, f.sessions.SelectIdentity(ctx, userID, chatID, models.Identity{ID: 12, DisplayName: "Kids"}))
	out, err = f.media.Request(ctx, userID, venom, models.Quality1080p)
	require.NoError(t, err)
	require.NoError(t, out[0].Err)

	calls := f.backend.CallsTo(http.MethodPost, "/request")
	require.Len(t, calls, 2)
	assert.Equal(t, sess.Token, calls[0].Session)
	assert.Empty(t, calls[0].APIKey)
	assert.NotContains(t, calls[0].Body, "userId")

	assert.Empty(t, calls[1].Session)
	assert.Equal(t, testutil.FakeAPIKey, calls[1].APIKey)
	assert.Equal(t, "12", calls[1].ActAs)
	assert.Equal(t, float64(12), calls[1].Body["userId"])

	var requested []events.MediaRequested
	for _, p := range f.publisher.Published {
		if p.Key == events.KeyMediaRequested {
			requested = append(requested, p.Envelope.Data.(events.MediaRequested))
			assert.Equal(t, CorrelationID(ctx), p.Envelope.Meta.CorrelationID)
		}
	}
	require.Len(t, requested, 2)
	assert.Equal(t, "direct", requested[0].Mode)
	assert.Equal(t, "api", requested[1].Mode)
	assert.Equal(t, 12, requested[1].BackendUserID)
}

func TestRequest_BothTiers(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) { c.Access.DefaultMode = "api" })
	ctx := context.Background()
	require.NoError(t, f.sessions.SelectIdentity(ctx, userID, chatID, models.Identity{ID: 12}))

	out, err := f.media.Request(ctx, userID, venom, models.QualityBoth)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.False(t, out[0].Is4K)
	assert.True(t, out[1].Is4K)

	calls := f.backend.CallsTo(http.MethodPost, "/request")
	require.Len(t, calls, 2)
	assert.Equal(t, false, calls[0].Body["is4k"])
	assert.Equal(t, true, calls[1].Body["is4k"])
}

func TestRequest_4KDisabled(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) {
		c.Access.DefaultMode = "api"
		c.Backend.Enable4K = false
	})
	for _, q := range []models.Quality{models.Quality4K, models.QualityBoth, "8k"} {
		_, err := f.media.Request(context.Background(), userID, venom, q)
		assert.ErrorIs(t, err, errs.ErrInvalidInput, q)
	}
	assert.Empty(t, f.backend.Calls)
}

func TestRequest_RejectedTierIsReportedNotReturned(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) { c.Access.DefaultMode = "api" })
	ctx := context.Background()
	require.NoError(t, f.sessions.SelectIdentity(ctx, userID, chatID, models.Identity{ID: 12}))
	f.backend.RequestStatus = http.StatusConflict
	f.backend.RequestMessage = "Request for this media already exists."

	out, err := f.media.Request(ctx, userID, venom, models.Quality1080p)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Error(t, out[0].Err)
	assert.NotContains(t, f.publisher.Keys(), events.KeyMediaRequested)
}

func TestRequest_PublisherFailureIsIgnored(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) { c.Access.DefaultMode = "api" })
	ctx := context.Background()
	require.NoError(t, f.sessions.SelectIdentity(ctx, userID, chatID, models.Identity{ID: 12}))
	f.publisher.Err = assert.AnError

	out, err := f.media.Request(ctx, userID, venom, models.Quality1080p)
	require.NoError(t, err)
	assert.NoError(t, out[0].Err)
}

func TestReportIssue(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) { c.Access.DefaultMode = "api" })
	ctx := context.Background()
	require.NoError(t, f.sessions.SelectIdentity(ctx, userID, chatID, models.Identity{ID: 12}))

	available := venom
	available.MediaID = 77

	_, err := f.media.ReportIssue(ctx, userID, available, models.IssueAudio, "  ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	_, err = f.media.ReportIssue(ctx, userID, venom, models.IssueAudio, "no sound")
	assert.ErrorIs(t, err, errs.ErrNotFound)

	res, err := f.media.ReportIssue(ctx, userID, available, models.IssueAudio, "no sound")
	require.NoError(t, err)
	assert.NotZero(t, res.ID)

	calls := f.backend.CallsTo(http.MethodPost, "/issue")
	require.Len(t, calls, 1)
	assert.Equal(t, "12", calls[0].ActAs)
	assert.Equal(t, float64(2), calls[0].Body["issueType"])
	assert.Contains(t, f.publisher.Keys(), events.KeyIssueReported)
}

func TestCreateIdentity_SelectsNewIdentity(t *testing.T) {
	f := newFixture(t, func(c *structures.Config) { c.Access.DefaultMode = "api" })
	ctx := context.Background()

	_, err := f.media.CreateIdentity(ctx, userID, chatID, models.IdentityDraft{Email: "x@y.z"})
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	id, err := f.media.CreateIdentity(ctx, userID, chatID, models.IdentityDraft{Email: "x@y.z", DisplayName: "Guest"})
	require.NoError(t, err)
	assert.Equal(t, "Guest", id.DisplayName)

	sel, err := f.sessions.Selection(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, id.ID, sel.BackendUserID)
	assert.Contains(t, f.publisher.Keys(), events.KeyIdentityCreated)

	ids, err := f.media.Identities(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, id.ID, ids[0].ID)
}

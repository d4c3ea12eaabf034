package overseerr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/structures"
	"mediabot/internal/testutil"
)

var apiKey = Credentials{APIKey: testutil.FakeAPIKey}

func newClient(t *testing.T, baseURL string) (*Client, *testutil.MockMetrics) {
	t.Helper()
	metrics := testutil.NewMockMetrics()
	conf := &structures.Config{Backend: structures.BackendConfig{URL: baseURL, Timeout: 2 * time.Second}}
	return NewClient(conf, &testutil.MockLogger{}, metrics), metrics
}

func TestSearch_MapsResults(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.SearchResults = []map[string]any{
		testutil.SearchHit(1, "movie", "Venom", "2018-10-05", 0, 0),
		testutil.SearchHit(2, "tv", "Venom Show", "2020-01-01", 33, 5),
		{"id": 3, "mediaType": "person", "name": "Tom Hardy"},
		{"id": 4, "mediaType": "movie"},
	}
	c, metrics := newClient(t, fb.URL())

	items, err := c.Search(context.Background(), apiKey, "Venom 2")
	require.NoError(t, err)
	require.Len(t, items, 3, "people are skipped")

	assert.Equal(t, "Venom", items[0].Title)
	assert.Equal(t, "2018", items[0].Year)
	assert.Equal(t, models.MediaMovie, items[0].Kind)
	assert.Equal(t, models.StatusUnknown, items[0].Status)
	assert.Zero(t, items[0].MediaID)

	assert.Equal(t, models.MediaTV, items[1].Kind)
	assert.Equal(t, 33, items[1].MediaID)
	assert.Equal(t, models.StatusAvailable, items[1].Status)

	assert.Equal(t, "Unknown Title", items[2].Title)

	calls := fb.CallsTo(http.MethodGet, "/search")
	require.Len(t, calls, 1)
	assert.Equal(t, "query=Venom%202&page=1", calls[0].Query)
	assert.Equal(t, testutil.FakeAPIKey, calls[0].APIKey)
	assert.Equal(t, 1, metrics.BackendCalls["search"])
}

func TestSearch_HTTPError(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.FailAll = true
	c, _ := newClient(t, fb.URL())

	_, err := c.Search(context.Background(), apiKey, "x")
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "internal error", UpstreamMessage(err))
}

func TestSearch_Malformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()
	c, _ := newClient(t, srv.URL)

	_, err := c.Search(context.Background(), apiKey, "x")
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	assert.Zero(t, StatusOf(err))
}

func TestSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c, metrics := newClient(t, url)

	_, err := c.Search(context.Background(), apiKey, "x")
	require.ErrorIs(t, err, errs.ErrBackendUnavailable)
	assert.Zero(t, StatusOf(err))
	assert.Equal(t, 1, metrics.BackendCalls["search"])
}

func TestCreateRequest_TVAsksForAllSeasons(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c, _ := newClient(t, fb.URL())

	res, err := c.CreateRequest(context.Background(), Credentials{APIKey: testutil.FakeAPIKey, ActAsUser: 9},
		RequestOptions{Kind: models.MediaTV, CatalogID: 1399, Is4K: true, UserID: 9})
	require.NoError(t, err)
	assert.NotZero(t, res.ID)

	calls := fb.CallsTo(http.MethodPost, "/request")
	require.Len(t, calls, 1)
	body := calls[0].Body
	assert.Equal(t, "tv", body["mediaType"])
	assert.Equal(t, float64(1399), body["mediaId"])
	assert.Equal(t, true, body["is4k"])
	assert.Equal(t, "all", body["seasons"])
	assert.Equal(t, float64(9), body["userId"])
	assert.Equal(t, "9", calls[0].ActAs)
}

func TestCreateRequest_MovieHasNoSeasons(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c, _ := newClient(t, fb.URL())

	_, err := c.CreateRequest(context.Background(), apiKey, RequestOptions{Kind: models.MediaMovie, CatalogID: 1})
	require.NoError(t, err)
	body := fb.CallsTo(http.MethodPost, "/request")[0].Body
	assert.NotContains(t, body, "seasons")
	assert.NotContains(t, body, "userId")
}

func TestCreateRequest_OnlyCreatedIsSuccess(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.RequestStatus = http.StatusOK
	fb.RequestMessage = "Request already exists"
	c, _ := newClient(t, fb.URL())

	_, err := c.CreateRequest(context.Background(), apiKey, RequestOptions{Kind: models.MediaMovie, CatalogID: 1})
	require.Error(t, err)
	assert.Equal(t, http.StatusOK, StatusOf(err))
	assert.Equal(t, "Request already exists", UpstreamMessage(err))
}

func TestCreateIssue(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c, _ := newClient(t, fb.URL())

	res, err := c.CreateIssue(context.Background(), apiKey, 7, models.IssueSubtitles, "out of sync")
	require.NoError(t, err)
	assert.Equal(t, 3, res.IssueType)

	body := fb.CallsTo(http.MethodPost, "/issue")[0].Body
	assert.Equal(t, float64(7), body["mediaId"])
	assert.Equal(t, "out of sync", body["message"])
}

func TestCreateIssue_RejectsLocally(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c, _ := newClient(t, fb.URL())

	_, err := c.CreateIssue(context.Background(), apiKey, 0, models.IssueVideo, "x")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	_, err = c.CreateIssue(context.Background(), apiKey, 7, models.IssueType(9), "x")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)
	assert.Empty(t, fb.Calls)
}

func TestLogin_SetsToken(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Accounts = []testutil.FakeAccount{{ID: 5, Email: "a@b.c", Password: "pw", DisplayName: "Ann"}}
	c, _ := newClient(t, fb.URL())

	res, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, 5, res.User.ID)
	assert.Equal(t, "Ann", res.User.DisplayName)

	me, err := c.Me(context.Background(), Credentials{SessionToken: res.Token})
	require.NoError(t, err)
	assert.Equal(t, 5, me.ID)
	assert.Equal(t, res.Token, fb.CallsTo(http.MethodGet, "/auth/me")[0].Session)
}

func TestLogin_WrongPassword(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Accounts = []testutil.FakeAccount{{ID: 5, Email: "a@b.c", Password: "pw"}}
	c, _ := newClient(t, fb.URL())

	_, err := c.Login(context.Background(), "a@b.c", "nope")
	assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
}

func TestMe_ExpiredSession(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Accounts = []testutil.FakeAccount{{ID: 5, Email: "a@b.c", Password: "pw"}}
	c, _ := newClient(t, fb.URL())
	res, err := c.Login(context.Background(), "a@b.c", "pw")
	require.NoError(t, err)

	fb.ExpireSessions()
	_, err = c.Me(context.Background(), Credentials{SessionToken: res.Token})
	assert.True(t, IsUnauthorized(err))
}

func TestUsers_ListAndCreate(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	fb.Users = []map[string]any{
		{"id": 1, "email": "admin@x", "displayName": "Admin"},
		{"id": 2, "email": "kid@x", "plexUsername": "kiddo"},
	}
	c, _ := newClient(t, fb.URL())

	ids, err := c.ListUsers(context.Background(), apiKey)
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, "kiddo", ids[1].DisplayName)

	created, err := c.CreateUser(context.Background(), apiKey, "new@x", "Newbie")
	require.NoError(t, err)
	assert.Equal(t, "Newbie", created.DisplayName)
	assert.NotZero(t, created.ID)
}

func TestNotificationSettings_RoundTripKeepsUnknownFields(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	c, _ := newClient(t, fb.URL())
	ctx := context.Background()

	settings, err := c.GetNotificationSettings(ctx, apiKey, 4)
	require.NoError(t, err)
	assert.False(t, settings.TelegramEnabled())

	settings.EnableTelegram(777, 4062)
	require.NoError(t, c.UpdateNotificationSettings(ctx, apiKey, 4, settings))

	got, err := c.GetNotificationSettings(ctx, apiKey, 4)
	require.NoError(t, err)
	assert.True(t, got.TelegramEnabled())
	assert.Equal(t, 4062, got.TelegramTypes())
	assert.Equal(t, "777", got.TelegramChatID())
	assert.Equal(t, true, got["emailEnabled"])
}

func TestCredentials_Describe(t *testing.T) {
	assert.Equal(t, "session", Credentials{SessionToken: "x", APIKey: "k"}.Describe())
	assert.Equal(t, "api-key as user", Credentials{APIKey: "k", ActAsUser: 3}.Describe())
	assert.Equal(t, "api-key", Credentials{APIKey: "k"}.Describe())
	assert.Equal(t, "anonymous", Credentials{}.Describe())
}

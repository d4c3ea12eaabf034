// Package overseerr is a stateless client for the media-request backend's
// v1 REST API. Every call takes explicit credentials and performs exactly one
// HTTP round trip.
package overseerr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"mediabot/internal/errs"
	"mediabot/internal/models"
	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

const (
	sessionCookie   = "connect.sid"
	maxResponseSize = 4 << 20
	userPageSize    = 1000
)

type ClientInterface interface {
	Search(ctx context.Context, creds Credentials, query string) ([]models.SearchResultItem, error)
	CreateRequest(ctx context.Context, creds Credentials, opts RequestOptions) (*RequestResult, error)
	CreateIssue(ctx context.Context, creds Credentials, mediaID int, issueType models.IssueType, message string) (*IssueResult, error)
	ListUsers(ctx context.Context, creds Credentials) ([]models.Identity, error)
	CreateUser(ctx context.Context, creds Credentials, email, displayName string) (*models.Identity, error)
	GetNotificationSettings(ctx context.Context, creds Credentials, userID int) (NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, creds Credentials, userID int, settings NotificationSettings) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context, creds Credentials) (*models.Identity, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Backend.URL, "/"),
		http:    &http.Client{Timeout: conf.Backend.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// NewClientInterface exposes the client behind its interface for wiring.
func NewClientInterface(c *Client) ClientInterface {
	return c
}

type call struct {
	op     string
	method string
	path   string
	query  string
	body   any
	creds  Credentials
	expect []int
}

// do performs the round trip and returns the body of an expected reply.
func (c *Client) do(ctx context.Context, cl call) ([]byte, *http.Response, error) {
	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: encode body: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + cl.path
	if cl.query != "" {
		target += "?" + cl.query
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: build request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	applyCredentials(req, cl.creds)

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveBackendDuration(cl.op, time.Since(start))
	if err != nil {
		c.metrics.IncBackendCalls(cl.op, 0)
		c.logger.Warnf(providers.TypeBackend, "%s %s failed (%s): %s", cl.method, cl.path, cl.creds.Describe(), err)
		return nil, nil, transportError(cl.op, err)
	}
	defer resp.Body.Close()
	c.metrics.IncBackendCalls(cl.op, resp.StatusCode)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp, transportError(cl.op, err)
	}

	for _, code := range cl.expect {
		if resp.StatusCode == code {
			c.logger.Debugf(providers.TypeBackend, "%s %s -> %d (%s)", cl.method, cl.path, resp.StatusCode, cl.creds.Describe())
			return data, resp, nil
		}
	}

	herr := &HTTPError{Operation: cl.op, Status: resp.StatusCode, Message: errorMessage(data)}
	c.logger.Warnf(providers.TypeBackend, "%s %s -> %d (%s): %s", cl.method, cl.path, resp.StatusCode, cl.creds.Describe(), herr.Message)
	return nil, resp, herr
}

func applyCredentials(req *http.Request, creds Credentials) {
	switch {
	case creds.SessionToken != "":
		req.AddCookie(&http.Cookie{Name: sessionCookie, Value: creds.SessionToken})
	case creds.APIKey != "":
		req.Header.Set("X-Api-Key", creds.APIKey)
		if creds.ActAsUser > 0 {
			req.Header.Set("X-Api-User", strconv.Itoa(creds.ActAsUser))
		}
	}
}

func errorMessage(data []byte) string {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Error != "" {
			return eb.Error
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func decode(op string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return malformedError(op, err)
	}
	return nil
}

// encodeQuery escapes spaces as %20; the backend rejects '+' in search terms.
func encodeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func (c *Client) Search(ctx context.Context, creds Credentials, query string) ([]models.SearchResultItem, error) {
	const op = "search"
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/search",
		query:  "query=" + encodeQuery(query) + "&page=1",
		creds:  creds,
		expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	var sr searchResponse
	if err := decode(op, data, &sr); err != nil {
		return nil, err
	}
	items := make([]models.SearchResultItem, 0, len(sr.Results))
	for _, r := range sr.Results {
		if item, ok := r.toItem(); ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// CreateRequest succeeds only on 201; any other status is returned as an
// *HTTPError carrying the backend's message.
func (c *Client) CreateRequest(ctx context.Context, creds Credentials, opts RequestOptions) (*RequestResult, error) {
	const op = "create_request"
	body := requestBody{
		MediaType: string(opts.Kind),
		MediaID:   opts.CatalogID,
		Is4K:      opts.Is4K,
		UserID:    opts.UserID,
	}
	if opts.Kind == models.MediaTV {
		body.Seasons = "all"
	}
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/request",
		body:   body,
		creds:  creds,
		expect: []int{http.StatusCreated},
	})
	if err != nil {
		return nil, err
	}
	var res RequestResult
	if err := decode(op, data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateIssue(ctx context.Context, creds Credentials, mediaID int, issueType models.IssueType, message string) (*IssueResult, error) {
	const op = "create_issue"
	if mediaID <= 0 {
		return nil, fmt.Errorf("%s: %w: media has never been requested", op, errs.ErrNotFound)
	}
	if !issueType.Valid() {
		return nil, fmt.Errorf("%s: %w: issue type %d", op, errs.ErrInvalidInput, issueType)
	}
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/issue",
		body:   issueBody{IssueType: int(issueType), Message: message, MediaID: mediaID},
		creds:  creds,
		expect: []int{http.StatusOK, http.StatusCreated},
	})
	if err != nil {
		return nil, err
	}
	var res IssueResult
	if err := decode(op, data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListUsers(ctx context.Context, creds Credentials) ([]models.Identity, error) {
	const op = "list_users"
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/user",
		query:  "take=" + strconv.Itoa(userPageSize) + "&skip=0&sort=displayname",
		creds:  creds,
		expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	var ul userListResponse
	if err := decode(op, data, &ul); err != nil {
		return nil, err
	}
	out := make([]models.Identity, 0, len(ul.Results))
	for _, u := range ul.Results {
		out = append(out, u.toIdentity())
	}
	return out, nil
}

func (c *Client) CreateUser(ctx context.Context, creds Credentials, email, displayName string) (*models.Identity, error) {
	const op = "create_user"
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/user",
		body:   createUserBody{Email: email, Username: displayName},
		creds:  creds,
		expect: []int{http.StatusOK, http.StatusCreated},
	})
	if err != nil {
		return nil, err
	}
	var u backendUser
	if err := decode(op, data, &u); err != nil {
		return nil, err
	}
	id := u.toIdentity()
	return &id, nil
}

func notificationPath(userID int) string {
	return "/user/" + strconv.Itoa(userID) + "/settings/notifications"
}

func (c *Client) GetNotificationSettings(ctx context.Context, creds Credentials, userID int) (NotificationSettings, error) {
	const op = "get_notifications"
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   notificationPath(userID),
		creds:  creds,
		expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	settings := NotificationSettings{}
	if err := decode(op, data, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (c *Client) UpdateNotificationSettings(ctx context.Context, creds Credentials, userID int, settings NotificationSettings) error {
	_, _, err := c.do(ctx, call{
		op:     "set_notifications",
		method: http.MethodPost,
		path:   notificationPath(userID),
		body:   settings,
		creds:  creds,
		expect: []int{http.StatusOK, http.StatusNoContent},
	})
	return err
}

// Login opens a cookie session. Wrong credentials map to errs.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "login"
	data, resp, err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   "/auth/local",
		body:   loginBody{Email: email, Password: password},
		expect: []int{http.StatusOK},
	})
	if err != nil {
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("%s: %w", op, errs.ErrInvalidCredentials)
		}
		return nil, err
	}

	var token string
	for _, ck := range resp.Cookies() {
		if ck.Name == sessionCookie {
			token = ck.Value
		}
	}
	if token == "" {
		return nil, malformedError(op, fmt.Errorf("no %s cookie in reply", sessionCookie))
	}

	var u backendUser
	if err := decode(op, data, &u); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u.toIdentity()}, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	_, _, err := c.do(ctx, call{
		op:     "logout",
		method: http.MethodPost,
		path:   "/auth/logout",
		creds:  Credentials{SessionToken: token},
		expect: []int{http.StatusOK, http.StatusNoContent},
	})
	return err
}

// Me is the lightweight session probe.
func (c *Client) Me(ctx context.Context, creds Credentials) (*models.Identity, error) {
	const op = "me"
	data, _, err := c.do(ctx, call{
		op:     op,
		method: http.MethodGet,
		path:   "/auth/me",
		creds:  creds,
		expect: []int{http.StatusOK},
	})
	if err != nil {
		return nil, err
	}
	var u backendUser
	if err := decode(op, data, &u); err != nil {
		return nil, err
	}
	id := u.toIdentity()
	return &id, nil
}

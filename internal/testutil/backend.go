package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	json "github.com/goccy/go-json"
)

const (
	FakeAPIKey = "test-api-key"
	apiPrefix  = "/api/v1"
)

// BackendCall is one request received by FakeBackend.
type BackendCall struct {
	Method  string
	Path    string
	Query   string
	APIKey  string
	ActAs   string
	Session string
	Body    map[string]any
}

// FakeAccount is a user that can log in to FakeBackend.
type FakeAccount struct {
	ID          int
	Email       string
	Password    string
	DisplayName string
}

// FakeBackend is an in-memory media-request server speaking the subset of
// the v1 API the bot uses.
type FakeBackend struct {
	Server *httptest.Server

	mu            sync.Mutex
	Calls         []BackendCall
	SearchResults []map[string]any
	Users         []map[string]any
	Accounts      []FakeAccount
	Notifications map[int]map[string]any
	tokens        map[string]int
	nextID        int

	// RequestStatus overrides the reply of POST /request when non-zero.
	RequestStatus  int
	RequestMessage string
	// FailAll makes every endpoint answer 500.
	FailAll bool
}

func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{
		Notifications: make(map[int]map[string]any),
		tokens:        make(map[string]int),
		nextID:        100,
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL is the API base URL to configure the client with.
func (fb *FakeBackend) URL() string {
	return fb.Server.URL + apiPrefix
}

// ExpireSessions invalidates every issued session token.
func (fb *FakeBackend) ExpireSessions() {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.tokens = make(map[string]int)
}

// CallsTo returns the recorded calls for method and path.
func (fb *FakeBackend) CallsTo(method, path string) []BackendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	var out []BackendCall
	for _, c := range fb.Calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (fb *FakeBackend) SetAccountPassword(email, password string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.Accounts {
		if fb.Accounts[i].Email == email {
			fb.Accounts[i].Password = password
		}
	}
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	path := strings.TrimPrefix(r.URL.Path, apiPrefix)
	call := BackendCall{
		Method: r.Method,
		Path:   path,
		Query:  r.URL.RawQuery,
		APIKey: r.Header.Get("X-Api-Key"),
		ActAs:  r.Header.Get("X-Api-User"),
	}
	if ck, err := r.Cookie("connect.sid"); err == nil {
		call.Session = ck.Value
	}
	if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
		_ = json.Unmarshal(raw, &call.Body)
	}
	fb.Calls = append(fb.Calls, call)

	if fb.FailAll {
		reply(w, http.StatusInternalServerError, map[string]any{"message": "internal error"})
		return
	}

	switch {
	case path == "/auth/local" && r.Method == http.MethodPost:
		fb.login(w, call)
		return
	case path == "/auth/logout":
		delete(fb.tokens, call.Session)
		reply(w, http.StatusOK, map[string]any{"status": "ok"})
		return
	}

	userID, ok := fb.authenticate(call)
	if !ok {
		reply(w, http.StatusForbidden, map[string]any{"message": "You do not have permission to access this endpoint"})
		return
	}

	switch {
	case path == "/auth/me":
		reply(w, http.StatusOK, fb.userByID(userID))
	case path == "/search":
		reply(w, http.StatusOK, map[string]any{
			"page": 1, "totalPages": 1, "totalResults": len(fb.SearchResults), "results": fb.SearchResults,
		})
	case path == "/request" && r.Method == http.MethodPost:
		if fb.RequestStatus != 0 && fb.RequestStatus != http.StatusCreated {
			reply(w, fb.RequestStatus, map[string]any{"message": fb.RequestMessage})
			return
		}
		fb.nextID++
		reply(w, http.StatusCreated, map[string]any{"id": fb.nextID, "media": map[string]any{"id": 7, "status": 2}})
	case path == "/issue" && r.Method == http.MethodPost:
		fb.nextID++
		reply(w, http.StatusCreated, map[string]any{"id": fb.nextID, "issueType": call.Body["issueType"]})
	case path == "/user" && r.Method == http.MethodGet:
		reply(w, http.StatusOK, map[string]any{
			"pageInfo": map[string]any{"pages": 1, "pageSize": len(fb.Users), "results": len(fb.Users), "page": 1},
			"results":  fb.Users,
		})
	case path == "/user" && r.Method == http.MethodPost:
		fb.nextID++
		u := map[string]any{"id": fb.nextID, "email": call.Body["email"], "displayName": call.Body["username"]}
		fb.Users = append(fb.Users, u)
		reply(w, http.StatusCreated, u)
	case strings.HasSuffix(path, "/settings/notifications"):
		fb.notifications(w, r, call)
	default:
		reply(w, http.StatusNotFound, map[string]any{"message": "not found"})
	}
}

func (fb *FakeBackend) login(w http.ResponseWriter, call BackendCall) {
	email, _ := call.Body["email"].(string)
	password, _ := call.Body["password"].(string)
	for _, a := range fb.Accounts {
		if a.Email == email && a.Password == password {
			fb.nextID++
			token := fmt.Sprintf("tok-%d", fb.nextID)
			fb.tokens[token] = a.ID
			http.SetCookie(w, &http.Cookie{Name: "connect.sid", Value: token, Path: "/"})
			reply(w, http.StatusOK, map[string]any{"id": a.ID, "email": a.Email, "displayName": a.DisplayName})
			return
		}
	}
	reply(w, http.StatusUnauthorized, map[string]any{"message": "Access denied."})
}

// authenticate returns the acting backend user for a call.
func (fb *FakeBackend) authenticate(call BackendCall) (int, bool) {
	if call.Session != "" {
		id, ok := fb.tokens[call.Session]
		return id, ok
	}
	if call.APIKey == FakeAPIKey {
		if id, err := strconv.Atoi(call.ActAs); err == nil {
			return id, true
		}
		return 1, true
	}
	return 0, false
}

func (fb *FakeBackend) userByID(id int) map[string]any {
	for _, a := range fb.Accounts {
		if a.ID == id {
			return map[string]any{"id": a.ID, "email": a.Email, "displayName": a.DisplayName}
		}
	}
	return map[string]any{"id": id}
}

func (fb *FakeBackend) notifications(w http.ResponseWriter, r *http.Request, call BackendCall) {
	parts := strings.Split(strings.Trim(call.Path, "/"), "/")
	id, err := strconv.Atoi(parts[1])
	if err != nil {
		reply(w, http.StatusBadRequest, map[string]any{"message": "bad id"})
		return
	}
	if r.Method == http.MethodPost {
		fb.Notifications[id] = call.Body
		reply(w, http.StatusOK, call.Body)
		return
	}
	settings, ok := fb.Notifications[id]
	if !ok {
		settings = map[string]any{
			"emailEnabled":      true,
			"notificationTypes": map[string]any{"email": 0, "telegram": 0},
		}
	}
	reply(w, http.StatusOK, settings)
}

func reply(w http.ResponseWriter, status int, body any) {
	data, _ := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// SearchHit builds a search result entry as the backend returns it.
func SearchHit(id int, mediaType, title, date string, mediaID, status int) map[string]any {
	hit := map[string]any{"id": id, "mediaType": mediaType}
	if mediaType == "tv" {
		hit["name"] = title
		hit["firstAirDate"] = date
	} else {
		hit["title"] = title
		hit["releaseDate"] = date
	}
	if mediaID != 0 {
		hit["mediaInfo"] = map[string]any{"id": mediaID, "status": status, "status4k": 1}
	}
	return hit
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/clubhouse/internal/api"
	"github.com/mcoot/clubhouse/internal/api/apierr"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/factory"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/storage"
	"github.com/mcoot/clubhouse/internal/testutil"
)

const adminPassword = "admin123"

// testServer creates a test server with all dependencies
type testServer struct {
	handler    http.Handler
	app        *factory.TestApp
	adminToken string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	created, err := app.AuthService.Bootstrap(t.Context(), auth.BootstrapConfig{
		Email:    "admin@badminton.club",
		Password: adminPassword,
		Name:     "Administrator",
	})
	require.NoError(t, err)
	require.True(t, created)

	router := api.NewRouter(api.RouterConfig{
		Logger:              testutil.NopLogger(),
		Storage:             app.Storage,
		Clock:               app.Clock,
		Issuer:              app.Issuer,
		AuthService:         app.AuthService,
		RegistrationService: app.RegistrationService,
		RosterService:       app.RosterService,
		CalendarService:     app.CalendarService,
		NewsService:         app.NewsService,
		AllowedOrigins:      []string{"https://club.test"},
	})

	ts := &testServer{handler: router, app: app}
	ts.adminToken = ts.login(t, "admin@badminton.club", adminPassword)
	return ts
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		encoded, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(encoded)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.LoginResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Token
}

// member creates a player and a linked member account, returning the player id and a token
func (ts *testServer) member(t *testing.T, name string) (int64, string) {
	t.Helper()
	email := name + "@club.test"

	rr := ts.request(http.MethodPost, "/api/players", map[string]any{"name": name, "email": email}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var player response.Player
	decode(t, rr, &player)

	rr = ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": email, "password": "secret1", "name": name, "role": "member", "player_id": player.ID,
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	return player.ID, ts.login(t, email, "secret1")
}

func (ts *testServer) createEvent(t *testing.T, body map[string]any) response.Event {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/events", body, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var event response.Event
	decode(t, rr, &event)
	return event
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body apierr.ErrorResponse
	decode(t, rr, &body)
	return body.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var health response.Health
	decode(t, rr, &health)
	assert.Equal(t, "OK", health.Status)
	assert.Equal(t, "ok", health.Storage)
	assert.Equal(t, ts.app.MockClock.Now(), health.Timestamp)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

// unreachableStorage fails every ping
type unreachableStorage struct {
	storage.Storage
}

func (unreachableStorage) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealthCheckReportsStorageOutage(t *testing.T) {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Storage: unreachableStorage{app.Storage},
		Clock:   app.Clock,
		Issuer:  app.Issuer,
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	var health response.Health
	decode(t, rr, &health)
	assert.Equal(t, "unavailable", health.Storage)
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "ADMIN@badminton.club", "password": adminPassword}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.LoginResponse
	decode(t, rr, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "admin", resp.User.Role)
	assert.NotContains(t, rr.Body.String(), "password")
	assert.NotContains(t, rr.Body.String(), "$2a$")
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ts := newTestServer(t)

	wrongPassword := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@badminton.club", "password": "nope-nope"}, "")
	unknownEmail := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "ghost@badminton.club", "password": "nope-nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, wrongPassword.Code, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestLoginPendingAccount(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": "pending@club.test", "password": "secret1", "name": "Pending", "role": "member", "status": "pending",
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "pending@club.test", "password": "secret1"}, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeAccountNotApproved, errorCode(t, rr))

	// A wrong password never reveals the approval status
	rr = ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "pending@club.test", "password": "wrong-one"}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestLoginValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{"email": "not-an-email", "password": "x"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidation, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/auth/login", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMissingAndInvalidTokens(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/auth/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeMissingToken, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeInvalidToken, errorCode(t, rr))
}

func TestAuthorizationSchemeIsNotChecked(t *testing.T) {
	ts := newTestServer(t)

	send := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", header)
		rr := httptest.NewRecorder()
		ts.handler.ServeHTTP(rr, req)
		return rr
	}

	rr := send("Token garbage")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeInvalidToken, errorCode(t, rr))

	rr = send("Token " + ts.adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = send("Bearer")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, apierr.CodeMissingToken, errorCode(t, rr))
}

func TestMe(t *testing.T) {
	ts := newTestServer(t)
	playerID, token := ts.member(t, "alice")

	rr := ts.request(http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	var me response.Me
	decode(t, rr, &me)
	assert.Equal(t, "alice@club.test", me.Email)
	assert.Equal(t, "member", me.Role)
	require.NotNil(t, me.PlayerID)
	assert.Equal(t, playerID, *me.PlayerID)
}

func TestChangePassword(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.member(t, "alice")

	rr := ts.request(http.MethodPost, "/api/auth/change-password", map[string]string{"currentPassword": "wrong1", "newPassword": "newsecret"}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/change-password", map[string]string{"currentPassword": "secret1", "newPassword": "short"}, token)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/auth/change-password", map[string]string{"currentPassword": "secret1", "newPassword": "newsecret"}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	ts.login(t, "alice@club.test", "newsecret")
}

func TestUsersAreAdminOnly(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.member(t, "alice")

	rr := ts.request(http.MethodGet, "/api/users", nil, token)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeForbidden, errorCode(t, rr))

	rr = ts.request(http.MethodGet, "/api/users", nil, ts.adminToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var users []response.User
	decode(t, rr, &users)
	require.Len(t, users, 2)
	require.NotNil(t, users[1].PlayerName)
	assert.Equal(t, "alice", *users[1].PlayerName)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)

	body := map[string]any{"email": "Admin@Badminton.club", "password": "secret1", "name": "Dup", "role": "member"}
	rr := ts.request(http.MethodPost, "/api/users", body, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeDuplicateEmail, errorCode(t, rr))
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": "bob@club.test", "password": "secret1", "name": "Bob", "role": "member",
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	var bob response.User
	decode(t, rr, &bob)

	path := fmt.Sprintf("/api/users/%d", bob.ID)
	rr = ts.request(http.MethodPut, path, map[string]any{
		"email": "robert@club.test", "name": "Robert", "role": "admin", "password": "another1",
	}, ts.adminToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated response.User
	decode(t, rr, &updated)
	assert.Equal(t, "Robert", updated.Name)
	assert.Equal(t, "admin", updated.Role)

	ts.login(t, "robert@club.test", "another1")

	rr = ts.request(http.MethodPut, path, map[string]any{
		"email": "robert@club.test", "name": "Robert", "role": "admin", "password": "123",
	}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLastAdminIsProtected(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/auth/me", nil, ts.adminToken)
	var me response.Me
	decode(t, rr, &me)
	path := fmt.Sprintf("/api/users/%d", me.ID)

	rr = ts.request(http.MethodDelete, path, nil, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeLastAdmin, errorCode(t, rr))

	rr = ts.request(http.MethodPut, path, map[string]any{"email": me.Email, "name": me.Name, "role": "member"}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeLastAdmin, errorCode(t, rr))

	// With a second admin the first may go
	rr = ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": "second@club.test", "password": "secret1", "name": "Second", "role": "admin",
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	rr = ts.request(http.MethodDelete, path, nil, ts.adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestPlayersListScopedToMember(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")
	ts.member(t, "bob")

	rr := ts.request(http.MethodGet, "/api/players", nil, ts.adminToken)
	var all []response.Player
	decode(t, rr, &all)
	assert.Len(t, all, 2)

	rr = ts.request(http.MethodGet, "/api/players", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var own []response.Player
	decode(t, rr, &own)
	require.Len(t, own, 1)
	assert.Equal(t, aliceID, own[0].ID)

	// An unlinked member sees an empty list
	rr = ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": "carol@club.test", "password": "secret1", "name": "Carol", "role": "member",
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	carolToken := ts.login(t, "carol@club.test", "secret1")

	rr = ts.request(http.MethodGet, "/api/players", nil, carolToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestUpdatePlayerSelfOrAdmin(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")
	bobID, _ := ts.member(t, "bob")

	body := map[string]any{"name": "Alice A.", "email": "alice@club.test", "matches_played": 10, "wins": 7}
	rr := ts.request(http.MethodPut, fmt.Sprintf("/api/players/%d", aliceID), body, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var player response.Player
	decode(t, rr, &player)
	assert.Equal(t, 3, player.Losses)
	assert.Equal(t, 70, player.WinRate)

	rr = ts.request(http.MethodPut, fmt.Sprintf("/api/players/%d", bobID), body, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/api/players/%d", bobID), nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/api/players/%d", bobID), nil, ts.adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestUpdatePlayerRejectsMoreWinsThanMatches(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")

	body := map[string]any{"name": "Alice", "email": "alice@club.test", "matches_played": 2, "wins": 3}
	rr := ts.request(http.MethodPut, fmt.Sprintf("/api/players/%d", aliceID), body, aliceToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidation, errorCode(t, rr))
}

func TestDeletePlayerIsIdempotent(t *testing.T) {
	ts := newTestServer(t)
	aliceID, _ := ts.member(t, "alice")

	path := fmt.Sprintf("/api/players/%d", aliceID)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodDelete, path, nil, ts.adminToken).Code)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodDelete, path, nil, ts.adminToken).Code)
}

func TestEventRegistrationFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")
	bobID, bobToken := ts.member(t, "bob")

	event := ts.createEvent(t, map[string]any{"name": "Club night", "date": "2024-03-05", "location": "Gym"})
	assert.Equal(t, "2024-03-05", event.Date)
	assert.Empty(t, event.Participants)

	register := fmt.Sprintf("/api/events/%d/register/%d", event.ID, aliceID)
	rr := ts.request(http.MethodPost, register, nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// Twice is a duplicate
	rr = ts.request(http.MethodPost, register, nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeDuplicateRegistration, errorCode(t, rr))

	// Bob cannot register Alice
	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, aliceID), nil, bobToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// Admin can register Bob
	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, bobID), nil, ts.adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID), nil, bobToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var got response.Event
	decode(t, rr, &got)
	assert.Equal(t, []int64{aliceID, bobID}, got.Participants)

	// Unregister is idempotent
	unregister := fmt.Sprintf("/api/events/%d/unregister/%d", event.ID, aliceID)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodDelete, unregister, nil, aliceToken).Code)
	assert.Equal(t, http.StatusOK, ts.request(http.MethodDelete, unregister, nil, aliceToken).Code)

	rr = ts.request(http.MethodGet, "/api/events", nil, aliceToken)
	var events []response.Event
	decode(t, rr, &events)
	require.Len(t, events, 1)
	assert.Equal(t, []int64{bobID}, events[0].Participants)
}

func TestEventCapacity(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")
	bobID, bobToken := ts.member(t, "bob")

	event := ts.createEvent(t, map[string]any{"name": "Small", "date": "2024-03-05", "max_participants": 1})

	rr := ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, aliceID), nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, bobID), nil, bobToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeEventFull, errorCode(t, rr))
}

func TestRegisterUnlinkedMemberIsForbidden(t *testing.T) {
	ts := newTestServer(t)
	aliceID, _ := ts.member(t, "alice")
	event := ts.createEvent(t, map[string]any{"name": "Night", "date": "2024-03-05"})

	rr := ts.request(http.MethodPost, "/api/users", map[string]any{
		"email": "carol@club.test", "password": "secret1", "name": "Carol", "role": "member",
	}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code)
	carolToken := ts.login(t, "carol@club.test", "secret1")

	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, aliceID), nil, carolToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestDeleteEventCascades(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")
	event := ts.createEvent(t, map[string]any{"name": "Night", "date": "2024-03-05"})

	rr := ts.request(http.MethodPost, fmt.Sprintf("/api/events/%d/register/%d", event.ID, aliceID), nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodDelete, fmt.Sprintf("/api/events/%d", event.ID), nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodDelete, fmt.Sprintf("/api/events/%d", event.ID), nil, ts.adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, fmt.Sprintf("/api/events/%d", event.ID), nil, ts.adminToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	participants, err := ts.app.RegistrationService.ListParticipants(context.Background(), model.EventRef(model.EventID(event.ID)))
	require.NoError(t, err)
	assert.Empty(t, participants)
}

func TestCreateEventValidation(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/events", map[string]any{"name": "Night", "date": "March 5th"}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPost, "/api/events", map[string]any{"date": "2024-03-05"}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTournamentFlow(t *testing.T) {
	ts := newTestServer(t)
	aliceID, aliceToken := ts.member(t, "alice")

	rr := ts.request(http.MethodPost, "/api/tournaments", map[string]any{"name": "Open", "date": "2024-06-01", "format": "doubles"}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var tournament response.Tournament
	decode(t, rr, &tournament)
	assert.Equal(t, "upcoming", tournament.Status)

	rr = ts.request(http.MethodPost, fmt.Sprintf("/api/tournaments/%d/register/%d", tournament.ID, aliceID), nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)

	status := fmt.Sprintf("/api/tournaments/%d/status", tournament.ID)
	rr = ts.request(http.MethodPatch, status, map[string]string{"status": "ongoing"}, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPatch, status, map[string]string{"status": "finished"}, ts.adminToken)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(http.MethodPatch, status, map[string]string{"status": "ongoing"}, ts.adminToken)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/tournaments", nil, aliceToken)
	var tournaments []response.Tournament
	decode(t, rr, &tournaments)
	require.Len(t, tournaments, 1)
	assert.Equal(t, "ongoing", tournaments[0].Status)
	assert.Equal(t, []int64{aliceID}, tournaments[0].Participants)

	rr = ts.request(http.MethodDelete, fmt.Sprintf("/api/tournaments/%d/unregister/%d", tournament.ID, aliceID), nil, aliceToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodPatch, "/api/tournaments/999/status", map[string]string{"status": "ongoing"}, ts.adminToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNews(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.member(t, "alice")

	rr := ts.request(http.MethodPost, "/api/news", map[string]string{"title": "Hi", "content": "News"}, aliceToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodPost, "/api/news", map[string]string{"title": "Results", "content": "We won"}, ts.adminToken)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var item response.News
	decode(t, rr, &item)
	require.NotNil(t, item.AuthorName)
	assert.Equal(t, "Administrator", *item.AuthorName)

	rr = ts.request(http.MethodGet, "/api/news", nil, aliceToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var items []response.News
	decode(t, rr, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Results", items[0].Title)

	rr = ts.request(http.MethodDelete, fmt.Sprintf("/api/news/%d", item.ID), nil, ts.adminToken)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(http.MethodGet, "/api/news", nil, aliceToken)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/lobbies", nil, ts.adminToken)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, errorCode(t, rr))

	rr = ts.request(http.MethodPatch, "/api/news", nil, ts.adminToken)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/events", nil)
	req.Header.Set("Origin", "https://club.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, "https://club.test", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.test")
	rr = httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouteTableRequirements(t *testing.T) {
	routes := api.Routes(api.RouterConfig{})

	public := 0
	for _, route := range routes {
		if !route.Requirement.RequiresIdentity() {
			public++
		}
	}
	// Only login and health are reachable without a token
	assert.Equal(t, 2, public)
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/clubhouse/internal/api"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/factory"
	"github.com/mcoot/clubhouse/internal/model"
	"github.com/mcoot/clubhouse/internal/testutil"
)

type CLISuite struct {
	suite.Suite
	app       *factory.TestApp
	server    *httptest.Server
	tokenFile string
	token     string
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(api.NewRouter(api.RouterConfig{
		Logger:              testutil.NopLogger(),
		Storage:             s.app.Storage,
		Clock:               s.app.Clock,
		Issuer:              s.app.Issuer,
		AuthService:         s.app.AuthService,
		RegistrationService: s.app.RegistrationService,
		RosterService:       s.app.RosterService,
		CalendarService:     s.app.CalendarService,
		NewsService:         s.app.NewsService,
	}))
	s.tokenFile = filepath.Join(s.T().TempDir(), "token")

	admin, err := s.app.CreateAccount(context.Background(), "admin@club.test", "admin-pass", model.RoleAdmin, nil)
	s.Require().NoError(err)
	s.token, err = s.app.Token(admin)
	s.Require().NoError(err)
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

// execute runs clubctl with args, returning stdout and the command error
func (s *CLISuite) execute(args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--server", s.server.URL, "--token-file", s.tokenFile}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func (s *CLISuite) executeJSON(v any, args ...string) {
	out, err := s.execute(append([]string{"--token", s.token, "-o", "json"}, args...)...)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal([]byte(out), v), "output: %s", out)
}

func (s *CLISuite) TestLoginSavesToken() {
	out, err := s.execute("login", "--email", "ADMIN@club.test", "--password", "admin-pass")
	s.Require().NoError(err)
	s.Contains(out, "User: admin@club.test")

	// No --token: the saved token is picked up
	out, err = s.execute("-o", "json", "me")
	s.Require().NoError(err)
	var me response.Me
	s.Require().NoError(json.Unmarshal([]byte(out), &me))
	s.Equal("admin", me.Role)
}

func (s *CLISuite) TestAPIErrorCarriesCode() {
	_, err := s.execute("login", "--email", "admin@club.test", "--password", "wrong-pass")
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(401, apiErr.Status)
	s.Equal("INVALID_CREDENTIALS", apiErr.Code)
}

func (s *CLISuite) TestUserUpdateKeepsUnsetFields() {
	var player response.Player
	s.executeJSON(&player, "player", "create", "--name", "Alice", "--email", "alice@club.test")

	var user response.User
	s.executeJSON(&user, "user", "create", "--email", "alice@club.test", "--password", "secret1",
		"--name", "Alice", "--player", fmt.Sprint(player.ID))

	var updated response.User
	s.executeJSON(&updated, "user", "update", fmt.Sprint(user.ID), "--name", "Alice B")
	s.Equal("Alice B", updated.Name)
	s.Equal("alice@club.test", updated.Email)
	s.Equal("member", updated.Role)
	s.Require().NotNil(updated.PlayerID)
	s.Equal(player.ID, *updated.PlayerID)

	s.executeJSON(&updated, "user", "update", fmt.Sprint(user.ID), "--unlink-player")
	s.Nil(updated.PlayerID)
}

func (s *CLISuite) TestPlayerUpdateTotals() {
	var player response.Player
	s.executeJSON(&player, "player", "create", "--name", "Bob", "--email", "bob@club.test", "--apero", "3")

	s.executeJSON(&player, "player", "update", fmt.Sprint(player.ID), "--played", "10", "--wins", "7")
	s.Equal(3, player.LevelApero)
	s.Equal(3, player.Losses)
	s.Equal(70, player.WinRate)

	_, err := s.execute("--token", s.token, "player", "update", fmt.Sprint(player.ID), "--wins", "11")
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("VALIDATION_ERROR", apiErr.Code)
}

func (s *CLISuite) TestEventTextOutput() {
	var event response.Event
	s.executeJSON(&event, "event", "create", "--name", "Club night", "--date", "2024-03-01", "--max", "8")

	out, err := s.execute("--token", s.token, "event", "list")
	s.Require().NoError(err)
	s.Contains(out, "Club night")
	s.Contains(out, "0/8")
}

func (s *CLISuite) TestInvalidIDArgument() {
	_, err := s.execute("--token", s.token, "event", "register", "abc", "1")
	s.ErrorContains(err, `invalid target ID "abc"`)
}

func TestOutputFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("text", &buf).Print(map[string]int{"n": 1})
	assert.JSONEq(t, `{"n": 1}`, buf.String())
}

func TestOutputMessage(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).PrintMessage("done")
	var msg response.Message
	require.NoError(t, json.Unmarshal(buf.Bytes(), &msg))
	assert.Equal(t, "done", msg.Message)
}

func (s *CLISuite) TestLogoutRemovesToken() {
	_, err := s.execute("login", "--email", "admin@club.test", "--password", "admin-pass")
	s.Require().NoError(err)
	s.FileExists(s.tokenFile)

	out, err := s.execute("logout")
	s.Require().NoError(err)
	s.Equal("Logged out\n", out)
	s.NoFileExists(s.tokenFile)

	_, err = s.execute("me")
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal("MISSING_TOKEN", apiErr.Code)
}

func (s *CLISuite) TestUnknownOutputFormat() {
	_, err := s.execute("-o", "yaml", "health")
	s.ErrorContains(err, `unknown output format "yaml"`)
}

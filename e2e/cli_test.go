package e2e_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/clubhouse/internal/api"
	"github.com/mcoot/clubhouse/internal/api/response"
	"github.com/mcoot/clubhouse/internal/factory"
	"github.com/mcoot/clubhouse/internal/services/auth"
	"github.com/mcoot/clubhouse/internal/testutil"
)

const (
	adminEmail    = "admin@club.test"
	adminPassword = "admin-password"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "clubctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/clubctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner sharing the binary but keeping its own session
func (r *cliRunner) withTokenFile(path string) *cliRunner {
	return &cliRunner{binaryPath: r.binaryPath, serverURL: r.serverURL, tokenFile: path}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	// Keep the caller's environment from leaking a token in
	cmd.Env = append(os.Environ(), "CLUBCTL_TOKEN=")
	output, err := cmd.Output()
	if exitErr, ok := err.(*exec.ExitError); ok {
		return string(output) + string(exitErr.Stderr), err
	}
	return string(output), err
}

// runJSON runs a command that must succeed and decodes its output into v
func (r *cliRunner) runJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	output, err := r.run(args...)
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), v), "output: %s", output)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer serves the API on a free local port backed by the memory store
func startTestServer(t *testing.T) string {
	t.Helper()

	ctx := context.Background()
	app := factory.NewTestApp()
	_, err := app.AuthService.Bootstrap(ctx, auth.BootstrapConfig{
		Email:    adminEmail,
		Password: adminPassword,
		Name:     "Admin",
	})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:              logger,
		Storage:             app.Storage,
		Clock:               app.Clock,
		Issuer:              app.Issuer,
		AuthService:         app.AuthService,
		RegistrationService: app.RegistrationService,
		RosterService:       app.RosterService,
		CalendarService:     app.CalendarService,
		NewsService:         app.NewsService,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(router, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var resp response.Health
	cli.runJSON(t, &resp, "health")
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "ok", resp.Storage)
}

func TestCLI_LoginAndMe(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var login response.LoginResponse
	cli.runJSON(t, &login, "login", "--email", adminEmail, "--password", adminPassword)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "admin", login.User.Role)

	// The token was saved to the token file
	var me response.Me
	cli.runJSON(t, &me, "me")
	assert.Equal(t, adminEmail, me.Email)
	assert.Nil(t, me.PlayerID)

	// Wrong password surfaces the server's error code
	output, err := cli.run("login", "--email", adminEmail, "--password", "nope-nope")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_AccessDeniedWithoutLogin(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	output, err := cli.run("event", "list")
	require.Error(t, err)
	assert.Contains(t, output, "MISSING_TOKEN")
}

func TestCLI_MemberRegistersForEvent(t *testing.T) {
	serverURL := startTestServer(t)
	admin := newCLIRunner(t, serverURL)
	member := admin.withTokenFile(filepath.Join(t.TempDir(), "member-token"))

	var login response.LoginResponse
	admin.runJSON(t, &login, "login", "--email", adminEmail, "--password", adminPassword)

	// Admin builds the roster and links a member account to a player
	var player response.Player
	admin.runJSON(t, &player, "player", "create", "--name", "Alice", "--email", "alice@club.test")
	assert.Equal(t, "Alice", player.Name)

	var user response.User
	admin.runJSON(t, &user, "user", "create",
		"--email", "alice@club.test", "--password", "alice-pass", "--name", "Alice",
		"--player", fmt.Sprint(player.ID))
	require.NotNil(t, user.PlayerID)
	assert.Equal(t, player.ID, *user.PlayerID)

	var event response.Event
	admin.runJSON(t, &event, "event", "create",
		"--name", "Club night", "--date", "2024-03-01", "--location", "Hall", "--max", "1")
	assert.Equal(t, "2024-03-01", event.Date)
	require.NotNil(t, event.MaxParticipants)
	assert.Equal(t, 1, *event.MaxParticipants)

	// The member registers themselves
	member.runJSON(t, &login, "login", "--email", "alice@club.test", "--password", "alice-pass")

	var msg response.Message
	member.runJSON(t, &msg, "event", "register", fmt.Sprint(event.ID), fmt.Sprint(player.ID))
	assert.Equal(t, "Registration successful", msg.Message)

	var events []response.Event
	member.runJSON(t, &events, "event", "list")
	require.Len(t, events, 1)
	assert.Equal(t, []int64{player.ID}, events[0].Participants)

	// A second registration is rejected
	output, err := member.run("event", "register", fmt.Sprint(event.ID), fmt.Sprint(player.ID))
	require.Error(t, err)
	assert.Contains(t, output, "DUPLICATE_REGISTRATION")

	// Members cannot register somebody else
	var other response.Player
	admin.runJSON(t, &other, "player", "create", "--name", "Bob", "--email", "bob@club.test")
	output, err = member.run("event", "register", fmt.Sprint(event.ID), fmt.Sprint(other.ID))
	require.Error(t, err)
	assert.Contains(t, output, "FORBIDDEN")

	member.runJSON(t, &msg, "event", "unregister", fmt.Sprint(event.ID), fmt.Sprint(player.ID))
	assert.Equal(t, "Unregistration successful", msg.Message)
}

func TestCLI_TournamentLifecycle(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var login response.LoginResponse
	cli.runJSON(t, &login, "login", "--email", adminEmail, "--password", adminPassword)

	var tournament response.Tournament
	cli.runJSON(t, &tournament, "tournament", "create",
		"--name", "Spring open", "--date", "2024-04-10", "--format", "singles")
	assert.Equal(t, "upcoming", tournament.Status)

	cli.runJSON(t, &tournament, "tournament", "status", fmt.Sprint(tournament.ID), "ongoing")
	assert.Equal(t, "ongoing", tournament.Status)

	output, err := cli.run("tournament", "status", fmt.Sprint(tournament.ID), "paused")
	require.Error(t, err)
	assert.Contains(t, output, "VALIDATION_ERROR")

	var msg response.Message
	cli.runJSON(t, &msg, "tournament", "delete", fmt.Sprint(tournament.ID))
	assert.Equal(t, "Tournament deleted", msg.Message)
}

func TestCLI_NewsAndTextOutput(t *testing.T) {
	cli := newCLIRunner(t, startTestServer(t))

	var login response.LoginResponse
	cli.runJSON(t, &login, "login", "--email", adminEmail, "--password", adminPassword)

	var item response.News
	cli.runJSON(t, &item, "news", "create", "--title", "Welcome", "--content", "Season starts")
	require.NotNil(t, item.AuthorName)
	assert.Equal(t, "Admin", *item.AuthorName)

	// Text output is the default when --output is not json
	cmd := exec.Command(cli.binaryPath, "--server", cli.serverURL, "--token-file", cli.tokenFile, "news", "list")
	output, err := cmd.Output()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(output), fmt.Sprintf("#%d Welcome", item.ID)), "output: %s", output)
}

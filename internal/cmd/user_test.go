package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
)

const testUserJSON = `{
	"username": "farmer",
	"info": {"name": "Ana", "lastname": "Novak", "email": "ana@example.com"},
	"company": {"name": "Acme"},
	"address": {"country": "AT"},
	"settings": {"language": "en", "unit_system": "metric"},
	"last_access": "2026-01-20 08:00:00"
}`

const testStationsJSON = `[
	{"name": {"original": "00000146", "custom": "North field"}, "info": {"device_name": "iMETOS 3.3"}, "dates": {"last_communication": "2026-01-28 14:00:00"}},
	{"name": {"original": "0120821E"}, "info": {"device_name": "iMETOS ECO D3"}}
]`

func TestUserInfoText(t *testing.T) {
	rec := &requestRecorder{}
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user", rec.wrap(jsonResponse(200, testUserJSON))))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "info"}))
	})

	assert.Contains(t, output, "User farmer")
	assert.Contains(t, output, "Name:        Ana Novak")
	assert.Contains(t, output, "Company:     Acme")
	assert.Contains(t, output, "Units:       metric")

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.True(t, strings.HasPrefix(reqs[0].Header.Get("Authorization"), "hmac "+testPublicKey+":"))
	assert.NotEmpty(t, reqs[0].Header.Get("Date"))
	assert.Contains(t, reqs[0].Header.Get("User-Agent"), "fieldclimate-cli/")
}

func TestUserInfoJSONWithFields(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user", jsonResponse(200, testUserJSON)))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"me", "info", "--fields", "username,info.email"}))
	})

	got := decodeJSON(t, output).(map[string]any)
	assert.Equal(t, map[string]any{"username": "farmer", "info.email": "ana@example.com"}, got)
}

func TestUserInfoCSV(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user", jsonResponse(200, testUserJSON)))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "info", "-o", "csv"}))
	})

	rows, err := csv.NewReader(strings.NewReader(output)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "username", rows[0][0])
	assert.Equal(t, "farmer", rows[1][0])
}

func TestUserStationsTable(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, testStationsJSON)))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "stations"}))
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "LAST COMMUNICATION")
	assert.Contains(t, lines[1], "00000146")
	assert.Contains(t, lines[1], "North field")
	assert.Contains(t, lines[2], "0120821E")
	assert.Contains(t, lines[2], "iMETOS ECO D3")
}

func TestUserStationsEmpty(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, `[]`)))

	var output string
	stderr := captureStderr(t, func() {
		output = captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"user", "stations"}))
		})
	})

	assert.Empty(t, output)
	assert.Contains(t, stderr, "No stations found")
}

func TestUserStationsMatch(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, testStationsJSON)))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "stations", "--match", "NORTH"}))
	})

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "00000146")
}

func TestUserStationsMatchJSON(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, testStationsJSON)))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "stations", "--mt", "0120", "--json"}))
	})

	got := decodeJSON(t, output).([]any)
	require.Len(t, got, 1)
	assert.Equal(t, "0120821E", got[0].(map[string]any)["name"].(map[string]any)["original"])
}

func TestUserStationsMatchNothing(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, testStationsJSON)))

	var output string
	stderr := captureStderr(t, func() {
		output = captureStdout(t, func() {
			require.NoError(t, Execute(context.Background(), []string{"user", "stations", "--match", "zzz"}))
		})
	})

	assert.Empty(t, output)
	assert.Contains(t, stderr, `No stations match "zzz"`)
}

func TestMatchStationsDeduplicates(t *testing.T) {
	stations := []api.Station{}
	require.NoError(t, json.Unmarshal([]byte(testStationsJSON), &stations))

	// "0" hits both serials and is a subsequence of no custom name.
	order := matchStations("0", stations)
	assert.ElementsMatch(t, []int{0, 1}, order)

	assert.Equal(t, []int{0}, matchStations("north field", stations))
	assert.Empty(t, matchStations("", stations))
}

func TestUserStationsCSVUnsupported(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler().
		On("GET", "/user/stations", jsonResponse(200, testStationsJSON)))

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"user", "stations", "-o", "csv"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output csv is not supported")
	})
}

func TestUserUpdateSendsBody(t *testing.T) {
	rec := &requestRecorder{}
	setupTestEnvWithHandler(t, newRouteHandler().
		On("PUT", "/user", rec.wrap(noContent())))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "update", "--data", `{"settings":{"language":"de"}}`}))
	})

	assert.Contains(t, output, "Updated user")
	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"settings":{"language":"de"}}`, string(reqs[0].Body))
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
}

func TestUserUpdateRejectsInvalidJSON(t *testing.T) {
	rec := &requestRecorder{}
	setupTestEnvWithHandler(t, newRouteHandler().
		On("PUT", "/user", rec.wrap(noContent())))

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"user", "update", "--data", `{nope`})
		require.Error(t, err)
	})
	assert.Empty(t, rec.all())
}

func TestUserDeleteRequiresForceForJSON(t *testing.T) {
	rec := &requestRecorder{}
	setupTestEnvWithHandler(t, newRouteHandler().
		On("DELETE", "/user", rec.wrap(noContent())))

	_ = captureStderr(t, func() {
		err := Execute(context.Background(), []string{"user", "delete", "-o", "json"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
	})
	assert.Empty(t, rec.all())

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "delete", "--force", "-o", "json"}))
	})
	assert.Equal(t, map[string]any{"status": float64(204)}, decodeJSON(t, output))
	require.Len(t, rec.all(), 1)
}

func TestUserDeleteDryRun(t *testing.T) {
	rec := &requestRecorder{}
	setupTestEnvWithHandler(t, newRouteHandler().
		On("DELETE", "/user", rec.wrap(noContent())))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"user", "delete", "--dry-run"}))
	})

	assert.Contains(t, output, "[DRY-RUN] Would DELETE")
	assert.Contains(t, output, "This action is irreversible")
	assert.Empty(t, rec.all())
}

func TestUserCommandWithoutCredentials(t *testing.T) {
	isolateEnv(t)

	stderr := captureStderr(t, func() {
		err := Execute(context.Background(), []string{"user", "info"})
		require.Error(t, err)
		assert.Equal(t, exitAuth, ExitCode(err))
	})
	assert.Contains(t, stderr, "No FieldClimate credentials configured")
}

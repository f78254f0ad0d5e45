package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
)

func TestParseTimestamp(t *testing.T) {
	withNow(t, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	tests := []struct {
		in   string
		want int64
	}{
		{"1491091200", 1491091200},
		{"now", 1715342400},
		{"NOW", 1715342400},
		{"2h", 1715335200},
		{"1d ago", 1715256000},
		{"today", 1715299200},
		{"yesterday", 1715212800},
		{"2024-05-01", 1714521600},
		{"2024-05-01 06:00", 1714543200},
		{"2024-05-01T06:00:00Z", 1714543200},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseTimestamp("from", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestampErrors(t *testing.T) {
	_, err := parseTimestamp("from", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from is required")

	_, err = parseTimestamp("to", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")

	_, err = parseTimestamp("to", "next week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --to")

	_, err = parseTimestamp("from", "9999999999h")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
	assert.True(t, isUsageError(err))

	_, err = parseTimestamp("from", "200000d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be before 1970-01-01")
}

func TestParseRange(t *testing.T) {
	withNow(t, time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	from, to, err := parseRange("100", "")
	require.NoError(t, err)
	assert.Equal(t, int64(100), from)
	assert.Zero(t, to)

	from, to, err = parseRange("1d", "now")
	require.NoError(t, err)
	assert.Equal(t, int64(1715256000), from)
	assert.Equal(t, int64(1715342400), to)

	_, _, err = parseRange("200", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--to must not be before --from")

	_, _, err = parseRange("", "100")
	assert.Error(t, err)
}

func TestNormalizeEnum(t *testing.T) {
	valid := []string{"raw", "hourly", "daily", "monthly"}

	got, err := normalizeEnum("group", " Hourly ", valid)
	require.NoError(t, err)
	assert.Equal(t, "hourly", got)

	got, err = normalizeEnum("group", "d", valid)
	require.NoError(t, err)
	assert.Equal(t, "daily", got)

	_, err = normalizeEnum("group", "weekly", valid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid group "weekly": must be one of raw, hourly, daily, monthly`)
	assert.Equal(t, exitUsage, ExitCode(err))

	_, err = normalizeEnum("sort", "", []string{"asc", "desc"})
	assert.Error(t, err)

	_, err = normalizeEnum("kind", "a", []string{"alpha", "apex"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous kind")

	got, err = optionalEnum("sort", "  ", []string{"asc", "desc"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitCommaList(t *testing.T) {
	assert.Equal(t, []string{"a", "b.c"}, splitCommaList(" a, ,b.c ,"))
	assert.Nil(t, splitCommaList(""))
}

func TestSegments(t *testing.T) {
	got, err := segmentArg(" general7 ", "option")
	require.NoError(t, err)
	assert.Equal(t, "general7", got)

	for _, bad := range []string{"a/b", "a b", "..", "a?b", ""} {
		_, err := segmentArg(bad, "option")
		assert.Error(t, err, bad)
	}

	got, err = optionalSegment("", "camera")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = optionalSegment("x#y", "camera")
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	n, err := parseAmount("20", "amount")
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	for _, bad := range []string{"0", "-3", "ten", "99999999999"} {
		_, err := parseAmount(bad, "amount")
		assert.Error(t, err, bad)
	}
}

func bodyCmd(in string) *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(iocontext.WithIO(context.Background(), &iocontext.IO{
		Out:    os.Stdout,
		ErrOut: os.Stderr,
		In:     strings.NewReader(in),
	}))
	return cmd
}

func TestReadBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sensors.json")
	require.NoError(t, os.WriteFile(path, []byte("[{\"ch\":1}]\n"), 0o600))

	got, err := readBody(bodyCmd(""), ` {"name":{"custom":"Orchard"}} `)
	require.NoError(t, err)
	assert.Equal(t, `{"name":{"custom":"Orchard"}}`, string(got))

	got, err = readBody(bodyCmd(""), "@"+path)
	require.NoError(t, err)
	assert.Equal(t, `[{"ch":1}]`, string(got))

	got, err = readBody(bodyCmd(`{"stdin":true}`), "-")
	require.NoError(t, err)
	assert.Equal(t, `{"stdin":true}`, string(got))

	_, err = readBody(bodyCmd(""), "{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	_, err = readBody(bodyCmd(""), "-")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	_, err = readBody(bodyCmd(""), "@"+filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read request body")

	body, err := optionalBody(bodyCmd(""), "")
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestJQPath(t *testing.T) {
	assert.Equal(t, `.["info"]["email"]`, jqPath("info.email"))
	assert.Equal(t, ".", jqPath(""))
	assert.Equal(t, `"a\"b"`, jqKey(`a"b`))
}

func TestLoadTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "station.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.name.original}}"), 0o600))

	got, err := loadTemplate("@" + path)
	require.NoError(t, err)
	assert.Equal(t, "{{.name.original}}", got)

	got, err = loadTemplate("{{.username}}")
	require.NoError(t, err)
	assert.Equal(t, "{{.username}}", got)

	_, err = loadTemplate("@" + filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

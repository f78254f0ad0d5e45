package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "b", 1},
		{"kitten", "sitting", 3},
		{"sttaion", "station", 2},
		{"eto", "eto", 0},
		{"größe", "grösse", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, editDistance(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"auth", "config", "user", "system", "station", "data", "forecast", "disease", "dev", "chart", "camera", "api", "version"}
	tests := []struct {
		input string
		want  string
	}{
		{"staton", "station"},
		{"sation", "station"},
		{"STATON", "station"},
		{"sttaion", "station"},
		{"dta", "data"},
		{"forcast", "forecast"},
		{"diseas", "disease"},
		{"camra", "camera"},
		{"chrt", "chart"},
		{"systm", "system"},
		{"confg", "config"},
		{"usre", "user"},
		{"zzzzzzzzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, suggestCommand(tt.input, commands), "input %q", tt.input)
	}
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--from", "--format", "--sort", "--concurrency", "--camera", "--output"}
	tests := []struct {
		input string
		want  string
	}{
		{"--frm", "--from"},
		{"--formt", "--format"},
		{"--srt", "--sort"},
		{"--concurency", "--concurrency"},
		{"--camer", "--camera"},
		{"--outpt", "--output"},
		{"--zzzzzzz", ""},
		{"--", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, suggestFlag(tt.input, flags), "input %q", tt.input)
	}
}

func TestSuggestFlagKeepsDashes(t *testing.T) {
	assert.Equal(t, "--station", suggestFlag("--staton", []string{"--station", "-s"}))
	assert.Equal(t, "-s", suggestFlag("-S", []string{"--station", "-s"}))
}

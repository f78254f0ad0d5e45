package iocontext

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIO(t *testing.T) {
	io := DefaultIO()
	if io.Out == nil || io.ErrOut == nil || io.In == nil {
		t.Error("DefaultIO should return non-nil streams")
	}
}

func TestWithIO(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}

	io := &IO{Out: out, ErrOut: errOut}
	ctx := WithIO(context.Background(), io)

	got := GetIO(ctx)
	if got.Out != out {
		t.Error("GetIO should return the IO set with WithIO")
	}
}

func TestGetIO_DefaultsWhenNotSet(t *testing.T) {
	if GetIO(context.Background()) == nil {
		t.Error("GetIO should return default IO when not set")
	}
}

func TestReadBody(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	if err := os.WriteFile(path, []byte(`{"from_file":true}`), 0o600); err != nil {
		t.Fatal(err)
	}
	s := &IO{In: strings.NewReader(`{"from_stdin":true}`)}

	tests := []struct {
		arg  string
		want string
	}{
		{`{"inline":true}`, `{"inline":true}`},
		{"-", `{"from_stdin":true}`},
		{"@" + path, `{"from_file":true}`},
	}
	for _, tt := range tests {
		got, err := s.ReadBody(tt.arg)
		if err != nil {
			t.Fatalf("ReadBody(%q) error = %v", tt.arg, err)
		}
		if string(got) != tt.want {
			t.Errorf("ReadBody(%q) = %s, want %s", tt.arg, got, tt.want)
		}
	}

	if _, err := s.ReadBody("@" + filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing file")
	}
}

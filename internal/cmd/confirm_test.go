package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
	"github.com/fieldclimate/fieldclimate-cli/internal/outfmt"
)

func confirmCmd(mode outfmt.Mode, in string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := &bytes.Buffer{}
	ctx := outfmt.WithMode(context.Background(), mode)
	ctx = iocontext.WithIO(ctx, &iocontext.IO{
		In:     bytes.NewBufferString(in),
		Out:    out,
		ErrOut: &bytes.Buffer{},
	})
	cmd.SetContext(ctx)
	cmd.SetOut(out)
	return cmd, out
}

func TestConfirmAction_RequiresForceForJSON(t *testing.T) {
	flags = rootFlags{}
	cmd, _ := confirmCmd(outfmt.JSON, "y\n")

	_, err := confirmAction(cmd, confirmOptions{
		Prompt:              "Confirm? (y/N): ",
		Expected:            "y",
		RequireForceForJSON: true,
	})
	if err == nil {
		t.Fatal("expected error when JSON output without --force")
	}

	ok, err := confirmAction(cmd, confirmOptions{Force: true, RequireForceForJSON: true})
	if err != nil {
		t.Fatalf("unexpected error when --force is set: %v", err)
	}
	if !ok {
		t.Fatal("expected --force to confirm")
	}
}

func TestConfirmAction_AcceptsExpectedInput(t *testing.T) {
	flags = rootFlags{}
	cmd, out := confirmCmd(outfmt.Text, "DELETE\n")

	ok, err := confirmAction(cmd, confirmOptions{
		Prompt:        "Type 'delete' to confirm: ",
		Expected:      "delete",
		CancelMessage: "Deletion cancelled.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected confirmation to succeed")
	}
	if out.String() != "Type 'delete' to confirm: " {
		t.Fatalf("unexpected prompt output %q", out.String())
	}
}

func TestConfirmAction_Cancelled(t *testing.T) {
	flags = rootFlags{}
	cmd, out := confirmCmd(outfmt.Text, "n\n")

	ok, err := confirmAction(cmd, confirmOptions{
		Prompt:        "Remove station? (y/N): ",
		CancelMessage: "Cancelled.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected confirmation to be refused")
	}
	if !bytes.Contains(out.Bytes(), []byte("Cancelled.")) {
		t.Fatalf("expected cancel message, got %q", out.String())
	}
}

func TestConfirmAction_EmptyInputCancels(t *testing.T) {
	flags = rootFlags{}
	cmd, _ := confirmCmd(outfmt.Text, "")

	ok, err := confirmAction(cmd, confirmOptions{Prompt: "Continue? "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected EOF to cancel")
	}
}

func TestConfirmAction_DryRunSkipsPrompt(t *testing.T) {
	flags = rootFlags{DryRun: true}
	t.Cleanup(func() { flags = rootFlags{} })
	cmd, out := confirmCmd(outfmt.JSON, "")

	ok, err := confirmAction(cmd, confirmOptions{Prompt: "Continue? ", RequireForceForJSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected dry run to confirm")
	}
	if out.Len() != 0 {
		t.Fatalf("expected no prompt, got %q", out.String())
	}
}

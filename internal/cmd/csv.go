package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fieldclimate/fieldclimate-cli/internal/api"
	"github.com/fieldclimate/fieldclimate-cli/internal/export"
	"github.com/fieldclimate/fieldclimate-cli/internal/iocontext"
)

// csvCommands lists the commands with a CSV rendering, by path below the root.
var csvCommands = []string{
	"user info",
	"system sensors",
	"station sensors",
	"data last",
	"data between",
	"forecast data",
	"disease last",
	"disease between",
	"disease eto last",
	"disease eto between",
}

var errCSVUnsupported = fmt.Errorf("--output csv is not supported by this command (supported: %s)", strings.Join(csvCommands, ", "))

// supportsCSV reports whether cmd is one of csvCommands.
func supportsCSV(cmd *cobra.Command) bool {
	path := cmd.CommandPath()
	if root := cmd.Root(); root != cmd {
		path = strings.TrimPrefix(path, root.Name()+" ")
	}
	return slices.Contains(csvCommands, path)
}

// decodeDocument decodes a response body for the CSV writers. Numbers are
// kept as json.Number so cells show them exactly as the API sent them.
func decodeDocument(resp *api.Response) (any, error) {
	if resp.IsEmpty() {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(resp.Body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return doc, nil
}

// printCSVList writes a response holding an object or an array of objects.
func printCSVList(cmd *cobra.Command, resp *api.Response, write func(io.Writer, []map[string]any) error) error {
	doc, err := decodeDocument(resp)
	if err != nil {
		return err
	}
	rows, err := export.ObjectList(doc)
	if err != nil {
		return fmt.Errorf("cannot export response as CSV: %w", err)
	}
	return write(iocontext.GetIO(cmd.Context()).Out, rows)
}

// printCSVObject writes a response holding a single object.
func printCSVObject(cmd *cobra.Command, resp *api.Response, write func(io.Writer, map[string]any) error) error {
	doc, err := decodeDocument(resp)
	if err != nil {
		return err
	}
	obj, ok := doc.(map[string]any)
	if !ok && doc != nil {
		return fmt.Errorf("cannot export response as CSV: expected object, got %T", doc)
	}
	if obj == nil {
		obj = map[string]any{}
	}
	return write(iocontext.GetIO(cmd.Context()).Out, obj)
}

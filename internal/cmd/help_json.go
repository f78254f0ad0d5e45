package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fieldclimate/fieldclimate-cli/internal/outfmt"
)

// outputModes are the values accepted by --output, ndjson aside.
var outputModes = []string{"text", "json", "jsonl", "csv"}

// CommandHelp is the --help-json document of one command.
type CommandHelp struct {
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	Aliases     []string         `json:"aliases,omitempty"`
	Short       string           `json:"short"`
	Long        string           `json:"long,omitempty"`
	Usage       string           `json:"usage"`
	Example     string           `json:"example,omitempty"`
	OutputModes []string         `json:"output_modes"`
	Flags       []FlagHelp       `json:"flags,omitempty"`
	Subcommands []SubcommandHelp `json:"subcommands,omitempty"`
}

type FlagHelp struct {
	Name      string   `json:"name"`
	Shorthand string   `json:"shorthand,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Type      string   `json:"type"`
	Default   string   `json:"default,omitempty"`
	Usage     string   `json:"usage"`
	Inherited bool     `json:"inherited,omitempty"`
}

type SubcommandHelp struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Short   string   `json:"short"`
	CSV     bool     `json:"csv,omitempty"`
}

// modesFor lists the output modes cmd accepts. Group commands without a
// RunE only print help, so they advertise none.
func modesFor(cmd *cobra.Command) []string {
	if !cmd.Runnable() {
		return []string{}
	}
	if supportsCSV(cmd) {
		return outputModes
	}
	return outputModes[:len(outputModes)-1]
}

// printHelpJSON writes cmd's documentation as indented JSON.
func printHelpJSON(cmd *cobra.Command) error {
	help := CommandHelp{
		Name:        cmd.Name(),
		Path:        cmd.CommandPath(),
		Aliases:     cmd.Aliases,
		Short:       cmd.Short,
		Long:        cmd.Long,
		Usage:       cmd.UseLine(),
		Example:     cmd.Example,
		OutputModes: modesFor(cmd),
	}

	aliases := make(map[string][]string)
	collect := func(f *pflag.Flag) {
		if ann, ok := f.Annotations["alias-of"]; ok && len(ann) > 0 {
			aliases[ann[0]] = append(aliases[ann[0]], f.Name)
		}
	}
	cmd.LocalFlags().VisitAll(collect)
	cmd.InheritedFlags().VisitAll(collect)

	seen := map[string]bool{"help": true, "help-json": true}
	add := func(inherited bool) func(*pflag.Flag) {
		return func(f *pflag.Flag) {
			if seen[f.Name] || f.Hidden {
				return
			}
			if _, alias := f.Annotations["alias-of"]; alias {
				return
			}
			seen[f.Name] = true
			help.Flags = append(help.Flags, FlagHelp{
				Name:      f.Name,
				Shorthand: f.Shorthand,
				Aliases:   aliases[f.Name],
				Type:      f.Value.Type(),
				Default:   f.DefValue,
				Usage:     f.Usage,
				Inherited: inherited,
			})
		}
	}
	cmd.LocalFlags().VisitAll(add(false))
	cmd.InheritedFlags().VisitAll(add(true))

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" || sub.Name() == "completion" {
			continue
		}
		help.Subcommands = append(help.Subcommands, SubcommandHelp{
			Name:    sub.Name(),
			Aliases: sub.Aliases,
			Short:   sub.Short,
			CSV:     supportsCSV(sub),
		})
	}

	return outfmt.WriteJSON(cmd.OutOrStdout(), help)
}

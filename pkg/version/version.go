// Package version holds build metadata injected with -ldflags and the
// "version" subcommand that prints it.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time, e.g.
// -ldflags "-X github.com/toozej/spotigo/pkg/version.Version=v1.0.0"
var (
	Version   = "local"
	Commit    = ""
	Branch    = ""
	BuiltAt   = ""
	Builder   = ""
	goVersion = runtime.Version()
)

// Info is the printable build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	Branch    string `json:"branch,omitempty"`
	BuiltAt   string `json:"built_at,omitempty"`
	Builder   string `json:"builder,omitempty"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Branch:    Branch,
		BuiltAt:   BuiltAt,
		Builder:   Builder,
		GoVersion: goVersion,
	}
}

// Command returns the "version" subcommand.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := json.MarshalIndent(Get(), "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal version info: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
}

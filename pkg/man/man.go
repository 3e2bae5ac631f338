// Package man provides the hidden "man" subcommand that renders the CLI's
// manual page in roff format.
package man

import (
	"fmt"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
)

// NewManCmd returns a command that prints the man page of its root command.
//
// Example:
//
//	spotigo man | man -l -
func NewManCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "man",
		Short:                 "Generates command line manpages",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Hidden:                true,
		Args:                  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := Render(cmd.Root())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), page)
			return err
		},
	}
}

// Render builds the section 1 man page of root and all its subcommands.
func Render(root *cobra.Command) (string, error) {
	manPage, err := mcobra.NewManPage(1, root)
	if err != nil {
		return "", fmt.Errorf("failed to generate man page: %w", err)
	}
	manPage = manPage.WithSection("Copyright", "Released under the MIT license.")
	return manPage.Build(roff.NewDocument()), nil
}

package man

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManCmd(t *testing.T) {
	root := &cobra.Command{Use: "spotigo", Short: "Spotify Web API client"}
	root.AddCommand(&cobra.Command{Use: "search", Short: "Search the catalogue", Run: func(*cobra.Command, []string) {}})
	manCmd := NewManCmd()
	root.AddCommand(manCmd)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"man"})
	require.NoError(t, root.Execute())

	page := out.String()
	assert.Contains(t, page, ".TH")
	assert.Contains(t, page, "spotigo")
	assert.Contains(t, page, "search")
	assert.True(t, manCmd.Hidden)
}

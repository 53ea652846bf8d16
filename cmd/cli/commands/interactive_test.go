package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected []string
		wantErr  bool
	}{
		{"plain", "rushees list --status Active", []string{"rushees", "list", "--status", "Active"}, false},
		{"double quotes", `notes add r1 "great guy, very engaged"`, []string{"notes", "add", "r1", "great guy, very engaged"}, false},
		{"single quotes", `brothers position b1 'Rush Chair'`, []string{"brothers", "position", "b1", "Rush Chair"}, false},
		{"empty quotes kept", `rushees list --search ""`, []string{"rushees", "list", "--search", ""}, false},
		{"extra whitespace", "  wrapped   ", []string{"wrapped"}, false},
		{"unclosed", `notes add r1 "oops`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func testRoot(record *[]string) *cobra.Command {
	root := &cobra.Command{Use: "rushtracker"}
	group := &cobra.Command{Use: "rushees", Short: "Rushees"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			status, _ := cmd.Flags().GetString("status")
			events, _ := cmd.Flags().GetStringSlice("event")
			*record = append(*record, "status="+status+" events="+strings.Join(events, ","))
			return nil
		},
	}
	list.Flags().String("status", "", "")
	list.Flags().StringSlice("event", nil, "")
	group.AddCommand(list)
	root.AddCommand(group)
	return root
}

func TestRunInteractive(t *testing.T) {
	var record []string
	root := testRoot(&record)

	require.NoError(t, runInteractive(root, []string{"rushees", "list", "--status", "Active", "--event", "e1"}))
	require.NoError(t, runInteractive(root, []string{"rushees", "list"}))

	assert.Equal(t, []string{"status=Active events=e1", "status= events="}, record)

	err := runInteractive(root, []string{"rushees", "list", "extra"})
	assert.Error(t, err)

	err = runInteractive(root, []string{"nope"})
	assert.ErrorContains(t, err, "unknown command: nope")
}

func TestPrintInteractiveHelp(t *testing.T) {
	var record []string
	root := testRoot(&record)

	var out bytes.Buffer
	printInteractiveHelp(&out, root)

	assert.Contains(t, out.String(), "rushees list")
	assert.Contains(t, out.String(), "exit, quit")
}

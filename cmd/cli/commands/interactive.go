package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// InteractiveCmd creates the interactive command
func InteractiveCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (log in once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands one after another.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "\n🚀 Starting interactive session...")
			if brother, ok := app.Session.Brother(); ok {
				fmt.Fprintf(out, "Logged in as %s (%s)\n", brother.Name, brother.Position)
			}
			fmt.Fprintln(out, "Type 'help' for available commands, 'exit' or 'quit' to leave")

			rootCmd := cmd.Root()
			for {
				line, err := app.Prompt.Line("> ")
				if errors.Is(err, ErrInputClosed) {
					return nil
				}
				if err != nil {
					return err
				}
				if line == "" {
					continue
				}

				// Parse command (respecting quotes)
				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Fprintf(out, "❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}

				switch parts[0] {
				case "exit", "quit":
					fmt.Fprintln(out, "👋 Goodbye!")
					return nil
				case "help":
					printInteractiveHelp(out, rootCmd)
					continue
				case "interactive":
					fmt.Fprintln(out, "❌ Already in an interactive session")
					continue
				}

				if err := runInteractive(rootCmd, parts); err != nil {
					fmt.Fprintf(out, "❌ Error: %v\n\n", err)
				}
			}
		},
	}

	return cmd
}

// runInteractive resolves parts to a command and runs its RunE directly. Going through
// Execute would re-run PersistentPreRunE and rebuild the app.
func runInteractive(rootCmd *cobra.Command, parts []string) error {
	targetCmd, cmdArgs, err := rootCmd.Find(parts)
	if err != nil || targetCmd == rootCmd {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", parts[0])
	}

	// Reset command flags so values from the previous run don't leak
	targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
		flag.Changed = false
		if sv, ok := flag.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
			return
		}
		flag.Value.Set(flag.DefValue)
	})

	if err := targetCmd.ParseFlags(cmdArgs); err != nil {
		return fmt.Errorf("error parsing flags: %w", err)
	}
	cmdArgs = targetCmd.Flags().Args()

	if targetCmd.RunE == nil && targetCmd.Run == nil {
		return targetCmd.Help()
	}

	if targetCmd.Args != nil {
		if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
			return err
		}
	}

	if targetCmd.RunE != nil {
		return targetCmd.RunE(targetCmd, cmdArgs)
	}
	targetCmd.Run(targetCmd, cmdArgs)
	return nil
}

func printInteractiveHelp(w io.Writer, rootCmd *cobra.Command) {
	fmt.Fprintln(w, "\nAvailable commands:")

	var lines [][2]string
	var walk func(c *cobra.Command, prefix string)
	walk = func(c *cobra.Command, prefix string) {
		for _, sub := range c.Commands() {
			switch sub.Name() {
			case "interactive", "completion", "help":
				continue
			}
			if sub.HasSubCommands() {
				walk(sub, prefix+sub.Name()+" ")
				continue
			}
			lines = append(lines, [2]string{prefix + sub.Use, sub.Short})
		}
	}
	walk(rootCmd, "")
	sort.Slice(lines, func(i, j int) bool { return lines[i][0] < lines[j][0] })

	for _, l := range lines {
		fmt.Fprintf(w, "  %-45s %s\n", l[0], l[1])
	}

	fmt.Fprintf(w, "\n  %-45s %s\n", "help", "Show this help message")
	fmt.Fprintf(w, "  %-45s %s\n", "exit, quit", "Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting quoted strings
// Supports both single and double quotes
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote
	quoted := false

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
			quoted = true
		case unicode.IsSpace(r):
			if current.Len() > 0 || quoted {
				args = append(args, current.String())
				current.Reset()
				quoted = false
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}

	if current.Len() > 0 || quoted {
		args = append(args, current.String())
	}

	return args, nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/svg2pdf/pkg/convert"
	"github.com/matzehuels/svg2pdf/pkg/errors"
)

// backendStatus describes one renderer for the backends table.
type backendStatus struct {
	Name      string
	Default   bool
	Available bool
	Note      string
}

// backendsCommand creates the command listing renderers.
func (c *CLI) backendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List renderers and whether they can run on this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := backendStatuses(c.config.Convert.Backend)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Stdout, renderBackendTable(statuses))
			return nil
		},
	}
}

// backendStatuses checks every registered backend.
func backendStatuses(defaultName string) ([]backendStatus, error) {
	var out []backendStatus
	for _, name := range convert.Backends() {
		b, err := convert.NewBackend(name)
		if err != nil {
			return nil, err
		}
		st := backendStatus{Name: name, Default: name == defaultName, Available: true}
		if err := b.Available(); err != nil {
			st.Available = false
			st.Note = firstLine(errors.UserMessage(err))
		}
		out = append(out, st)
	}
	return out, nil
}

func renderBackendTable(statuses []backendStatus) string {
	rows := make([][]string, 0, len(statuses))
	for _, st := range statuses {
		def := ""
		if st.Default {
			def = "default"
		}
		avail := iconSuccess
		if !st.Available {
			avail = iconError
		}
		rows = append(rows, []string{st.Name, avail, def, st.Note})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Backend", "Ready", "", "Notes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < 0 || row >= len(statuses) {
				return base
			}
			switch {
			case col == 1 && statuses[row].Available:
				return base.Foreground(colorGreen)
			case col == 1:
				return base.Foreground(colorRed)
			case col == 2 || col == 3:
				return base.Foreground(colorDim)
			}
			return base
		})
	return t.Render()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

package printer

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fadamon/fadacron/internal/model"
)

// TablePrinter prints run information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintRuns prints runs in a table format.
func (t *TablePrinter) PrintRuns(runs []model.Run) error {
	if len(runs) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	// Print header
	fmt.Fprintln(tw, "ID\tSCRIPT\tSTATUS\tEXIT CODE\tDURATION\tSTARTED")

	// Print rows
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			r.ID,
			r.Script,
			r.Status,
			r.ExitCode,
			formatDuration(r),
			TimeAgo(r.StartedAt),
		)
	}

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	_, err := fmt.Fprintln(t.writer, msg)
	return err
}

func formatDuration(r model.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.Duration().String()
}

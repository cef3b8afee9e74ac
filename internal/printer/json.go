package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/fadamon/fadacron/internal/model"
)

// JSONPrinter prints run information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// runItem represents a run in the JSON output.
type runItem struct {
	ID         string     `json:"id"`
	Script     string     `json:"script"`
	Status     string     `json:"status"`
	ExitCode   int        `json:"exit_code"`
	LogPath    string     `json:"log_path"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintRuns prints runs in JSON format.
func (j *JSONPrinter) PrintRuns(runs []model.Run) error {
	items := make([]runItem, len(runs))
	for i, r := range runs {
		items[i] = runItem{
			ID:         r.ID,
			Script:     r.Script,
			Status:     string(r.Status),
			ExitCode:   r.ExitCode,
			LogPath:    r.LogPath,
			StartedAt:  r.StartedAt.UTC(),
			FinishedAt: r.FinishedAt,
		}
		if r.FinishedAt != nil {
			t := r.FinishedAt.UTC()
			items[i].FinishedAt = &t
		}
	}

	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(messageOutput{Message: msg})
}

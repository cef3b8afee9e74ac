package printer

import "github.com/fadamon/fadacron/internal/model"

// Printer knows how to print run information in different formats.
type Printer interface {
	PrintRuns(runs []model.Run) error
	PrintMessage(msg string) error
}

// Package classify decides which Dailies are converted into To-Dos.
package classify

import (
	"github.com/harrisonrobin/dailytodo/pkg/config"
	"github.com/harrisonrobin/dailytodo/pkg/difficulty"
	"github.com/harrisonrobin/dailytodo/pkg/habitica"
	"github.com/harrisonrobin/dailytodo/pkg/notes"
)

// Record is a Daily selected for conversion.
type Record struct {
	Task     habitica.Daily
	Priority float64
	Notes    string
}

// Classify returns a Record for a Daily that is due today, not yet
// completed and whose notes start with the criteria's prefix.
func Classify(task habitica.Daily, criteria config.Criteria) (Record, bool) {
	if !task.IsDue {
		return Record{}, false
	}
	if task.Completed {
		return Record{}, false
	}
	parsed, ok := notes.Parse(task.Notes, criteria.Prefix())
	if !ok {
		return Record{}, false
	}
	return Record{
		Task:     task,
		Priority: difficulty.Priority(parsed.Descriptor),
		Notes:    parsed.Residual,
	}, true
}

// ClassifyAll keeps the listing order of tasks.
func ClassifyAll(tasks []habitica.Daily, criteria config.Criteria) []Record {
	var records []Record
	for _, task := range tasks {
		if rec, ok := Classify(task, criteria); ok {
			records = append(records, rec)
		}
	}
	return records
}

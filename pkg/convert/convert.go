package convert

import (
	"time"

	"github.com/harrisonrobin/dailytodo/pkg/classify"
	"github.com/harrisonrobin/dailytodo/pkg/habitica"
)

// DueInDays is how many calendar days after conversion the To-Do falls due.
const DueInDays = 2

// Build turns a classified Daily into the To-Do that replaces it. now is the
// caller's wall clock; its calendar date plus DueInDays becomes the due date.
func Build(rec classify.Record, now time.Time) habitica.Todo {
	daily := rec.Task

	tags := append([]string{}, daily.Tags...)
	attribute := daily.Attribute
	if attribute == "" {
		attribute = habitica.AttributeStrength
	}

	// New items: no id, never completed.
	checklist := make([]habitica.ChecklistItem, 0, len(daily.Checklist))
	for _, item := range daily.Checklist {
		checklist = append(checklist, habitica.ChecklistItem{Text: item.Text})
	}

	return habitica.Todo{
		Type:      habitica.TypeTodo,
		Text:      daily.Text,
		Notes:     rec.Notes,
		Tags:      tags,
		Priority:  rec.Priority,
		Attribute: attribute,
		Date:      habitica.NewDate(now.AddDate(0, 0, DueInDays)),
		Checklist: checklist,
	}
}

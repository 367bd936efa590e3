package difficulty

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Habitica task priorities.
const (
	Trivial = 0.1
	Easy    = 1.0
	Medium  = 1.5
	Hard    = 2.0
)

var priorities = map[string]float64{
	"Trivial": Trivial,
	"Easy":    Easy,
	"Medium":  Medium,
	"Hard":    Hard,
}

// Priority maps a descriptor such as "hard" to its priority. Unknown
// descriptors count as Easy.
func Priority(descriptor string) float64 {
	// A Caser is stateful and must not be shared.
	if p, ok := priorities[cases.Title(language.Und).String(descriptor)]; ok {
		return p
	}
	return Easy
}

// Name returns the descriptor for a priority, "Easy" when it is not one of
// the four Habitica values.
func Name(priority float64) string {
	for name, p := range priorities {
		if p == priority {
			return name
		}
	}
	return "Easy"
}

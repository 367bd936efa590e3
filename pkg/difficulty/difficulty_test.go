package difficulty

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriority(t *testing.T) {
	tests := map[string]float64{
		"Trivial": 0.1,
		"trivial": 0.1,
		"TRIVIAL": 0.1,
		"Easy":    1,
		"eAsY":    1,
		"Medium":  1.5,
		"medium":  1.5,
		"Hard":    2,
		"hARD":    2,
		"Foo":     1,
		"":        1,
		"EASY123": 1,
		"Hardest": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, Priority(in), "descriptor %q", in)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "Medium", Name(Medium))
	assert.Equal(t, "Trivial", Name(0.1))
	assert.Equal(t, "Easy", Name(3))
}

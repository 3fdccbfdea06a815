package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RezzaFairusNugraha/SMKN4PADALARANG/core/academic"
)

func TestAverageScore(t *testing.T) {
	grade := func(score int) academic.Grade { return academic.Grade{Score: score} }

	tests := []struct {
		name   string
		grades []academic.Grade
		want   float64
	}{
		{name: "no grades", want: 0},
		{name: "one grade", grades: []academic.Grade{grade(85)}, want: 85},
		{name: "half", grades: []academic.Grade{grade(85), grade(72)}, want: 78.5},
		{name: "rounded", grades: []academic.Grade{grade(80), grade(80), grade(81)}, want: 80.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, averageScore(tt.grades))
		})
	}
}

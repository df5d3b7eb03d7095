package neo4j

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHighestRisk(t *testing.T) {
	tests := []struct {
		name   string
		levels []interface{}
		want   string
	}{
		{
			name:   "picks critical over lower levels",
			levels: []interface{}{"low", "critical", "high"},
			want:   "critical",
		},
		{
			name:   "single level",
			levels: []interface{}{"medium"},
			want:   "medium",
		},
		{
			name:   "skips non-string values",
			levels: []interface{}{nil, 3, "high"},
			want:   "high",
		},
		{
			name:   "unknown levels rank below known ones",
			levels: []interface{}{"severe", "low"},
			want:   "low",
		},
		{
			name:   "empty input",
			levels: []interface{}{},
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highestRisk(tt.levels))
		})
	}
}

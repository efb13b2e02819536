package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderProgress(t *testing.T) {
	tests := []struct {
		name   string
		pct    int
		width  int
		filled int
		label  string
	}{
		{"empty", 0, 10, 0, "  0%"},
		{"half", 50, 10, 5, " 50%"},
		{"rounds down blocks", 17, 10, 1, " 17%"},
		{"full", 100, 10, 10, "100%"},
		{"over clamps", 140, 10, 10, "100%"},
		{"negative clamps", -5, 10, 0, "  0%"},
		{"tiny width clamps to 2", 50, 1, 1, " 50%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripANSI(RenderProgress(tt.pct, tt.width))
			assert.True(t, strings.HasPrefix(got, "["))
			assert.True(t, strings.HasSuffix(got, tt.label), got)
			assert.Equal(t, tt.filled, strings.Count(got, filledBlock))
		})
	}
}

func TestRenderFraction(t *testing.T) {
	assert.Equal(t, "3/7", stripANSI(RenderFraction(3, 7)))
}

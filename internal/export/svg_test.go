package export

import (
	"strings"
	"testing"

	"github.com/san-kum/trusslab/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 4) != "" {
		t.Error("expected empty output for nil canvas")
	}

	c := viz.NewCanvas(2, 1)
	c.Paint(0, 0, "#ff0000")
	c.Set(3, 3)
	svg := CanvasToSVG(c, 4)

	if !strings.HasPrefix(svg, "<?xml") || !strings.Contains(svg, "</svg>") {
		t.Fatal("expected a complete svg document")
	}
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(svg, `cx="2.0" cy="2.0" r="1.6" fill="#ff0000"`) {
		t.Error("expected coloured dot at the first sub-pixel")
	}
	if !strings.Contains(svg, `fill="`+defaultDot+`"`) {
		t.Error("expected default colour for uncoloured cell")
	}
}

func TestSeriesToSVG(t *testing.T) {
	tests := []struct {
		name   string
		xs, ys []float64
		empty  bool
	}{
		{"too short", []float64{0}, []float64{1}, true},
		{"mismatched", []float64{0, 1}, []float64{1}, true},
		{"flat", []float64{0, 1, 2}, []float64{3, 3, 3}, false},
		{"ramp", []float64{0, 1, 2}, []float64{0, 1, 4}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svg := SeriesToSVG(tt.xs, tt.ys, 200, 100, "#00ccff")
			if (svg == "") != tt.empty {
				t.Fatalf("expected empty=%v, got %q", tt.empty, svg)
			}
			if !tt.empty && strings.Count(svg, " L") != len(tt.xs)-1 {
				t.Errorf("expected %d segments", len(tt.xs)-1)
			}
		})
	}
}

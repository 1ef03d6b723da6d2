package viz

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/trusslab/internal/structure"
	"gonum.org/v1/gonum/spatial/r3"
)

func flatCamera() *Camera {
	return &Camera{Distance: 30, Near: 0.1, Zoom: 1, Span: 10}
}

func TestCameraProject(t *testing.T) {
	cam := flatCamera()

	tests := []struct {
		name    string
		p       r3.Vec
		x, y    int
		visible bool
	}{
		{"origin", r3.Vec{}, 50, 40, true},
		{"unit x", r3.Vec{X: 1}, 58, 40, true},
		{"unit y", r3.Vec{Y: 1}, 50, 32, true},
		{"behind", r3.Vec{Z: 30}, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, _, ok := cam.Project(tt.p, 100, 80)
			if ok != tt.visible {
				t.Fatalf("expected visible=%v, got %v", tt.visible, ok)
			}
			if ok && (x != tt.x || y != tt.y) {
				t.Errorf("expected (%d, %d), got (%d, %d)", tt.x, tt.y, x, y)
			}
		})
	}
}

func TestCameraOrbit(t *testing.T) {
	cam := NewCamera(10)
	cam.Orbit(0, 10)
	if cam.Pitch != math.Pi/2 {
		t.Errorf("expected pitch clamped to pi/2, got %f", cam.Pitch)
	}
	zoom := cam.Zoom
	cam.ZoomIn()
	if cam.Zoom <= zoom {
		t.Errorf("expected zoom to grow, got %f", cam.Zoom)
	}
	cam.ZoomOut()
	if math.Abs(cam.Zoom-zoom) > 1e-12 {
		t.Errorf("expected zoom %f, got %f", zoom, cam.Zoom)
	}
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(4, 2)
	if c.SubWidth() != 8 || c.SubHeight() != 8 {
		t.Fatalf("expected 8x8 dots, got %dx%d", c.SubWidth(), c.SubHeight())
	}

	c.DrawLine(0, 0, 7, 7, "#ffffff")
	for i := 0; i < 8; i++ {
		if !c.IsSet(i, i) {
			t.Errorf("expected dot (%d, %d) set", i, i)
		}
	}
	if c.IsSet(7, 0) {
		t.Error("expected (7, 0) clear")
	}

	c.Unset(0, 0)
	if c.IsSet(0, 0) {
		t.Error("expected (0, 0) cleared")
	}

	c.Paint(100, 100, "#ff0000")
	lines := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(lines))
	}
	if n := len([]rune(lines[0])); n != 4 {
		t.Errorf("expected 4 cells per row, got %d", n)
	}

	c.Clear()
	if c.IsSet(3, 3) {
		t.Error("expected clear canvas")
	}
}

func TestStageTracksManager(t *testing.T) {
	stage := NewStage(10)
	m := structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
	m.SetContainer(stage)

	a, _ := m.CreateNode(r3.Vec{})
	b, _ := m.CreateNode(r3.Vec{X: 1})
	c, _ := m.CreateNode(r3.Vec{Y: 1})
	if _, err := m.CreateBeam(a, b); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CreateBeam(b, c); err != nil {
		t.Fatal(err)
	}
	if stage.Len() != 5 {
		t.Fatalf("expected 5 elements, got %d", stage.Len())
	}

	stage.Add(a)
	if stage.Len() != 5 {
		t.Errorf("expected Add to be idempotent, got %d", stage.Len())
	}

	if _, err := m.DeleteNode(b); err != nil {
		t.Fatal(err)
	}
	if stage.Len() != 2 {
		t.Errorf("expected cascade to leave 2 elements, got %d", stage.Len())
	}
	if len(stage.Beams()) != 0 {
		t.Errorf("expected no beams, got %d", len(stage.Beams()))
	}
	nodes := stage.Nodes()
	if len(nodes) != 2 || nodes[0] != a || nodes[1] != c {
		t.Errorf("unexpected nodes %v", nodes)
	}
}

func TestStagePick(t *testing.T) {
	stage := NewStage(10)
	m := structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
	m.SetContainer(stage)
	a, _ := m.CreateNode(r3.Vec{})
	b, _ := m.CreateNode(r3.Vec{X: 2})
	beam, _ := m.CreateBeam(a, b)
	cam := flatCamera()

	tests := []struct {
		name      string
		x, y      int
		beamsOnly bool
		want      any
	}{
		{"node", 50, 41, false, a},
		{"far node", 65, 40, false, b},
		{"beam", 58, 42, false, beam},
		{"beam only", 50, 40, true, beam},
		{"empty", 58, 60, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stage.Pick(cam, 100, 80, tt.x, tt.y, tt.beamsOnly)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStageRender(t *testing.T) {
	stage := NewStage(10)
	m := structure.NewManager(structure.DefaultWorld(), structure.DefaultNodeDefaults(), nil)
	m.SetContainer(stage)
	a, _ := m.CreateNode(r3.Vec{})
	b, _ := m.CreateNode(r3.Vec{X: 2})
	if _, err := m.CreateBeam(a, b); err != nil {
		t.Fatal(err)
	}

	c := NewCanvas(50, 20)
	stage.Render(c, flatCamera())
	if !c.IsSet(50, 40) || !c.IsSet(58, 40) {
		t.Error("expected node and beam dots to be lit")
	}

	g := &Gizmo{}
	g.Attach(a)
	if g.Node() != a {
		t.Fatal("expected gizmo to track node")
	}
	g.Render(c, flatCamera())
	if !c.IsSet(50, 36) {
		t.Error("expected gizmo Y axis to be drawn")
	}
	g.Detach()
	if g.Node() != nil {
		t.Error("expected gizmo detached")
	}
}

func TestSparklineChart(t *testing.T) {
	if got := SparklineChart(nil, 4); got != "────" {
		t.Errorf("expected empty chart, got %q", got)
	}
	got := []rune(SparklineChart([]float64{0, 1, 2, 3, 4, 5}, 3))
	if len(got) != 3 || got[2] != '█' || got[0] != '▁' {
		t.Errorf("unexpected chart %q", string(got))
	}
}

func TestParseHex(t *testing.T) {
	r, g, b := parseHex("#ff8000")
	if r != 255 || g != 128 || b != 0 {
		t.Errorf("expected (255, 128, 0), got (%d, %d, %d)", r, g, b)
	}
	r, _, _ = parseHex("orange")
	if r != 255 {
		t.Errorf("expected fallback white, got %d", r)
	}
}

package pattern

import (
	"errors"
	"testing"

	"github.com/pthm-cable/murmur/config"
)

func TestNewTargetSetSortsAndDedupes(t *testing.T) {
	set := NewTargetSet([]Point{{2, 1}, {0, 0}, {1, 1}, {2, 1}, {5, 0}})

	want := []Point{{0, 0}, {5, 0}, {1, 1}, {2, 1}}
	if set.Len() != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), set.Len())
	}
	for i, p := range want {
		if set.At(i) != p {
			t.Errorf("point %d: expected %v, got %v", i, p, set.At(i))
		}
		if idx, ok := set.IndexOf(p); !ok || idx != i {
			t.Errorf("IndexOf(%v) = %d, %v", p, idx, ok)
		}
	}
	if set.Contains(Point{3, 3}) {
		t.Error("unexpected membership for (3,3)")
	}
}

func TestPointsReturnsCopy(t *testing.T) {
	set := NewTargetSet([]Point{{1, 1}})
	pts := set.Points()
	pts[0] = Point{9, 9}
	if set.At(0) != (Point{1, 1}) {
		t.Error("mutating Points() result changed the set")
	}
}

func TestBounds(t *testing.T) {
	set := NewTargetSet([]Point{{3, 1}, {1, 4}, {6, 2}})
	minP, maxP, ok := set.Bounds()
	if !ok {
		t.Fatal("expected bounds")
	}
	if minP != (Point{1, 1}) || maxP != (Point{6, 4}) {
		t.Errorf("unexpected bounds %v..%v", minP, maxP)
	}

	if _, _, ok := NewTargetSet(nil).Bounds(); ok {
		t.Error("expected no bounds for empty set")
	}
}

func TestStaticOutOfBounds(t *testing.T) {
	tests := []struct {
		name string
		pts  Static
		ok   bool
	}{
		{"inside", Static{{0, 0}, {9, 9}}, true},
		{"negative", Static{{-1, 0}}, false},
		{"past width", Static{{10, 0}}, false},
		{"past height", Static{{0, 10}}, false},
		{"empty", Static{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.pts.TargetPixels(10, 10)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("expected ErrOutOfBounds, got %v", err)
			}
		})
	}
}

func TestASCIICentered(t *testing.T) {
	art := ParseASCII(`
#.#
.#.
`)
	set, err := art.TargetPixels(7, 6)
	if err != nil {
		t.Fatal(err)
	}

	// 3x2 art on 7x6 canvas is offset by (2,2)
	want := []Point{{2, 2}, {4, 2}, {3, 3}}
	if set.Len() != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), set.Len())
	}
	for _, p := range want {
		if !set.Contains(p) {
			t.Errorf("missing %v", p)
		}
	}
}

func TestASCIITooLarge(t *testing.T) {
	art := ASCII{"#####"}
	if _, err := art.TargetPixels(4, 4); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestTextRasterizes(t *testing.T) {
	set, err := Text{Message: "HI"}.TargetPixels(64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() == 0 {
		t.Fatal("expected pixels for HI")
	}

	minP, maxP, _ := set.Bounds()
	if minP.X < 0 || minP.Y < 0 || maxP.X >= 64 || maxP.Y >= 32 {
		t.Errorf("text not on canvas: %v..%v", minP, maxP)
	}

	// Centered within a pixel of the canvas middle
	cx := (minP.X + maxP.X) / 2
	cy := (minP.Y + maxP.Y) / 2
	if cx < 30 || cx > 33 || cy < 14 || cy > 17 {
		t.Errorf("text not centered: center (%d,%d)", cx, cy)
	}
}

func TestTextDeterministic(t *testing.T) {
	a, err := Text{Message: "AB\nC"}.TargetPixels(64, 32)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Text{Message: "AB\nC"}.TargetPixels(64, 32)
	if err != nil {
		t.Fatal(err)
	}
	if a.Len() != b.Len() {
		t.Fatalf("lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := 0; i < a.Len(); i++ {
		if a.At(i) != b.At(i) {
			t.Fatalf("point %d differs: %v vs %v", i, a.At(i), b.At(i))
		}
	}
}

func TestTextEmptyAndOversized(t *testing.T) {
	set, err := Text{Message: "  "}.TargetPixels(64, 32)
	if err != nil || set.Len() != 0 {
		t.Errorf("expected empty set, got %d points, err %v", set.Len(), err)
	}

	if _, err := (Text{Message: "WAY TOO LONG FOR THIS"}).TargetPixels(64, 32); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestFromConfig(t *testing.T) {
	cfg := config.MustDefault()

	if _, ok := FromConfig(cfg.Pattern).(Text); !ok {
		t.Error("expected text provider for default config")
	}

	cfg.Pattern.Source = "ascii"
	cfg.Pattern.ASCII = []string{"##"}
	p, ok := FromConfig(cfg.Pattern).(ASCII)
	if !ok || len(p) != 1 {
		t.Errorf("expected ascii provider, got %T", p)
	}
}

package svgplace

import (
	"errors"
	"fmt"
	"testing"

	"github.com/benoitkugler/svgmerge/svgdoc"
)

func counter() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id%d", n)
	}
}

func newBoard(t *testing.T) *Board {
	t.Helper()
	b, err := NewBoard(DefaultCanvas, counter())
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestLibrary(t *testing.T) {
	lib := NewLibrary(counter())
	a := lib.Add("a.svg", "<svg/>", "")
	b := lib.Add("b.svg", "<svg></svg>", "https://example.com/b.svg")
	if a.ID == b.ID {
		t.Fatal("ids must be unique")
	}
	if got, ok := lib.Get(b.ID); !ok || got.OriginURL != "https://example.com/b.svg" {
		t.Errorf("unexpected source %v", got)
	}
	if err := lib.Remove(a.ID); err != nil {
		t.Fatal(err)
	}
	if err := lib.Remove(a.ID); !errors.Is(err, ErrUnknownSource) {
		t.Errorf("expected ErrUnknownSource, got %v", err)
	}
	if l := lib.List(); len(l) != 1 || l[0].ID != b.ID {
		t.Errorf("unexpected list %v", l)
	}
}

func TestDefaultIDs(t *testing.T) {
	lib := NewLibrary(nil)
	a, b := lib.Add("a", "", ""), lib.Add("b", "", "")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("unexpected ids %s %s", a.ID, b.ID)
	}
}

func TestPlaceCentres(t *testing.T) {
	b := newBoard(t)
	src := Source{ID: "s", Name: "logo", Markup: "<svg/>"}
	inst, err := b.Place(src, svgdoc.Dimensions{Width: 100, Height: 40}, 300, 200)
	if err != nil {
		t.Fatal(err)
	}
	if inst.X != 250 || inst.Y != 180 || inst.Width != 100 || inst.Height != 40 {
		t.Errorf("unexpected placement %+v", inst)
	}
	if inst.SourceID != "s" || inst.Markup != "<svg/>" {
		t.Errorf("instance must copy its source: %+v", inst)
	}

	for _, dims := range []svgdoc.Dimensions{{Width: 0, Height: 10}, {Width: 10, Height: -1}} {
		if _, err := b.Place(src, dims, 0, 0); !errors.Is(err, ErrDegenerateSize) {
			t.Errorf("%v: expected ErrDegenerateSize, got %v", dims, err)
		}
	}
	if b.Len() != 1 {
		t.Errorf("degenerate instances must not be added")
	}
}

func TestRemoveSourceKeepsInstances(t *testing.T) {
	lib := NewLibrary(counter())
	b := newBoard(t)
	src := lib.Add("a", `<svg width="5" height="5"/>`, "")
	if _, err := b.Place(src, svgdoc.Dimensions{Width: 5, Height: 5}, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := lib.Remove(src.ID); err != nil {
		t.Fatal(err)
	}
	insts := b.Instances()
	if len(insts) != 1 || insts[0].Markup != src.Markup {
		t.Errorf("instance must survive its source: %v", insts)
	}
}

func TestMoveResize(t *testing.T) {
	b := newBoard(t)
	inst, _ := b.Add(Instance{Width: 200, Height: 100})

	inst, err := b.Move(inst.ID, -10, -20)
	if err != nil || inst.X != -10 || inst.Y != -20 {
		t.Errorf("unexpected move %+v %v", inst, err)
	}

	inst, _ = b.Resize(inst.ID, 50)
	if inst.Width != 50 || inst.Height != 25 {
		t.Errorf("aspect ratio not kept: %+v", inst)
	}
	inst, _ = b.Resize(inst.ID, 5)
	if inst.Width != 20 || inst.Height != 20 {
		t.Errorf("minimum size not enforced: %+v", inst)
	}

	inst, err = b.SetSize(inst.ID, 30, 90)
	if err != nil || inst.Width != 30 || inst.Height != 90 {
		t.Errorf("unexpected size %+v %v", inst, err)
	}
	if _, err = b.SetSize(inst.ID, 0, 10); !errors.Is(err, ErrDegenerateSize) {
		t.Errorf("expected ErrDegenerateSize, got %v", err)
	}
	if _, err = b.Move("missing", 0, 0); !errors.Is(err, ErrUnknownInstance) {
		t.Errorf("expected ErrUnknownInstance, got %v", err)
	}
}

func TestOrder(t *testing.T) {
	b := newBoard(t)
	var ids []string
	for _, name := range []string{"A", "B", "C", "D"} {
		inst, _ := b.Add(Instance{Name: name, Width: 1, Height: 1})
		ids = append(ids, inst.ID)
	}
	if err := b.Remove(ids[1]); err != nil {
		t.Fatal(err)
	}
	b.Move(ids[2], 5, 5)
	var names string
	for _, inst := range b.Instances() {
		names += inst.Name
	}
	if names != "ACD" {
		t.Errorf("unexpected order %s", names)
	}
}

func TestCanvas(t *testing.T) {
	b := newBoard(t)
	if err := b.ResizeCanvas(Canvas{Width: 10, Height: 5}); err != nil {
		t.Errorf("any positive canvas must be accepted: %v", err)
	}
	if err := b.ResizeCanvas(Canvas{Width: 10, Height: 0}); !errors.Is(err, ErrInvalidCanvas) {
		t.Errorf("expected ErrInvalidCanvas, got %v", err)
	}
	if c := b.Canvas(); c != (Canvas{10, 5}) {
		t.Errorf("unexpected canvas %v", c)
	}
	if c := (Canvas{10, 5000}).Clamp(); c != (Canvas{400, 5000}) {
		t.Errorf("unexpected clamp %v", c)
	}
	if _, err := NewBoard(Canvas{}, nil); !errors.Is(err, ErrInvalidCanvas) {
		t.Errorf("expected ErrInvalidCanvas, got %v", err)
	}
}

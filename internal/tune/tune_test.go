package tune

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/latctl/internal/config"
	"github.com/san-kum/latctl/internal/metrics"
	"github.com/san-kum/latctl/internal/sim"
)

func TestGridSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{0, 1, 2, 3}, {-1, 0, 1}})

	calls := 0
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		calls++
		score := (p["a"]-2)*(p["a"]-2) + (p["b"]+1)*(p["b"]+1)
		return map[string]float64{"score": score}, nil
	}

	best, visited, err := g.Search(context.Background(), eval, "score")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if calls != 12 || len(visited) != 12 {
		t.Errorf("calls = %d, visited = %d, want 12", calls, len(visited))
	}
	if best.Params["a"] != 2 || best.Params["b"] != -1 || best.Score != 0 {
		t.Errorf("best = %+v", best)
	}
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		if p["x"] == 1 {
			return nil, errors.New("bad point")
		}
		if p["x"] == 2 {
			return map[string]float64{"m": math.NaN()}, nil
		}
		return map[string]float64{"m": 5}, nil
	}

	best, visited, err := g.Search(context.Background(), eval, "m")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(visited) != 1 || best.Params["x"] != 3 {
		t.Errorf("best = %+v, visited = %d", best, len(visited))
	}
}

func TestGridSearchNoCandidate(t *testing.T) {
	g := NewGridSearch([]string{"x"}, [][]float64{{1}})
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		return nil, errors.New("always")
	}
	if _, _, err := g.Search(context.Background(), eval, "m"); !errors.Is(err, ErrNoCandidate) {
		t.Errorf("err = %v, want ErrNoCandidate", err)
	}
}

func TestGridSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	g := NewGridSearch([]string{"x"}, [][]float64{{1, 2, 3}})
	eval := func(ctx context.Context, p map[string]float64) (map[string]float64, error) {
		cancel()
		return map[string]float64{"m": p["x"]}, nil
	}
	if _, _, err := g.Search(ctx, eval, "m"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRange(t *testing.T) {
	got := Range(5, 15, 3)
	want := []float64{5, 10, 15}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Range = %v, want %v", got, want)
		}
	}
	if r := Range(4, 9, 1); len(r) != 1 || r[0] != 4 {
		t.Errorf("Range count 1 = %v", r)
	}
}

func TestSearchBreakpoints(t *testing.T) {
	sc, err := sim.Builtin("speed-sweep")
	if err != nil {
		t.Fatal(err)
	}
	sc.Duration = 10

	base := config.GetPreset("speed")
	b := &Breakpoints{Base: base, Scenario: sc, NewMetrics: metrics.Default}

	// 20 >= 10 is rejected by validation and skipped.
	best, visited, err := SearchBreakpoints(context.Background(), b, []float64{2, 20}, []float64{10, 25}, "selection_switches")
	if err != nil {
		t.Fatalf("SearchBreakpoints: %v", err)
	}
	if len(visited) != 3 {
		t.Errorf("visited %d points, want 3", len(visited))
	}
	if best.Params[ParamLow] >= best.Params[ParamHigh] {
		t.Errorf("best pair not ordered: %+v", best.Params)
	}
	if base.Speed.Breakpoints[0] != 5 || base.Speed.Breakpoints[1] != 15 {
		t.Errorf("base config mutated: %v", base.Speed.Breakpoints)
	}
}

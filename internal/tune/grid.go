// Package tune searches zone breakpoints for the pair that minimizes a
// replay metric.
//
// Types:
//   - GridSearch: exhaustive search over named parameter ranges
//   - Evaluator: scores one parameter point
//   - Point: a scored parameter point
package tune

import (
	"context"
	"errors"
	"math"
)

var ErrNoCandidate = errors.New("tune: no parameter point could be evaluated")

// Evaluator runs one parameter point and returns its metrics.
type Evaluator func(ctx context.Context, params map[string]float64) (map[string]float64, error)

type Point struct {
	Params map[string]float64
	Score  float64
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination and returns the lowest-scoring point
// along with all evaluated points in visit order. Points whose evaluation
// fails are skipped; a cancelled ctx stops the search with its error.
func (g *GridSearch) Search(ctx context.Context, eval Evaluator, metricName string) (Point, []Point, error) {
	best := Point{Score: math.Inf(1)}
	var visited []Point

	err := g.searchRecursive(ctx, 0, make(map[string]float64), eval, metricName, &best, &visited)
	if err != nil {
		return Point{}, visited, err
	}
	if best.Params == nil {
		return Point{}, visited, ErrNoCandidate
	}
	return best, visited, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Evaluator,
	metricName string,
	best *Point,
	visited *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		result, err := eval(ctx, current)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		}

		val, ok := result[metricName]
		if !ok || math.IsNaN(val) {
			return nil
		}
		p := Point{Params: copyParams(current), Score: val}
		*visited = append(*visited, p)
		if val < best.Score {
			*best = p
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := copyParams(current)
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, eval, metricName, best, visited); err != nil {
			return err
		}
	}
	return nil
}

func copyParams(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Range returns count evenly spaced values from lo to hi inclusive.
func Range(lo, hi float64, count int) []float64 {
	if count <= 1 {
		return []float64{lo}
	}
	out := make([]float64, count)
	step := (hi - lo) / float64(count-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

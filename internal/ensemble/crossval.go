package ensemble

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/magajico/internal/models"
)

// foldBounds splits n rows into k contiguous folds; the first n%k folds get one extra row
func foldBounds(n, k int) [][2]int {
	bounds := make([][2]int, k)
	size, extra := n/k, n%k
	start := 0
	for f := 0; f < k; f++ {
		end := start + size
		if f < extra {
			end++
		}
		bounds[f] = [2]int{start, end}
		start = end
	}
	return bounds
}

// CrossValidate returns the mean held-out accuracy of prototype over k sequential folds.
// Folds are evaluated concurrently on clones of prototype.
func CrossValidate(ctx context.Context, prototype Estimator, X [][]float64, y []int, k int) (float64, error) {
	if k < 2 {
		return 0, fmt.Errorf("%w: cross-validation needs at least 2 folds, got %d", models.ErrValidation, k)
	}
	if len(X) < k {
		return 0, fmt.Errorf("%w: %d rows cannot be split into %d folds", models.ErrValidation, len(X), k)
	}

	bounds := foldBounds(len(X), k)
	scores := make([]float64, k)

	g, ctx := errgroup.WithContext(ctx)
	for f, b := range bounds {
		f, b := f, b
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			trainX := make([][]float64, 0, len(X)-(b[1]-b[0]))
			trainY := make([]int, 0, cap(trainX))
			trainX = append(append(trainX, X[:b[0]]...), X[b[1]:]...)
			trainY = append(append(trainY, y[:b[0]]...), y[b[1]:]...)

			est := prototype.Clone()
			if err := est.Fit(trainX, trainY); err != nil {
				return fmt.Errorf("fold %d of %s: %w", f, prototype.Name(), err)
			}

			correct := 0
			for i := b[0]; i < b[1]; i++ {
				if int(models.Distribution(est.PredictProba(X[i])).ArgMax()) == y[i] {
					correct++
				}
			}
			scores[f] = float64(correct) / float64(b[1]-b[0])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	return models.Mean(scores), nil
}

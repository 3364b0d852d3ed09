package ensemble

import (
	"math"
	"math/rand"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

const (
	minPrior       = 1e-9
	minDenominator = 1e-12
)

// GradientBoosting is multiclass softmax boosting of regression trees.
// Each stage fits one tree per class to the negative gradient of the log loss.
type GradientBoosting struct {
	cfg    config.GradientBoostingConfig
	init   [models.NumOutcomes]float64
	stages [][models.NumOutcomes]*node
}

// NewGradientBoosting creates an unfitted gradient boosting classifier
func NewGradientBoosting(cfg config.GradientBoostingConfig) *GradientBoosting {
	return &GradientBoosting{cfg: cfg}
}

// Name returns the estimator name
func (gb *GradientBoosting) Name() string {
	return NameGradientBoosting
}

// Clone returns an unfitted copy
func (gb *GradientBoosting) Clone() Estimator {
	return NewGradientBoosting(gb.cfg)
}

// Fit runs cfg.Stages boosting rounds
func (gb *GradientBoosting) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	rng := rand.New(rand.NewSource(gb.cfg.Seed))

	// Initial scores are the log class priors
	var counts [models.NumOutcomes]float64
	for _, label := range y {
		counts[label]++
	}
	var init [models.NumOutcomes]float64
	for k := range init {
		init[k] = math.Log(math.Max(counts[k]/float64(n), minPrior))
	}

	scores := make([][models.NumOutcomes]float64, n)
	for i := range scores {
		scores[i] = init
	}

	builder := &treeBuilder{
		X:               X,
		maxDepth:        gb.cfg.MaxDepth,
		minSamplesSplit: gb.cfg.MinSamplesSplit,
	}

	const k = float64(models.NumOutcomes)
	stages := make([][models.NumOutcomes]*node, 0, gb.cfg.Stages)
	residuals := make([]float64, n)

	for m := 0; m < gb.cfg.Stages; m++ {
		probs := make([][models.NumOutcomes]float64, n)
		for i := range scores {
			probs[i] = softmax(scores[i])
		}
		sample := gb.subsample(rng, n)

		var stage [models.NumOutcomes]*node
		for class := 0; class < models.NumOutcomes; class++ {
			for i := range residuals {
				target := 0.0
				if y[i] == class {
					target = 1
				}
				residuals[i] = target - probs[i][class]
			}

			leafValue := func(idx []int) float64 {
				var num, den float64
				for _, i := range idx {
					r := residuals[i]
					num += r
					den += math.Abs(r) * (1 - math.Abs(r))
				}
				if den < minDenominator {
					return 0
				}
				return (k - 1) / k * num / den
			}

			tree := builder.buildRegressor(residuals, sample, 0, leafValue)
			stage[class] = tree
			for i := range scores {
				scores[i][class] += gb.cfg.LearningRate * tree.predict(X[i])[0]
			}
		}
		stages = append(stages, stage)
	}

	gb.init = init
	gb.stages = stages
	return nil
}

// subsample draws the rows used by one stage
func (gb *GradientBoosting) subsample(rng *rand.Rand, n int) []int {
	size := n
	if gb.cfg.Subsample > 0 && gb.cfg.Subsample < 1 {
		size = int(math.Max(1, math.Round(float64(n)*gb.cfg.Subsample)))
	}
	if size == n {
		idx := make([]int, n)
		for i := range idx {
			idx[i] = i
		}
		return idx
	}
	return rng.Perm(n)[:size]
}

// PredictProba returns the softmax of the accumulated stage scores
func (gb *GradientBoosting) PredictProba(x []float64) [models.NumOutcomes]float64 {
	if len(gb.stages) == 0 {
		return uniform()
	}

	scores := gb.init
	for _, stage := range gb.stages {
		for class, tree := range stage {
			scores[class] += gb.cfg.LearningRate * tree.predict(x)[0]
		}
	}
	return softmax(scores)
}

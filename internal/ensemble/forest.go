package ensemble

import (
	"math"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/magajico/internal/config"
	"github.com/yourusername/magajico/internal/models"
)

// RandomForest is a bootstrap-bagged ensemble of gini classification trees
type RandomForest struct {
	cfg   config.RandomForestConfig
	trees []*node
}

// NewRandomForest creates an unfitted random forest
func NewRandomForest(cfg config.RandomForestConfig) *RandomForest {
	return &RandomForest{cfg: cfg}
}

// Name returns the estimator name
func (rf *RandomForest) Name() string {
	return NameRandomForest
}

// Clone returns an unfitted copy
func (rf *RandomForest) Clone() Estimator {
	return NewRandomForest(rf.cfg)
}

// Fit grows the trees in parallel; each tree has its own seed drawn from cfg.Seed
func (rf *RandomForest) Fit(X [][]float64, y []int) error {
	if err := validateTrainingSet(X, y); err != nil {
		return err
	}

	n := len(X)
	maxFeatures := int(math.Sqrt(float64(len(X[0]))))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	seeds := make([]int64, rf.cfg.Trees)
	master := rand.New(rand.NewSource(rf.cfg.Seed))
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*node, rf.cfg.Trees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for t := range trees {
		t := t
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[t]))
			sample := make([]int, n)
			for i := range sample {
				sample[i] = rng.Intn(n)
			}

			builder := &treeBuilder{
				X:               X,
				maxDepth:        rf.cfg.MaxDepth,
				minSamplesSplit: rf.cfg.MinSamplesSplit,
				maxFeatures:     maxFeatures,
				rng:             rng,
			}
			trees[t] = builder.buildClassifier(y, sample, 0)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rf.trees = trees
	return nil
}

// PredictProba averages the leaf class proportions of every tree
func (rf *RandomForest) PredictProba(x []float64) [models.NumOutcomes]float64 {
	if len(rf.trees) == 0 {
		return uniform()
	}

	var out [models.NumOutcomes]float64
	for _, tree := range rf.trees {
		leaf := tree.predict(x)
		for k := range out {
			out[k] += leaf[k]
		}
	}
	for k := range out {
		out[k] /= float64(len(rf.trees))
	}
	return out
}

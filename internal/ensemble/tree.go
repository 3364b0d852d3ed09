package ensemble

import (
	"math/rand"
	"sort"

	"github.com/yourusername/magajico/internal/models"
)

const minGain = 1e-12

// node is a binary decision tree node; leaves carry value
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	value     []float64
}

func (n *node) isLeaf() bool {
	return n.left == nil
}

func (n *node) predict(x []float64) []float64 {
	for !n.isLeaf() {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// treeBuilder grows CART trees over a fixed design matrix
type treeBuilder struct {
	X               [][]float64
	maxDepth        int
	minSamplesSplit int
	// maxFeatures <= 0 considers every column at each split
	maxFeatures int
	rng         *rand.Rand
}

func (b *treeBuilder) candidateFeatures() []int {
	width := len(b.X[0])
	if b.maxFeatures <= 0 || b.maxFeatures >= width || b.rng == nil {
		all := make([]int, width)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return b.rng.Perm(width)[:b.maxFeatures]
}

// sortedBy returns a copy of idx ordered by column feature
func (b *treeBuilder) sortedBy(idx []int, feature int) []int {
	sorted := make([]int, len(idx))
	copy(sorted, idx)
	sort.Slice(sorted, func(i, j int) bool {
		return b.X[sorted[i]][feature] < b.X[sorted[j]][feature]
	})
	return sorted
}

func (b *treeBuilder) partition(idx []int, feature int, threshold float64) (left, right []int) {
	for _, i := range idx {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}

// Classification

func classCounts(y []int, idx []int) [models.NumOutcomes]int {
	var counts [models.NumOutcomes]int
	for _, i := range idx {
		counts[y[i]]++
	}
	return counts
}

func gini(counts [models.NumOutcomes]int, n int) float64 {
	if n == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		impurity -= p * p
	}
	return impurity
}

func isPure(counts [models.NumOutcomes]int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func proportions(counts [models.NumOutcomes]int, n int) []float64 {
	out := make([]float64, models.NumOutcomes)
	for k, c := range counts {
		out[k] = float64(c) / float64(n)
	}
	return out
}

func (b *treeBuilder) buildClassifier(y []int, idx []int, depth int) *node {
	counts := classCounts(y, idx)
	if depth >= b.maxDepth || len(idx) < b.minSamplesSplit || isPure(counts) {
		return &node{value: proportions(counts, len(idx))}
	}

	feature, threshold, ok := b.bestGiniSplit(y, idx, counts)
	if !ok {
		return &node{value: proportions(counts, len(idx))}
	}

	left, right := b.partition(idx, feature, threshold)
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.buildClassifier(y, left, depth+1),
		right:     b.buildClassifier(y, right, depth+1),
	}
}

func (b *treeBuilder) bestGiniSplit(y []int, idx []int, total [models.NumOutcomes]int) (int, float64, bool) {
	n := len(idx)
	bestScore := gini(total, n) - minGain
	bestFeature, bestThreshold, found := 0, 0.0, false

	for _, f := range b.candidateFeatures() {
		sorted := b.sortedBy(idx, f)
		var left [models.NumOutcomes]int
		for i := 0; i < n-1; i++ {
			left[y[sorted[i]]]++
			cur, next := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
			if cur == next {
				continue
			}

			var right [models.NumOutcomes]int
			for k := range right {
				right[k] = total[k] - left[k]
			}
			nl, nr := i+1, n-i-1
			score := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

// Regression

func (b *treeBuilder) buildRegressor(target []float64, idx []int, depth int, leafValue func([]int) float64) *node {
	if depth >= b.maxDepth || len(idx) < b.minSamplesSplit {
		return &node{value: []float64{leafValue(idx)}}
	}

	feature, threshold, ok := b.bestVarianceSplit(target, idx)
	if !ok {
		return &node{value: []float64{leafValue(idx)}}
	}

	left, right := b.partition(idx, feature, threshold)
	return &node{
		feature:   feature,
		threshold: threshold,
		left:      b.buildRegressor(target, left, depth+1, leafValue),
		right:     b.buildRegressor(target, right, depth+1, leafValue),
	}
}

// bestVarianceSplit maximizes the reduction in squared error
func (b *treeBuilder) bestVarianceSplit(target []float64, idx []int) (int, float64, bool) {
	n := len(idx)
	var total float64
	for _, i := range idx {
		total += target[i]
	}
	bestScore := total*total/float64(n) + minGain
	bestFeature, bestThreshold, found := 0, 0.0, false

	for _, f := range b.candidateFeatures() {
		sorted := b.sortedBy(idx, f)
		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += target[sorted[i]]
			cur, next := b.X[sorted[i]][f], b.X[sorted[i+1]][f]
			if cur == next {
				continue
			}

			nl, nr := float64(i+1), float64(n-i-1)
			rightSum := total - leftSum
			score := leftSum*leftSum/nl + rightSum*rightSum/nr
			if score > bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}
	return bestFeature, bestThreshold, found
}

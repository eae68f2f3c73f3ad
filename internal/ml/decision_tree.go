package ml

import (
	"errors"
	"fmt"
	"sort"
)

// TreeNode is one node of a flattened decision tree. Children are indices into
// DecisionTree.Nodes; leaves carry the class distribution of their samples.
type TreeNode struct {
	Feature      int
	Threshold    float64
	Left         int
	Right        int
	Leaf         bool
	Label        int
	Distribution []float64
}

// DecisionTree is a CART classifier using Gini impurity. Rows go left when the
// feature value is <= Threshold.
type DecisionTree struct {
	MaxDepth        int
	MinSamplesSplit int
	Labels          []string
	Nodes           []TreeNode
}

func NewDecisionTree() *DecisionTree {
	return &DecisionTree{MinSamplesSplit: 2}
}

func (dt *DecisionTree) Kind() string { return KindDecisionTree }

func (dt *DecisionTree) Classes() []string { return dt.Labels }

type treeBuilder struct {
	X       Matrix
	y       []int
	classes int
	tree    *DecisionTree
}

func (dt *DecisionTree) Fit(X Matrix, y []string) error {
	if err := checkTrainingSet(X, y); err != nil {
		return err
	}
	if dt.MinSamplesSplit < 2 {
		dt.MinSamplesSplit = 2
	}

	classes, encoded := encodeLabels(y)
	dt.Labels = classes
	dt.Nodes = nil

	b := &treeBuilder{X: X, y: encoded, classes: len(classes), tree: dt}
	idx := make([]int, X.Len())
	for i := range idx {
		idx[i] = i
	}
	b.build(idx, 0)
	return nil
}

func (b *treeBuilder) counts(idx []int) []int {
	counts := make([]int, b.classes)
	for _, i := range idx {
		counts[b.y[i]]++
	}
	return counts
}

func (b *treeBuilder) leaf(counts []int, total int) TreeNode {
	dist := make([]float64, len(counts))
	best := 0
	for c, n := range counts {
		dist[c] = float64(n) / float64(total)
		if n > counts[best] {
			best = c
		}
	}
	return TreeNode{Feature: -1, Left: -1, Right: -1, Leaf: true, Label: best, Distribution: dist}
}

func (b *treeBuilder) build(idx []int, depth int) int {
	counts := b.counts(idx)
	pos := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, b.leaf(counts, len(idx)))

	if len(idx) < b.tree.MinSamplesSplit || isPureCounts(counts) {
		return pos
	}
	if b.tree.MaxDepth > 0 && depth >= b.tree.MaxDepth {
		return pos
	}

	feature, threshold, ok := b.bestSplit(idx, counts)
	if !ok {
		return pos
	}

	var left, right []int
	for _, i := range idx {
		if b.X.Rows[i].Get(feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return pos
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.tree.Nodes[pos] = TreeNode{
		Feature:      feature,
		Threshold:    threshold,
		Left:         l,
		Right:        r,
		Label:        b.tree.Nodes[pos].Label,
		Distribution: b.tree.Nodes[pos].Distribution,
	}
	return pos
}

type featureValue struct {
	value float64
	label int
}

// bestSplit scans every feature that is non-zero in at least one sample. Zero
// entries form the lowest group since TF-IDF values are non-negative.
func (b *treeBuilder) bestSplit(idx []int, parent []int) (int, float64, bool) {
	byFeature := make(map[int][]featureValue)
	for _, i := range idx {
		row := b.X.Rows[i]
		for k, f := range row.Indices {
			if row.Values[k] != 0 {
				byFeature[f] = append(byFeature[f], featureValue{value: row.Values[k], label: b.y[i]})
			}
		}
	}
	features := make([]int, 0, len(byFeature))
	for f := range byFeature {
		features = append(features, f)
	}
	sort.Ints(features)

	total := len(idx)
	bestImpurity := gini(parent, total)
	bestFeature, bestThreshold := -1, 0.0

	left := make([]int, b.classes)
	right := make([]int, b.classes)
	for _, f := range features {
		values := byFeature[f]
		sort.Slice(values, func(i, j int) bool { return values[i].value < values[j].value })

		copy(left, parent)
		for c := range right {
			right[c] = 0
		}
		for _, v := range values {
			left[v.label]--
			right[v.label]++
		}
		nLeft := total - len(values)

		consider := func(threshold float64) {
			if nLeft == 0 || nLeft == total {
				return
			}
			impurity := (float64(nLeft)*gini(left, nLeft) + float64(total-nLeft)*gini(right, total-nLeft)) / float64(total)
			if impurity < bestImpurity-1e-12 {
				bestImpurity = impurity
				bestFeature = f
				bestThreshold = threshold
			}
		}

		consider(values[0].value / 2)
		for k := 0; k < len(values)-1; k++ {
			left[values[k].label]++
			right[values[k].label]--
			nLeft++
			if values[k+1].value > values[k].value {
				consider((values[k].value + values[k+1].value) / 2)
			}
		}
	}
	if bestFeature < 0 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	sum := 1.0
	for _, n := range counts {
		p := float64(n) / float64(total)
		sum -= p * p
	}
	return sum
}

func isPureCounts(counts []int) bool {
	nonZero := 0
	for _, n := range counts {
		if n > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (dt *DecisionTree) leafFor(row SparseVector) (TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return TreeNode{}, ErrNotFitted
	}
	i := 0
	for steps := 0; steps <= len(dt.Nodes); steps++ {
		node := dt.Nodes[i]
		if node.Leaf {
			return node, nil
		}
		if row.Get(node.Feature) <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
		if i < 0 || i >= len(dt.Nodes) {
			return TreeNode{}, errors.New("decision tree: child index out of range")
		}
	}
	return TreeNode{}, errors.New("decision tree: cycle detected")
}

func (dt *DecisionTree) Predict(X Matrix) ([]string, error) {
	out := make([]string, X.Len())
	for i, row := range X.Rows {
		node, err := dt.leafFor(row)
		if err != nil {
			return nil, err
		}
		out[i] = dt.Labels[node.Label]
	}
	return out, nil
}

func (dt *DecisionTree) PredictProba(X Matrix) ([][]float64, error) {
	out := make([][]float64, X.Len())
	for i, row := range X.Rows {
		node, err := dt.leafFor(row)
		if err != nil {
			return nil, err
		}
		out[i] = append([]float64(nil), node.Distribution...)
	}
	return out, nil
}

func (dt *DecisionTree) validate() error {
	if len(dt.Nodes) == 0 || len(dt.Labels) == 0 {
		return ErrNotFitted
	}
	for i, n := range dt.Nodes {
		if n.Label < 0 || n.Label >= len(dt.Labels) {
			return fmt.Errorf("decision tree: node %d has label index %d", i, n.Label)
		}
		if !n.Leaf && (n.Left <= i || n.Right <= i || n.Left >= len(dt.Nodes) || n.Right >= len(dt.Nodes)) {
			return fmt.Errorf("decision tree: node %d has invalid children %d/%d", i, n.Left, n.Right)
		}
	}
	return nil
}

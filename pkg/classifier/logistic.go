package classifier

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Training hyperparameters. Fixed rather than configurable: the sweep
// compares budgets against each other, so what matters is that every budget
// trains under identical settings.
const (
	learningRate = 0.5
	l2Penalty    = 1e-4
	epochs       = 200
)

// logisticModel is a multinomial logistic regression with class-balanced
// sample weighting. Weights initialize to zero and training is full-batch
// gradient descent, so fitting is deterministic for a given input.
type logisticModel struct {
	weights *mat.Dense // classes x features
	bias    []float64
	classes int
}

// fitLogistic trains on sparse count vectors. y holds class indices in
// [0, classes). sampleWeights counter label skew: weight_c = n / (k * n_c).
func fitLogistic(rows []docVector, y []int, classes, features int) *logisticModel {
	m := &logisticModel{
		weights: mat.NewDense(classes, features, nil),
		bias:    make([]float64, classes),
		classes: classes,
	}
	if len(rows) == 0 || features == 0 {
		return m
	}

	sampleWeights := balancedWeights(y, classes)

	grad := mat.NewDense(classes, features, nil)
	gradBias := make([]float64, classes)
	probs := make([]float64, classes)

	for epoch := 0; epoch < epochs; epoch++ {
		grad.Zero()
		for c := range gradBias {
			gradBias[c] = 0
		}

		for i, row := range rows {
			m.scores(row, probs)
			softmax(probs)

			w := sampleWeights[i]
			for c := 0; c < classes; c++ {
				delta := probs[c]
				if c == y[i] {
					delta -= 1
				}
				delta *= w

				gradBias[c] += delta
				for _, t := range row {
					grad.Set(c, t.Index, grad.At(c, t.Index)+delta*t.Count)
				}
			}
		}

		n := float64(len(rows))
		step := learningRate / n

		// L2 on weights only, not bias.
		var penalized mat.Dense
		penalized.Scale(l2Penalty, m.weights)
		grad.Add(grad, &penalized)

		var update mat.Dense
		update.Scale(step, grad)
		m.weights.Sub(m.weights, &update)

		for c := 0; c < classes; c++ {
			m.bias[c] -= step * gradBias[c]
		}
	}

	return m
}

// balancedWeights returns per-sample weights n/(k*n_c), the usual
// class-balanced scheme for skewed label distributions.
func balancedWeights(y []int, classes int) []float64 {
	counts := make([]float64, classes)
	for _, c := range y {
		counts[c]++
	}

	n := float64(len(y))
	k := float64(classes)

	weights := make([]float64, len(y))
	for i, c := range y {
		weights[i] = n / (k * counts[c])
	}
	return weights
}

// scores writes the raw class scores for a row into out.
func (m *logisticModel) scores(row docVector, out []float64) {
	for c := 0; c < m.classes; c++ {
		s := m.bias[c]
		for _, t := range row {
			s += m.weights.At(c, t.Index) * t.Count
		}
		out[c] = s
	}
}

// predict returns the class index with the highest score. Ties resolve to
// the lowest class index, keeping prediction deterministic.
func (m *logisticModel) predict(row docVector) int {
	scores := make([]float64, m.classes)
	m.scores(row, scores)

	best := 0
	for c := 1; c < m.classes; c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}

func softmax(scores []float64) {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	var sum float64
	for i, s := range scores {
		scores[i] = math.Exp(s - max)
		sum += scores[i]
	}
	for i := range scores {
		scores[i] /= sum
	}
}

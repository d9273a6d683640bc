package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stancelab/stancesweep/pkg/types"
)

// ErrNoTrainingData is returned when a budget's weak-label dataset is empty.
// The sweep treats this as a per-budget degeneracy, not a run failure.
var ErrNoTrainingData = errors.New("no training records")

// Trainer fits one linear stance classifier on a weakly-labeled training set
// and scores it against the fixed test set.
type Trainer struct {
	minDF  int
	logger *slog.Logger
}

// NewTrainer creates a Trainer. minDF below 1 uses DefaultMinDF.
func NewTrainer(minDF int, logger *slog.Logger) *Trainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trainer{minDF: minDF, logger: logger}
}

// TrainAndScore vectorizes train and test jointly, fits a class-balanced
// logistic regression on the training partition, predicts the test
// partition, and returns the classification report.
//
// The vectorizer's vocabulary is derived exclusively from the concatenated
// train+test text passed here; no outside corpus ever contributes features.
func (t *Trainer) TrainAndScore(ctx context.Context, train []types.LabeledRecord, test []types.TestRecord) (types.BudgetResult, error) {
	if len(train) == 0 {
		return types.BudgetResult{}, ErrNoTrainingData
	}
	if len(test) == 0 {
		return types.BudgetResult{}, fmt.Errorf("test set is empty")
	}
	if err := ctx.Err(); err != nil {
		return types.BudgetResult{}, err
	}

	// One corpus tagged by subset membership: train rows first, then test
	// rows, so splitting the feature matrix back is positional and keeps
	// row order within each subset.
	texts := make([]string, 0, len(train)+len(test))
	for _, r := range train {
		texts = append(texts, r.Text)
	}
	for _, r := range test {
		texts = append(texts, r.Text)
	}

	v := NewVectorizer(t.minDF)
	v.Fit(texts)
	rows := v.Transform(texts)
	trainRows, testRows := rows[:len(train)], rows[len(train):]

	t.logger.Debug("fitted joint vocabulary",
		"features", v.Size(), "train", len(train), "test", len(test))

	// Class indices come from the training labels in fixed stance order.
	classIndex := make(map[types.Stance]int)
	var classList []types.Stance
	for _, s := range []types.Stance{types.StanceFavor, types.StanceAgainst, types.StanceNone} {
		for _, r := range train {
			if r.Label == s {
				classIndex[s] = len(classList)
				classList = append(classList, s)
				break
			}
		}
	}

	y := make([]int, len(train))
	for i, r := range train {
		y[i] = classIndex[r.Label]
	}

	model := fitLogistic(trainRows, y, len(classList), v.Size())

	predicted := make([]types.Stance, len(test))
	actual := make([]types.Stance, len(test))
	for i, row := range testRows {
		predicted[i] = classList[model.predict(row)]
		actual[i] = test[i].Label
	}

	classes, macroF1, target := Report(actual, predicted)
	return types.BudgetResult{
		Classes:      classes,
		MacroF1:      macroF1,
		TargetMetric: target,
		TrainRecords: len(train),
	}, nil
}

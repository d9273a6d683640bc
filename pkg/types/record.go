package types

// LabeledRecord is one retrieved domain document tentatively assigned the
// label of the query that retrieved it. Score is the cosine similarity
// between the originating query's embedding and the document's embedding.
type LabeledRecord struct {
	ID        string
	QueryText string
	Text      string
	Label     Stance
	Score     float64
}

// ClassReport holds precision/recall/F1 for a single stance class.
type ClassReport struct {
	Class     Stance
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// BudgetResult is the evaluation outcome for one budget. It is created by
// the evaluator and never mutated afterwards.
type BudgetResult struct {
	K            int
	Classes      []ClassReport
	MacroF1      float64
	TargetMetric float64

	// Non-fatal degeneracies recorded for reproducibility auditing.
	Clamped      bool
	AllFiltered  bool
	TrainRecords int
}

// ClassF1 returns the F1 for a class, or 0 if the class is absent from the
// report.
func (r BudgetResult) ClassF1(c Stance) float64 {
	for _, cr := range r.Classes {
		if cr.Class == c {
			return cr.F1
		}
	}
	return 0
}

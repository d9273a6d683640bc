package classifier

import (
	"github.com/montanaflynn/stats"

	"github.com/stancelab/stancesweep/pkg/types"
)

// Report computes per-class precision/recall/F1 over the test predictions,
// together with the macro F1 and the two-class target metric (macro F1
// restricted to favor and against, the standard stance-detection headline
// score). Classes are reported for exactly the stance classes present in
// the test set, in fixed stance order.
func Report(actual, predicted []types.Stance) ([]types.ClassReport, float64, float64) {
	present := make(map[types.Stance]bool, len(actual))
	for _, s := range actual {
		present[s] = true
	}

	var classes []types.ClassReport
	var f1s []float64
	for _, s := range []types.Stance{types.StanceFavor, types.StanceAgainst, types.StanceNone} {
		if !present[s] {
			continue
		}
		cr := classReport(s, actual, predicted)
		classes = append(classes, cr)
		f1s = append(f1s, cr.F1)
	}

	macroF1, _ := stats.Mean(f1s)

	var polar []float64
	for _, cr := range classes {
		for _, p := range types.PolarStances {
			if cr.Class == p {
				polar = append(polar, cr.F1)
			}
		}
	}
	target, _ := stats.Mean(polar)

	return classes, macroF1, target
}

func classReport(class types.Stance, actual, predicted []types.Stance) types.ClassReport {
	var tp, fp, fn, support float64
	for i := range actual {
		switch {
		case actual[i] == class && predicted[i] == class:
			tp++
		case actual[i] != class && predicted[i] == class:
			fp++
		case actual[i] == class && predicted[i] != class:
			fn++
		}
		if actual[i] == class {
			support++
		}
	}

	var precision, recall, f1 float64
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	return types.ClassReport{
		Class:     class,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Support:   int(support),
	}
}

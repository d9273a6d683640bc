// Package stancesweep expands a small hand-labeled exemplar set into a
// larger weakly-labeled training corpus and measures how classifier quality
// scales with the weak-label budget.
//
// The pipeline has two stages. The labeling stage retrieves, for every
// exemplar query and every budget k, the k nearest domain documents by
// cosine similarity over dense embeddings, assigns each match the query's
// stance label, and persists one dataset per budget. The evaluation stage
// trains one bag-of-n-grams linear classifier per persisted dataset against
// a fixed held-out test set and ranks the budgets by the two-class macro F1.
//
// # Basic Usage
//
//	client, err := embedder.NewClient(embedder.Config{
//		Provider: "embedeverything",
//		Model:    "all-MiniLM-L6-v2",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	encoder, err := encode.NewEncoder(client, encode.Options{})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer encoder.Close()
//
//	writer, err := corpus.NewDatasetWriter("./weak_labels", "energy")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	pipeline, err := stancesweep.NewPipeline(encoder, writer, nil, nil, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := pipeline.RunSweep(ctx, queries, docs); err != nil {
//		log.Fatal(err)
//	}
//	results, err := pipeline.ScoreSweep(ctx, testRecords)
//
// Each budget is computed independently and persisted atomically, so an
// interrupted sweep resumes at the first unfinished budget.
package stancesweep

// Package pipeline wires the extract, transform and load stages into a
// single run.
//
// A run resolves the handle, collects up to Limit posts, flattens them into
// a records.Table, writes the CSV locally and uploads it. Stages run one after
// another. A failed lookup or fetch leaves no artifact behind. An empty
// timeline still produces and uploads a header-only file.
//
//	p := pipeline.New(pipeline.Deps{
//		Source:   client,
//		Store:    manager,
//		Uploader: uploader,
//		Logger:   log,
//	}, pipeline.Options{
//		Handle:      "wtfruchss",
//		Limit:       50,
//		PageOptions: twitter.DefaultPageOptions(),
//		Bucket:      "bhaskar-airflow-bucket",
//		KeyPrefix:   "refined_tweets_",
//	})
//	result, err := p.Run(ctx)
package pipeline

// Package storage persists run artifacts locally and publishes them to S3.
//
// Manager writes each artifact through a temporary file and an atomic
// rename. S3Uploader puts the finished file into a bucket using minio-go.
// Its credentials are injected: AmbientCredentials follows the usual AWS
// lookup order, and StaticCredentials serves S3-compatible stores.
//
//	manager, _ := storage.NewManager("./output")
//	name := storage.ArtifactName("refined_tweets_", time.Now())
//	path, err := manager.Save(&buf, name)
//
//	uploader, _ := storage.NewS3Uploader(storage.S3Config{
//		Endpoint: "s3.amazonaws.com",
//		Region:   "us-east-1",
//		UseSSL:   true,
//	}, nil, log)
//	err = uploader.Upload(ctx, path, "bhaskar-airflow-bucket", name)
package storage

package config

import (
	"fmt"
	"os"
	"strconv"
)

// Cli holds the settings a deployment binary assembles from flags/env and
// passes down into the orchestrator/worker services. Not every field is
// used by every deployment target - the monolith needs Redis and a local
// upload dir, the serverless binaries need the AWS fields instead.
type Cli struct {
	Addr              string
	Port              int
	UploadDir         string
	RedisURL          string
	S3Bucket          string
	SQSHighQueueURL   string
	SQSNormalQueueURL string
	DynamoTable       string
	AWSRegion         string
	AWSAccessKey      string
	AWSSecretKey      string
	WorkerPoolSize    int
}

// requireEnv reads a required environment variable, exiting the process
// with status 1 if it's unset - mirroring how the original Rust AWS config
// loader panics on a missing required var rather than falling back silently.
func requireEnv(name string) string {
	v := os.Getenv(name)
	if v == "" {
		fmt.Fprintf(os.Stderr, "missing required environment variable %s\n", name)
		os.Exit(1)
	}
	return v
}

func optionalEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

// MonolithConfigFromEnv assembles the Cli for the single-host deployment:
// HTTP notify endpoint + Redis-backed queue/state + local filesystem
// storage + an in-process worker pool.
func MonolithConfigFromEnv() Cli {
	return Cli{
		Addr:           optionalEnv("ADDR", "0.0.0.0"),
		Port:           mustAtoi(optionalEnv("PORT", "8080")),
		UploadDir:      requireEnv("UPLOAD_DIR"),
		RedisURL:       requireEnv("REDIS_URL"),
		WorkerPoolSize: DefaultWorkerPoolSize,
	}
}

// OrchestratorLambdaConfigFromEnv assembles the Cli for the serverless
// orchestrator entrypoint, wired to S3/SQS/DynamoDB.
func OrchestratorLambdaConfigFromEnv() Cli {
	return Cli{
		S3Bucket:          requireEnv("S3_BUCKET"),
		SQSHighQueueURL:   requireEnv("SQS_HIGH_QUEUE_URL"),
		SQSNormalQueueURL: requireEnv("SQS_NORMAL_QUEUE_URL"),
		DynamoTable:       requireEnv("DYNAMODB_TABLE"),
		AWSRegion:         optionalEnv("AWS_REGION", "us-east-1"),
		AWSAccessKey:      optionalEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:      optionalEnv("AWS_SECRET_ACCESS_KEY", ""),
	}
}

// WorkerLambdaConfigFromEnv assembles the Cli for the serverless worker
// entrypoint. Each invocation processes exactly one job (W=1).
func WorkerLambdaConfigFromEnv() Cli {
	cfg := OrchestratorLambdaConfigFromEnv()
	cfg.WorkerPoolSize = 1
	return cfg
}

func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid integer %q: %s\n", s, err)
		os.Exit(1)
	}
	return n
}

// Command hlsfrag-worker runs the serverless fan-out deployment's worker
// half: one job per invocation (W=1), wired to S3/SQS/DynamoDB. Grounded on
// original_source's src/bin/aws_worker.rs, whose Lambda comment notes each
// invocation processes exactly one trigger rather than looping forever -
// here that's RunOnce instead of worker.Service.Run's infinite loop.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/golang/glog"

	"github.com/livepeer/hlsfrag/config"
	"github.com/livepeer/hlsfrag/queue/sqsqueue"
	"github.com/livepeer/hlsfrag/state/dynamostate"
	"github.com/livepeer/hlsfrag/storage/s3storage"
	"github.com/livepeer/hlsfrag/video"
	"github.com/livepeer/hlsfrag/worker"
)

func main() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Fatal(err)
	}
	flag.Parse()

	cli := config.WorkerLambdaConfigFromEnv()
	sess := newAWSSession(cli)

	svc := worker.Service{
		Storage:    s3storage.New(sess, cli.S3Bucket),
		Queue:      sqsqueue.New(sqs.New(sess), cli.SQSHighQueueURL, cli.SQSNormalQueueURL),
		State:      dynamostate.New(dynamodb.New(sess), cli.DynamoTable),
		Transcoder: video.Transcoder{},
	}

	if err := svc.RunOnce(context.Background(), 10*time.Second); err != nil {
		glog.Fatalf("worker invocation failed: %v", err)
	}
}

func newAWSSession(cli config.Cli) *session.Session {
	awsCfg := aws.NewConfig().WithRegion(cli.AWSRegion)
	if cli.AWSAccessKey != "" && cli.AWSSecretKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cli.AWSAccessKey, cli.AWSSecretKey, ""))
	}
	return session.Must(session.NewSession(awsCfg))
}

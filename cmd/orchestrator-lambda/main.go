// Command hlsfrag-orchestrator runs the serverless fan-out deployment's
// orchestrator half: wired to S3/SQS/DynamoDB instead of the monolith's
// local FS/Redis pair. Grounded on original_source's src/bin/aws_orchestrator.rs,
// which likewise reads its one triggering video key from the environment
// rather than wiring an actual Lambda event-source SDK (SPEC_FULL.md §C.3 -
// the distillation pack carries no aws-lambda-go dependency to ground a real
// handler on, so this binary keeps the original's env-var invocation shape;
// a production deploy would front it with a thin Lambda handler translating
// the S3 event into SOURCE_KEY).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/golang/glog"

	"github.com/livepeer/hlsfrag/config"
	"github.com/livepeer/hlsfrag/orchestrator"
	"github.com/livepeer/hlsfrag/queue/sqsqueue"
	"github.com/livepeer/hlsfrag/state/dynamostate"
	"github.com/livepeer/hlsfrag/storage/s3storage"
	"github.com/livepeer/hlsfrag/video"
)

func main() {
	if err := flag.Set("logtostderr", "true"); err != nil {
		glog.Fatal(err)
	}
	flag.Parse()

	cli := config.OrchestratorLambdaConfigFromEnv()
	sourceKey := os.Getenv("SOURCE_KEY")
	if sourceKey == "" {
		glog.Fatal("SOURCE_KEY env var not set; in a production deploy this comes from the S3 event")
	}

	sess := newAWSSession(cli)

	svc := orchestrator.Service{
		Storage:              s3storage.New(sess, cli.S3Bucket),
		Queue:                sqsqueue.New(sqs.New(sess), cli.SQSHighQueueURL, cli.SQSNormalQueueURL),
		State:                dynamostate.New(dynamodb.New(sess), cli.DynamoTable),
		Prober:               video.Probe{},
		EnqueueRetryAttempts: config.DefaultRetryAttempts,
	}

	videoID, err := svc.HandleNewSource(context.Background(), sourceKey)
	if err != nil {
		glog.Fatalf("failed to process source %s: %v", sourceKey, err)
	}
	fmt.Printf("orchestrated video %s from source %s\n", videoID, sourceKey)
}

// newAWSSession uses static credentials when both key fields are present
// (local/CI testing against a real account) and falls back to the SDK's
// default provider chain (instance role, env vars) otherwise - the shape
// a Lambda execution role relies on in production.
func newAWSSession(cli config.Cli) *session.Session {
	awsCfg := aws.NewConfig().WithRegion(cli.AWSRegion)
	if cli.AWSAccessKey != "" && cli.AWSSecretKey != "" {
		awsCfg = awsCfg.WithCredentials(credentials.NewStaticCredentials(cli.AWSAccessKey, cli.AWSSecretKey, ""))
	}
	return session.Must(session.NewSession(awsCfg))
}

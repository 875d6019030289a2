package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"applygen-backend/internal/bootstrap"
	"applygen-backend/internal/shared/config"
	"applygen-backend/internal/shared/metrics"
	"applygen-backend/internal/shared/telemetry"
	"applygen-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	app      *bootstrap.App
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	built.BatchService.Queue = nil
	app = built
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
		for _, record := range event.Records {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
		return events.SQSEventResponse{BatchItemFailures: failures}, initErr
	}

	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		metrics.IncJob("received")
		err := workerproc.HandleMessage(ctx, app.Processor, record.Body)
		switch {
		case err == nil:
			metrics.IncJob("completed")
		case workerproc.Permanent(err):
			// Reported as handled so SQS does not redeliver it.
			telemetry.Error("lambda.batch.dropped", map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()})
			metrics.IncJob("dropped")
		default:
			telemetry.Warn("lambda.batch.retry", map[string]any{"sqs_message_id": record.MessageId, "error": err.Error()})
			metrics.IncJob("failed")
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}

	return events.SQSEventResponse{BatchItemFailures: failures}, nil
}

func main() {
	lambda.Start(handler)
}

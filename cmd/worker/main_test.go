package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"applygen-backend/internal/batches"
	"applygen-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err  error
	seen []string
}

func (f *fakeProcessor) Process(ctx context.Context, batchID string) (batches.Batch, error) {
	f.seen = append(f.seen, batchID)
	if f.err != nil {
		return batches.Batch{}, f.err
	}
	return batches.Batch{ID: batchID, Status: batches.StatusCompleted}, nil
}

func queuedMessage(t *testing.T, id, batchID string) sqstypes.Message {
	t.Helper()
	body, err := queue.EncodeMessage(queue.NewMessage(batchID, "req-"+id, time.Now()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sqstypes.Message{
		MessageId:     aws.String("m" + id),
		ReceiptHandle: aws.String("r" + id),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}

	handleMessage(context.Background(), client, "queue", proc, queuedMessage(t, "1", "batch-1"))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.seen) != 1 || proc.seen[0] != "batch-1" {
		t.Fatalf("unexpected processed ids: %v", proc.seen)
	}
}

func TestWorkerKeepsMessageOnTransientFailure(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: errors.New("storage unavailable")}

	handleMessage(context.Background(), client, "queue", proc, queuedMessage(t, "2", "batch-2"))

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnPermanentFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"batch failed", fmt.Errorf("%w: every candidate failed", batches.ErrBatchFailed)},
		{"batch missing", batches.ErrNotFound},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeSQS{}
			proc := &fakeProcessor{err: tt.err}

			handleMessage(context.Background(), client, "queue", proc, queuedMessage(t, "3", "batch-3"))

			if len(client.deleted) != 1 {
				t.Fatalf("expected delete, got %d", len(client.deleted))
			}
		})
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), client, "queue", proc, msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.seen) != 0 {
		t.Fatalf("processor should not run for unreadable messages")
	}
}

func TestReceiveCount(t *testing.T) {
	msg := sqstypes.Message{Attributes: map[string]string{"ApproximateReceiveCount": "3"}}
	if got := receiveCount(msg); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if got := receiveCount(sqstypes.Message{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

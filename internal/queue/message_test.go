package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSendAPI struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSendAPI) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{}, nil
}

func TestNewMessageDefaults(t *testing.T) {
	now := time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC)
	msg := NewMessage("batch-1", "", now)
	assert.Equal(t, "batch-1", msg.BatchID)
	assert.NotEmpty(t, msg.RequestID)
	assert.Equal(t, "2026-01-30T22:00:00Z", msg.EnqueuedAt)
	assert.Equal(t, MessageVersion, msg.Version)

	payload, err := EncodeMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"batchId":"batch-1"`)
}

func TestEnqueuerSendsThroughSQS(t *testing.T) {
	api := &fakeSendAPI{}
	enq := NewEnqueuer(NewSQSClientWith(api, "https://sqs.example/queue"))
	enq.Now = func() time.Time { return time.Date(2026, 1, 30, 22, 0, 0, 0, time.UTC) }

	ctx := WithRequestID(context.Background(), "req-9")
	require.NoError(t, enq.Enqueue(ctx, "batch-7"))
	require.Len(t, api.inputs, 1)
	assert.Equal(t, "https://sqs.example/queue", aws.ToString(api.inputs[0].QueueUrl))

	msg, err := DecodeMessage([]byte(aws.ToString(api.inputs[0].MessageBody)))
	require.NoError(t, err)
	assert.Equal(t, "batch-7", msg.BatchID)
	assert.Equal(t, "req-9", msg.RequestID)
}

func TestSQSClientWrapsSendError(t *testing.T) {
	boom := errors.New("throttled")
	client := NewSQSClientWith(&fakeSendAPI{err: boom}, "q")
	err := client.Send(context.Background(), NewMessage("b", "r", time.Now()))
	assert.ErrorIs(t, err, boom)
}

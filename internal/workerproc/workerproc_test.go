package workerproc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applygen-backend/internal/batches"
	"applygen-backend/internal/queue"
)

type fakeProcessor struct {
	got       []string
	requestID string
	err       error
}

func (f *fakeProcessor) Process(ctx context.Context, batchID string) (batches.Batch, error) {
	f.got = append(f.got, batchID)
	f.requestID = queue.RequestIDFromContext(ctx)
	return batches.Batch{ID: batchID}, f.err
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr any
	}{
		{"empty", "  ", &ErrEmptyBody{}},
		{"bad json", "{bad", &ErrDecode{}},
		{"missing id", `{"requestId":"r1"}`, &ErrMissingBatchID{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, meta, err := ParseMessage(tt.body)
			require.Error(t, err)
			assert.ErrorAs(t, err, tt.wantErr)
			assert.True(t, Permanent(err))
			assert.Equal(t, len(tt.body), meta.BodyLen)
		})
	}

	msg, meta, err := ParseMessage(`{"batchId":"b1","requestId":"r1","version":1}`)
	require.NoError(t, err)
	assert.Equal(t, "b1", msg.BatchID)
	assert.Len(t, meta.BodySHA, 64)
}

func TestHandleMessageProcessesBatch(t *testing.T) {
	proc := &fakeProcessor{}
	require.NoError(t, HandleMessage(context.Background(), proc, `{"batchId":"b1","requestId":"r1"}`))
	assert.Equal(t, []string{"b1"}, proc.got)
	assert.Equal(t, "r1", proc.requestID)
}

func TestHandleMessageUsesParsedMessage(t *testing.T) {
	proc := &fakeProcessor{}
	ctx := WithParsedMessage(context.Background(), queue.Message{BatchID: "b2"})
	require.NoError(t, HandleMessage(ctx, proc, "ignored"))
	assert.Equal(t, []string{"b2"}, proc.got)
}

func TestHandleMessageClassifiesFailures(t *testing.T) {
	transient := &fakeProcessor{err: errors.New("db timeout")}
	err := HandleMessage(context.Background(), transient, `{"batchId":"b1"}`)
	var procErr ErrProcess
	require.ErrorAs(t, err, &procErr)
	assert.Equal(t, "b1", procErr.BatchID)
	assert.False(t, Permanent(err))

	failed := &fakeProcessor{err: fmt.Errorf("%w: no candidate succeeded", batches.ErrBatchFailed)}
	err = HandleMessage(context.Background(), failed, `{"batchId":"b1"}`)
	assert.True(t, Permanent(err))

	assert.Error(t, HandleMessage(context.Background(), nil, `{"batchId":"b1"}`))
}

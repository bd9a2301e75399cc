package aws_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imishinist/go-csp/aws"
	"github.com/imishinist/go-csp/channel"
	"github.com/imishinist/go-csp/flow"
)

type fakeSQS struct {
	mu      sync.Mutex
	batches [][]string
	deleted []string
	err     error
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	out := &sqs.ReceiveMessageOutput{}
	if len(f.batches) == 0 {
		return out, nil
	}
	for _, body := range f.batches[0] {
		body := body
		handle := "rh-" + body
		out.Messages = append(out.Messages, types.Message{Body: &body, ReceiptHandle: &handle})
	}
	f.batches = f.batches[1:]
	return out, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleted = append(f.deleted, *params.ReceiptHandle)
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSSource(t *testing.T) {
	client := &fakeSQS{batches: [][]string{{"**hello"}, {"world**"}}}
	src := aws.NewSQSSource(context.Background(), client, &aws.SQSSourceConfig{
		QueueURL:      "https://sqs.example/queue",
		StopWhenEmpty: true,
		Delete:        true,
	})

	opts := flow.DefaultOptions()
	opts.LineLength = 4
	conway, err := flow.NewConway("sqs_conway", opts)
	require.NoError(t, err)

	records := channel.New[string](0)
	lines := channel.New[string](channel.Unbounded)
	srcErr := make(chan error, 1)
	go func() {
		srcErr <- src.Run(records)
	}()
	require.NoError(t, conway.Run(records, lines))
	require.NoError(t, <-srcErr)

	assert.Equal(t, []string{"↑hel", "lo w", "orld", "↑   "}, channel.ToSlice[string](lines))
	assert.Equal(t, []string{"rh-**hello", "rh-world**"}, client.deleted)
}

func TestSQSSource_ReceiveError(t *testing.T) {
	boom := errors.New("throttled")
	src := aws.NewSQSSource(context.Background(), &fakeSQS{err: boom}, &aws.SQSSourceConfig{QueueURL: "q"})

	out := channel.New[string](channel.Unbounded)
	err := src.Run(out)
	assert.ErrorIs(t, err, boom)
	assert.False(t, out.IsOpen(), "output must be closed after a failure")
}

func TestSQSSource_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out := channel.New[string](channel.Unbounded)
	src := aws.NewSQSSource(ctx, &fakeSQS{}, &aws.SQSSourceConfig{QueueURL: "q"})
	require.NoError(t, src.Run(out))
	assert.Empty(t, channel.ToSlice[string](out))
}

package aws

import (
	"context"

	"github.com/apex/log"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/pkg/errors"

	"github.com/imishinist/go-csp"
	"github.com/imishinist/go-csp/channel"
)

// SQSAPI is the part of *sqs.Client used by SQSSource.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type SQSSourceConfig struct {
	QueueURL string

	MaxNumberOfMessages int
	WaitTimeSeconds     int

	// StopWhenEmpty ends the stream after a receive that returned no messages.
	StopWhenEmpty bool
	// Delete removes a message once its body was sent downstream.
	Delete bool
}

// SQSSource emits the body of every queue message as a record.
type SQSSource struct {
	ctx    context.Context
	client SQSAPI
	config *SQSSourceConfig
	logger log.Interface
}

var _ csp.Source[string] = (*SQSSource)(nil)

func NewSQSSource(ctx context.Context, client SQSAPI, config *SQSSourceConfig) *SQSSource {
	return &SQSSource{
		ctx:    ctx,
		client: client,
		config: config,
		logger: log.WithField("queue_url", config.QueueURL),
	}
}

// Run receives until ctx is done, or until the queue is empty with
// StopWhenEmpty, and then closes out. Messages are received and sent one
// batch at a time so that out keeps a single producer.
func (s *SQSSource) Run(out channel.Sender[string]) error {
	if err := s.receive(out); err != nil {
		if cerr := out.Close(); cerr != nil {
			s.logger.WithError(cerr).Warn("close after failure")
		}
		return err
	}
	return errors.Wrap(out.Close(), "sqs source: close")
}

func (s *SQSSource) receive(out channel.Sender[string]) error {
	for s.ctx.Err() == nil {
		result, err := s.client.ReceiveMessage(s.ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            &s.config.QueueURL,
			MaxNumberOfMessages: int32(s.config.MaxNumberOfMessages),
			WaitTimeSeconds:     int32(s.config.WaitTimeSeconds),
		})
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "sqs source: receive")
		}
		if len(result.Messages) == 0 && s.config.StopWhenEmpty {
			return nil
		}

		for _, message := range result.Messages {
			var body string
			if message.Body != nil {
				body = *message.Body
			}
			if err := out.Send(body); err != nil {
				return errors.Wrap(err, "sqs source: send")
			}
			if !s.config.Delete {
				continue
			}
			if _, err := s.client.DeleteMessage(s.ctx, &sqs.DeleteMessageInput{
				QueueUrl:      &s.config.QueueURL,
				ReceiptHandle: message.ReceiptHandle,
			}); err != nil {
				s.logger.WithError(err).Warn("delete message")
			}
		}
	}
	return nil
}

package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQS caps per-message delay at 15 minutes. Releases further out than that
// are redelivered by the worker until the publish time arrives.
const maxDelay = 900 * time.Second

// SQSScheduler implements the ReleaseScheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   *sqs.Client
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client *sqs.Client, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ ReleaseScheduler = (*SQSScheduler)(nil)

// ScheduleRelease sends the chapter release to an SQS queue for later
// processing.
func (s *SQSScheduler) ScheduleRelease(ctx context.Context, release *ChapterRelease) error {
	// Marshal the release to JSON.
	body, err := json.Marshal(release)
	if err != nil {
		return fmt.Errorf("failed to marshal release for SQS: %w", err)
	}

	delay := time.Until(release.PublishAt)
	if delay > maxDelay {
		delay = maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	// Send the message to SQS.
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})

	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

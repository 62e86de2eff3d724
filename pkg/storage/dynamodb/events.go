package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

// RecordEvent stores a processed webhook event keyed by the provider's event
// id. The conditional put is what gives webhook processing its at-most-once
// guarantee: a duplicate delivery fails the condition and is skipped.
func (s *Store) RecordEvent(ctx context.Context, event *models.WebhookEvent) error {
	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Events),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(event_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		if failed, _ := conditionFailed(err); failed {
			return fmt.Errorf("webhook event %s: %w", event.EventId, storage.ErrEventAlreadyProcessed)
		}
		return fmt.Errorf("failed to record webhook event: %w", err)
	}

	return nil
}

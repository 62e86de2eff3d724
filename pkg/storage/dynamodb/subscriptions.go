package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

const (
	subscriptionUserIndex     = "user_id-index"
	subscriptionProviderIndex = "provider_sub_id-index"
	subscriptionStatusIndex   = "status-next_billing_at-index"
)

// GetSubscription retrieves a subscription by its ID.
func (s *Store) GetSubscription(ctx context.Context, subID string) (*models.Subscription, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": subID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subscription ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Subscriptions),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("subscription %s: %w", subID, storage.ErrNotFound)
	}

	var sub models.Subscription
	if err := attributevalue.UnmarshalMap(result.Item, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	return &sub, nil
}

// GetSubscriptionByProviderId retrieves the subscription correlated with a
// payment-provider subscription id.
func (s *Store) GetSubscriptionByProviderId(ctx context.Context, providerSubID string) (*models.Subscription, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Subscriptions),
		IndexName:              aws.String(subscriptionProviderIndex),
		KeyConditionExpression: aws.String("provider_sub_id = :providerID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":providerID": &types.AttributeValueMemberS{Value: providerSubID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscription by provider id: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("subscription for provider id %s: %w", providerSubID, storage.ErrNotFound)
	}

	var sub models.Subscription
	if err := attributevalue.UnmarshalMap(result.Items[0], &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscription: %w", err)
	}

	return &sub, nil
}

// ListSubscriptionsByUser retrieves all of a user's subscriptions.
func (s *Store) ListSubscriptionsByUser(ctx context.Context, userID string) ([]models.Subscription, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Subscriptions),
		IndexName:              aws.String(subscriptionUserIndex),
		KeyConditionExpression: aws.String("user_id = :userID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userID": &types.AttributeValueMemberS{Value: userID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriptions by user: %w", err)
	}

	var subs []models.Subscription
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subscriptions: %w", err)
	}

	return subs, nil
}

// ListLapsedCancelled retrieves Cancelled subscriptions whose grace period has
// run out. The expiry sweep moves these to Expired.
func (s *Store) ListLapsedCancelled(ctx context.Context, now time.Time) ([]models.Subscription, error) {
	cutoff, err := now.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Subscriptions),
		IndexName:              aws.String(subscriptionStatusIndex),
		KeyConditionExpression: aws.String("#status = :status AND next_billing_at <= :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.SubscriptionCancelled)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoff)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query lapsed subscriptions: %w", err)
	}

	var subs []models.Subscription
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &subs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal lapsed subscriptions: %w", err)
	}

	return subs, nil
}

// PutSubscription creates or replaces a subscription record.
func (s *Store) PutSubscription(ctx context.Context, sub *models.Subscription) error {
	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if _, err := s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.Tables.Subscriptions),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("failed to put subscription: %w", err)
	}

	return nil
}

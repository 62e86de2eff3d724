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

// GetSeries retrieves a series by its ID.
func (s *Store) GetSeries(ctx context.Context, seriesID string) (*models.Series, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": seriesID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal series ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Series),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get series from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("series %s: %w", seriesID, storage.ErrNotFound)
	}

	var series models.Series
	if err := attributevalue.UnmarshalMap(result.Item, &series); err != nil {
		return nil, fmt.Errorf("failed to unmarshal series: %w", err)
	}

	return &series, nil
}

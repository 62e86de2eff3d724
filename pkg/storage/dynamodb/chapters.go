package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dashibook/chapter-monetization/pkg/models"
	"github.com/dashibook/chapter-monetization/pkg/storage"
)

const chapterSeriesIndex = "series_id-index"

// GetChapter retrieves a chapter by its ID.
func (s *Store) GetChapter(ctx context.Context, chapterID string) (*models.Chapter, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": chapterID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chapter ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Chapters),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get chapter from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("chapter %s: %w", chapterID, storage.ErrNotFound)
	}

	var chapter models.Chapter
	if err := attributevalue.UnmarshalMap(result.Item, &chapter); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chapter: %w", err)
	}

	return &chapter, nil
}

// ListChaptersBySeries retrieves all chapters of a series in reading order.
func (s *Store) ListChaptersBySeries(ctx context.Context, seriesID string) ([]models.Chapter, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Chapters),
		IndexName:              aws.String(chapterSeriesIndex),
		KeyConditionExpression: aws.String("series_id = :seriesID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seriesID": &types.AttributeValueMemberS{Value: seriesID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query chapters by series: %w", err)
	}

	var chapters []models.Chapter
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &chapters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chapters: %w", err)
	}

	// The GSI sorts by series only; reading order is (volume, chapter).
	sort.Slice(chapters, func(i, j int) bool {
		return chapters[i].Before(&chapters[j])
	})

	return chapters, nil
}

// PublishChapter points the chapter at a published version and stamps its
// published time.
func (s *Store) PublishChapter(ctx context.Context, chapterID, versionID string, at time.Time) error {
	atAV, err := attributevalue.Marshal(at)
	if err != nil {
		return fmt.Errorf("failed to marshal publish time: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.Chapters),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: chapterID},
		},
		UpdateExpression:    aws.String("SET published_version_id = :vid, published_at = :at"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":vid": &types.AttributeValueMemberS{Value: versionID},
			":at":  atAV,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		if failed, _ := conditionFailed(err); failed {
			return fmt.Errorf("chapter %s: %w", chapterID, storage.ErrNotFound)
		}
		return fmt.Errorf("failed to publish chapter: %w", err)
	}

	return nil
}

// tierRecord is the storage shape of a DashiFan tier; the price amount is
// stored as an exact DynamoDB number.
type tierRecord struct {
	Id          string        `dynamodbav:"id"`
	SeriesId    string        `dynamodbav:"series_id"`
	Name        string        `dynamodbav:"name"`
	Description string        `dynamodbav:"description"`
	PriceAmount dynamoDecimal `dynamodbav:"price_amount"`
	PriceCode   string        `dynamodbav:"price_currency"`
	Perks       int           `dynamodbav:"perks"`
	Active      bool          `dynamodbav:"active"`
	CreatedAt   time.Time     `dynamodbav:"created_at"`
}

func (r *tierRecord) toModel() models.DashiFanTier {
	return models.DashiFanTier{
		Id:          r.Id,
		SeriesId:    r.SeriesId,
		Name:        r.Name,
		Description: r.Description,
		Price:       models.Price{Amount: r.PriceAmount.Decimal, Currency: r.PriceCode},
		Perks:       r.Perks,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

// GetTier retrieves a DashiFan tier by its ID.
func (s *Store) GetTier(ctx context.Context, tierID string) (*models.DashiFanTier, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": tierID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tier ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.Tables.Tiers),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get tier from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("tier %s: %w", tierID, storage.ErrNotFound)
	}

	var record tierRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tier: %w", err)
	}

	tier := record.toModel()
	return &tier, nil
}

// ListTiersBySeries retrieves all tiers offered for a series.
func (s *Store) ListTiersBySeries(ctx context.Context, seriesID string) ([]models.DashiFanTier, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Tiers),
		IndexName:              aws.String(chapterSeriesIndex),
		KeyConditionExpression: aws.String("series_id = :seriesID"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":seriesID": &types.AttributeValueMemberS{Value: seriesID},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiers by series: %w", err)
	}

	var records []tierRecord
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tiers: %w", err)
	}

	tiers := make([]models.DashiFanTier, len(records))
	for i := range records {
		tiers[i] = records[i].toModel()
	}
	return tiers, nil
}

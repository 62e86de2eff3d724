package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	sqssdk "github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"

	"github.com/dashibook/chapter-monetization/pkg/scheduler"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	dydbstore "github.com/dashibook/chapter-monetization/pkg/storage/dynamodb"
)

var store storage.ChapterStore
var releaseScheduler scheduler.ReleaseScheduler

func init() {
	// Load environment variables from .env file (useful for local testing).
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	chaptersTable := os.Getenv("DYNAMODB_CHAPTERS_TABLE_NAME")
	if chaptersTable == "" {
		log.Fatal("DYNAMODB_CHAPTERS_TABLE_NAME environment variable not set")
	}
	store = dydbstore.New(dbClient, dydbstore.Tables{Chapters: chaptersTable})

	queueURL := os.Getenv("SQS_RELEASE_QUEUE_URL")
	if queueURL == "" {
		log.Fatal("SQS_RELEASE_QUEUE_URL environment variable not set")
	}
	releaseScheduler = scheduler.NewSQSScheduler(sqssdk.NewFromConfig(cfg), queueURL)
}

// HandleRequest processes SQS messages and publishes due chapter releases.
// SQS caps message delay well short of typical release lead times, so a
// message that arrives early goes back on the queue instead of publishing.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var release scheduler.ChapterRelease
		if err := json.Unmarshal([]byte(message.Body), &release); err != nil {
			log.Printf("ERROR: failed to unmarshal release from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		if remaining := time.Until(release.PublishAt); remaining > 0 {
			log.Printf("Release of chapter %s is %s away, re-enqueuing", release.ChapterId, remaining)
			if err := releaseScheduler.ScheduleRelease(ctx, &release); err != nil {
				return fmt.Errorf("failed to re-enqueue release for chapter %s: %w", release.ChapterId, err)
			}
			continue
		}

		if err := store.PublishChapter(ctx, release.ChapterId, release.VersionId, release.PublishAt); err != nil {
			log.Printf("ERROR: failed to publish chapter %s: %v", release.ChapterId, err)
			// In a production system, persistent failures would be sent to a DLQ.
			return err
		}

		log.Printf("Successfully published chapter %s", release.ChapterId)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}

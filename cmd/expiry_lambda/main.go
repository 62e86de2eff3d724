package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"

	dydbstore "github.com/dashibook/chapter-monetization/pkg/storage/dynamodb"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
)

var service *subscription.Service

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)
	subscriptionsTable := os.Getenv("DYNAMODB_SUBSCRIPTIONS_TABLE_NAME")
	tiersTable := os.Getenv("DYNAMODB_TIERS_TABLE_NAME")
	if subscriptionsTable == "" || tiersTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	store := dydbstore.New(dbClient, dydbstore.Tables{
		Subscriptions: subscriptionsTable,
		Tiers:         tiersTable,
	})

	// The sweep never talks to the payment provider; cancelled
	// subscriptions were already cancelled there.
	service = subscription.New(store, nil)
}

// HandleRequest is triggered by an EventBridge Schedule. It moves Cancelled
// subscriptions whose paid-for period has lapsed to Expired.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting expiry sweep for lapsed subscriptions...")

	expired, err := service.ExpireLapsed(ctx)
	if err != nil {
		log.Printf("ERROR: expiry sweep failed: %v", err)
		return err
	}

	log.Printf("Expiry sweep finished, expired %d subscriptions", expired)
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}

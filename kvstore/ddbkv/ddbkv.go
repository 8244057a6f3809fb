/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddbkv

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/suparena/draftstore/kvstore"
)

// defaultTimeout bounds each synchronous call so the KVStore contract's
// "effectively instantaneous" assumption holds even against a slow network.
const defaultTimeout = 5 * time.Second

// kvItem is the single-table shape for one stored pair. All items of one
// store share a partition; the key is the sort key.
type kvItem struct {
	PK    string `dynamodbav:"PK"`
	SK    string `dynamodbav:"SK"`
	Value string `dynamodbav:"Value"`
}

// Store implements kvstore.KVStore on top of a DynamoDB table.
type Store struct {
	client    *sdk.Client
	tableName string
	partition string
	timeout   time.Duration
}

// NewClient initializes a DynamoDB client using static AWS credentials.
func NewClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return sdk.NewFromConfig(cfg), nil
}

// New constructs a Store over an existing client. partition groups every key
// of one deployment under a single PK value (for example "DRAFTKV#prod").
func New(client *sdk.Client, tableName, partition string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		partition: partition,
		timeout:   defaultTimeout,
	}
}

// NewFromCredentials constructs a client and Store in one step.
func NewFromCredentials(awsAccessKey, awsSecretKey, awsRegion, tableName, partition string) (*Store, error) {
	client, err := NewClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return New(client, tableName, partition), nil
}

func (s *Store) callCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// GetItem returns the stored value for key. Transport failures report
// absence; the engine treats the primitive as read-never-fails.
func (s *Store) GetItem(key string) (string, bool) {
	ctx, cancel := s.callCtx()
	defer cancel()

	keyMap, err := attributevalue.MarshalMap(struct {
		PK string `dynamodbav:"PK"`
		SK string `dynamodbav:"SK"`
	}{PK: s.partition, SK: key})
	if err != nil {
		return "", false
	}

	out, err := s.client.GetItem(ctx, &sdk.GetItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
	if err != nil || out.Item == nil {
		return "", false
	}

	var item kvItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false
	}
	return item.Value, true
}

// SetItem stores value under key, overwriting any previous value.
func (s *Store) SetItem(key, value string) error {
	ctx, cancel := s.callCtx()
	defer cancel()

	av, err := attributevalue.MarshalMap(kvItem{PK: s.partition, SK: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &s.tableName,
		Item:      av,
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(key string) {
	ctx, cancel := s.callCtx()
	defer cancel()

	keyMap, err := attributevalue.MarshalMap(struct {
		PK string `dynamodbav:"PK"`
		SK string `dynamodbav:"SK"`
	}{PK: s.partition, SK: key})
	if err != nil {
		return
	}

	_, _ = s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName: &s.tableName,
		Key:       keyMap,
	})
}

// Keys lists every key stored under the partition, following pagination.
func (s *Store) Keys() []string {
	ctx, cancel := s.callCtx()
	defer cancel()

	keyCond := "PK = :pk"
	exprVals := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: s.partition},
	}

	var keys []string
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &sdk.QueryInput{
			TableName:                 &s.tableName,
			KeyConditionExpression:    &keyCond,
			ExpressionAttributeValues: exprVals,
			ProjectionExpression:      aws.String("SK"),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return keys
		}
		for _, raw := range out.Items {
			var item kvItem
			if err := attributevalue.UnmarshalMap(raw, &item); err == nil {
				keys = append(keys, item.SK)
			}
		}
		if out.LastEvaluatedKey == nil {
			return keys
		}
		startKey = out.LastEvaluatedKey
	}
}

// classify maps DynamoDB failures onto the kvstore error taxonomy.
func classify(err error) error {
	var throughput *types.ProvisionedThroughputExceededException
	if errors.As(err, &throughput) {
		return &kvstore.QuotaError{Name: "ProvisionedThroughputExceededException"}
	}
	var collection *types.ItemCollectionSizeLimitExceededException
	if errors.As(err, &collection) {
		return &kvstore.QuotaError{Name: "ItemCollectionSizeLimitExceededException"}
	}
	if strings.Contains(err.Error(), "AccessDenied") {
		return &kvstore.AccessError{Name: "AccessDeniedException"}
	}
	return fmt.Errorf("PutItem failed: %w", err)
}

// Personalize - Co-Purchase Recommendation Sync
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/personalize

package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attribute names.
const (
	attrProductID   = "productId"
	attrData        = "data"
	attrLastUpdated = "lastUpdated"
)

// DynamoAPI is the subset of the DynamoDB client the store calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore stores records in a DynamoDB table keyed by productId (S).
type DynamoStore struct {
	client    DynamoAPI
	tableName string
}

// NewDynamoStore creates a store on top of an existing client.
func NewDynamoStore(client DynamoAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

// NewDynamoClient loads the default AWS credential chain for region.
// A non-empty endpoint overrides the service URL (DynamoDB Local, LocalStack).
func NewDynamoClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// Put writes the record, replacing any previous item.
func (s *DynamoStore) Put(ctx context.Context, record *Record) error {
	item := map[string]types.AttributeValue{
		attrProductID:   &types.AttributeValueMemberS{Value: record.ProductID},
		attrData:        &types.AttributeValueMemberS{Value: record.Data},
		attrLastUpdated: &types.AttributeValueMemberS{Value: record.LastUpdated},
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put item %s: %w", record.ProductID, err)
	}
	return nil
}

// Delete removes the item. DynamoDB treats deletes of absent keys as success.
func (s *DynamoStore) Delete(ctx context.Context, productID int) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       productKey(productID),
	})
	if err != nil {
		return fmt.Errorf("delete item %d: %w", productID, err)
	}
	return nil
}

// Get reads the record of productID.
func (s *DynamoStore) Get(ctx context.Context, productID int) (*Record, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       productKey(productID),
	})
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", productID, err)
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}

	return &Record{
		ProductID:   stringAttr(result.Item, attrProductID),
		Data:        stringAttr(result.Item, attrData),
		LastUpdated: stringAttr(result.Item, attrLastUpdated),
	}, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error {
	return nil
}

func productKey(productID int) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrProductID: &types.AttributeValueMemberS{Value: strconv.Itoa(productID)},
	}
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

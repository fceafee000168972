// Package ddbstore is a kv.Store backed by DynamoDB, for durable
// multi-node deployments. DynamoDB's ConditionExpression is a natural fit
// for the PutIfMatch compare-and-swap contract: chunk values are stored as
// a binary attribute, and the condition either requires the attribute to
// be absent (oldValue == nil) or to equal oldValue byte-for-byte.
//
// Adapted from the S3 backend's own commit-log pattern
// (blobstore/s3/ddb_commit_store.go), which uses the same conditional-write
// idiom to serialize manifest version bumps.
package ddbstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/distcol/mrengine/kv"
)

// Client is the subset of the DynamoDB API the store needs.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

const valueAttr = "value"
const keyAttr = "chunk_key"

// Store is a kv.Store backed by a single DynamoDB table with partition
// key "chunk_key" and a binary "value" attribute.
type Store struct {
	client    Client
	tableName string
}

var _ kv.Store = (*Store)(nil)

// New creates a Store against the given table.
//
// Create the table with:
//
//	aws dynamodb create-table \
//	  --table-name mrengine-chunks \
//	  --attribute-definitions AttributeName=chunk_key,AttributeType=S \
//	  --key-schema AttributeName=chunk_key,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
func New(client Client, tableName string) *Store {
	return &Store{client: client, tableName: tableName}
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			keyAttr:   &types.AttributeValueMemberS{Value: key},
			valueAttr: &types.AttributeValueMemberB{Value: value},
		},
	})
	if err != nil {
		return fmt.Errorf("ddbstore: put %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			keyAttr: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, false, fmt.Errorf("ddbstore: get %q: %w", key, err)
	}
	if out.Item == nil {
		return nil, false, nil
	}
	v, ok := out.Item[valueAttr].(*types.AttributeValueMemberB)
	if !ok {
		return nil, false, fmt.Errorf("ddbstore: %q: missing/invalid %q attribute", key, valueAttr)
	}
	return v.Value, true, nil
}

func (s *Store) PutIfMatch(ctx context.Context, key string, newValue, oldValue []byte) (bool, []byte, error) {
	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]types.AttributeValue{
			keyAttr:   &types.AttributeValueMemberS{Value: key},
			valueAttr: &types.AttributeValueMemberB{Value: newValue},
		},
	}
	if oldValue == nil {
		input.ConditionExpression = aws.String(fmt.Sprintf("attribute_not_exists(%s)", valueAttr))
	} else {
		input.ConditionExpression = aws.String(fmt.Sprintf("%s = :old", valueAttr))
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":old": &types.AttributeValueMemberB{Value: oldValue},
		}
	}

	_, err := s.client.PutItem(ctx, input)
	if err == nil {
		return true, newValue, nil
	}

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		cur, _, getErr := s.Get(ctx, key)
		if getErr != nil {
			return false, nil, getErr
		}
		return false, cur, nil
	}
	return false, nil, fmt.Errorf("ddbstore: putIfMatch %q: %w", key, err)
}

package ddbstore

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDDBClient is an in-memory DynamoDB mock, adapted from the
// teacher's blobstore/s3/ddb_commit_store_test.go mockDDBClient down to
// the single partition-keyed table this package's Client interface
// needs (PutItem/GetItem only, keyed by chunk_key, with the two
// ConditionExpression shapes PutIfMatch issues).
type mockDDBClient struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue
}

func newMockDDBClient() *mockDDBClient {
	return &mockDDBClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (m *mockDDBClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := params.Item[keyAttr].(*types.AttributeValueMemberS).Value

	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "attribute_not_exists(value)":
			if _, exists := m.items[key]; exists {
				return nil, &types.ConditionalCheckFailedException{Message: strPtr("condition failed")}
			}
		case "value = :old":
			cur, exists := m.items[key]
			want := params.ExpressionAttributeValues[":old"].(*types.AttributeValueMemberB).Value
			if !exists {
				return nil, &types.ConditionalCheckFailedException{Message: strPtr("condition failed")}
			}
			curVal := cur[valueAttr].(*types.AttributeValueMemberB).Value
			if !bytes.Equal(curVal, want) {
				return nil, &types.ConditionalCheckFailedException{Message: strPtr("condition failed")}
			}
		}
	}

	m.items[key] = params.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDBClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := params.Key[keyAttr].(*types.AttributeValueMemberS).Value
	if item, ok := m.items[key]; ok {
		return &dynamodb.GetItemOutput{Item: item}, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func strPtr(s string) *string { return &s }

func TestPutGetRoundTrips(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || string(got) != "v" {
		t.Errorf("got (%q, %v), want (%q, true)", got, ok, "v")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	_, ok, err := s.Get(context.Background(), "absent")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a missing key")
	}
}

func TestPutIfMatchCreatesWhenAbsent(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	ctx := context.Background()

	ok, val, err := s.PutIfMatch(ctx, "k", []byte("first"), nil)
	if err != nil {
		t.Fatalf("PutIfMatch: %v", err)
	}
	if !ok || string(val) != "first" {
		t.Errorf("got (%v, %q), want (true, %q)", ok, val, "first")
	}
}

// TestPutIfMatchFailsOnMismatch exercises the ConditionalCheckFailedException
// path: a stale oldValue must fail the compare-and-swap and return the
// value actually stored, the same testable property 8 the other kv
// backing store (kv/memstore) is held to.
func TestPutIfMatchFailsOnMismatch(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	ctx := context.Background()
	if err := s.Put(ctx, "k", []byte("current")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, val, err := s.PutIfMatch(ctx, "k", []byte("new"), []byte("stale"))
	if err != nil {
		t.Fatalf("PutIfMatch: %v", err)
	}
	if ok {
		t.Error("expected the compare-and-swap to fail on mismatch")
	}
	if string(val) != "current" {
		t.Errorf("returned current value = %q, want %q", val, "current")
	}
}

func TestPutIfMatchSucceedsOnMatch(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	ctx := context.Background()
	if err := s.Put(ctx, "k", []byte("current")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	ok, val, err := s.PutIfMatch(ctx, "k", []byte("updated"), []byte("current"))
	if err != nil {
		t.Fatalf("PutIfMatch: %v", err)
	}
	if !ok || string(val) != "updated" {
		t.Errorf("got (%v, %q), want (true, %q)", ok, val, "updated")
	}

	got, _, _ := s.Get(ctx, "k")
	if string(got) != "updated" {
		t.Errorf("stored value = %q, want %q", got, "updated")
	}
}

func TestPutIfMatchFailsWhenAbsentAndOldValueGiven(t *testing.T) {
	s := New(newMockDDBClient(), "chunks")
	ctx := context.Background()

	ok, _, err := s.PutIfMatch(ctx, "k", []byte("new"), []byte("anything"))
	if err != nil {
		t.Fatalf("PutIfMatch: %v", err)
	}
	if ok {
		t.Error("expected the compare-and-swap to fail when the item doesn't exist yet")
	}
}

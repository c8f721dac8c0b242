package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockDynamo struct {
	items     map[string]map[string]types.AttributeValue
	lastPut   *dynamodb.PutItemInput
	lastGet   *dynamodb.GetItemInput
	getErr    error
	deleteErr error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: make(map[string]map[string]types.AttributeValue)}
}

func pk(key map[string]types.AttributeValue) string {
	if s, ok := key["pk"].(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	m.lastPut = in
	m.items[pk(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	m.lastGet = in
	if m.getErr != nil {
		return nil, m.getErr
	}
	return &dynamodb.GetItemOutput{Item: m.items[pk(in.Key)]}, nil
}

func (m *mockDynamo) DeleteItem(_ context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteErr != nil {
		return nil, m.deleteErr
	}
	delete(m.items, pk(in.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoStoreRoundTrip(t *testing.T) {
	mock := newMockDynamo()
	store := NewDynamoStore(mock, "therapy_kv")
	store.now = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, ok, err := store.Load(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, KeyAppointments, `[]`))
	require.NotNil(t, mock.lastPut)
	assert.Equal(t, "therapy_kv", *mock.lastPut.TableName)

	var stored kvItem
	require.NoError(t, attributevalue.UnmarshalMap(mock.lastPut.Item, &stored))
	assert.Equal(t, KeyAppointments, stored.Key)
	assert.Equal(t, "2025-05-01T12:00:00Z", stored.UpdatedAt)

	v, ok, err := store.Load(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, v)
	assert.True(t, *mock.lastGet.ConsistentRead)

	require.NoError(t, store.Delete(ctx, KeyAppointments))
	_, ok, err = store.Load(ctx, KeyAppointments)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDynamoStoreErrors(t *testing.T) {
	mock := newMockDynamo()
	mock.getErr = errors.New("throttled")
	mock.deleteErr = errors.New("throttled")
	store := NewDynamoStore(mock, "therapy_kv")

	_, _, err := store.Load(context.Background(), KeyBookingDraft)
	assert.ErrorIs(t, err, mock.getErr)
	assert.ErrorIs(t, store.Delete(context.Background(), KeyBookingDraft), mock.deleteErr)
}

func TestNewDynamoStorePanicsWithoutTable(t *testing.T) {
	assert.Panics(t, func() { NewDynamoStore(newMockDynamo(), "") })
}

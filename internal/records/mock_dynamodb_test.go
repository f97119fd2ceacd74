package records

import (
	"context"
	"errors"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// appendOnlyMock is a minimal in-memory mock keyed by table and record_id.
type appendOnlyMock struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
	putErr error
}

func newAppendOnlyMock() *appendOnlyMock {
	return &appendOnlyMock{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *appendOnlyMock) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return nil, m.putErr
	}
	table := *params.TableName
	if _, ok := m.tables[table]; !ok {
		m.tables[table] = map[string]map[string]types.AttributeValue{}
	}
	keyAttr, ok := params.Item["record_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("missing record_id")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(record_id)" {
		if _, exists := m.tables[table][keyAttr.Value]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.tables[table][keyAttr.Value] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *appendOnlyMock) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	return nil, errors.New("not supported")
}

func (m *appendOnlyMock) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	return nil, errors.New("append-only tables are never updated")
}

func (m *appendOnlyMock) count(table string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tables[table])
}

package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/imrishuroy/go-payout-settlement/internal/aws"
)

// ErrDuplicateRecord indicates a record id collision on an append-only table.
var ErrDuplicateRecord = errors.New("record already exists")

// DynamoStore appends poll attempts and settlements to their DynamoDB tables.
type DynamoStore struct {
	client           aws.DynamoDBAPI
	attemptsTable    string
	settlementsTable string
	nowFunc          func() time.Time
	newID            func() string
}

// NewDynamoStore returns a store writing to the given tables.
func NewDynamoStore(client aws.DynamoDBAPI, attemptsTable, settlementsTable string) *DynamoStore {
	return &DynamoStore{
		client:           client,
		attemptsTable:    attemptsTable,
		settlementsTable: settlementsTable,
		nowFunc:          time.Now,
		newID:            uuid.NewString,
	}
}

// WriteAttempt implements Writer.
func (s *DynamoStore) WriteAttempt(ctx context.Context, a Attempt) error {
	if a.RecordID == "" {
		a.RecordID = s.newID()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = s.nowFunc()
	}
	a.Timestamp = a.Timestamp.UTC()
	a.ResponseMs = a.ResponseTime.Milliseconds()

	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	return s.put(ctx, s.attemptsTable, item)
}

// WriteSettlement implements Writer.
func (s *DynamoStore) WriteSettlement(ctx context.Context, st Settlement) error {
	if st.RecordID == "" {
		st.RecordID = s.newID()
	}
	if st.Timestamp.IsZero() {
		st.Timestamp = s.nowFunc()
	}
	st.Timestamp = st.Timestamp.UTC()

	item, err := attributevalue.MarshalMap(st)
	if err != nil {
		return fmt.Errorf("marshal settlement: %w", err)
	}
	if amount := st.AmountPaidString(); amount != "" {
		// stored as a string to keep the provider's decimal precision
		item["amount_paid"] = &types.AttributeValueMemberS{Value: amount}
	}
	return s.put(ctx, s.settlementsTable, item)
}

func (s *DynamoStore) put(ctx context.Context, table string, item map[string]types.AttributeValue) error {
	_, err := s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &table,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(record_id)"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return ErrDuplicateRecord
		}
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }

package records

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"
)

func TestWriteAttempt_StoresItem(t *testing.T) {
	mock := newAppendOnlyMock()
	s := NewDynamoStore(mock, "attempts", "settlements")
	s.newID = func() string { return "rec-1" }

	err := s.WriteAttempt(context.Background(), Attempt{
		OrderID:       "o-1",
		OrderDBID:     "db-1",
		AttemptNumber: 2,
		Status:        "pending",
		ResponseTime:  1500 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("WriteAttempt error: %v", err)
	}

	item := mock.tables["attempts"]["rec-1"]
	if item == nil {
		t.Fatalf("attempt not stored")
	}
	var got Attempt
	if err := attributevalue.UnmarshalMap(item, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ResponseMs != 1500 || got.AttemptNumber != 2 || got.OrderDBID != "db-1" {
		t.Fatalf("unexpected stored attempt: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}
	if _, ok := item["error_message"]; ok {
		t.Fatalf("empty error_message should be omitted")
	}
}

func TestWriteSettlement_StoresAmountAsString(t *testing.T) {
	mock := newAppendOnlyMock()
	s := NewDynamoStore(mock, "attempts", "settlements")
	s.newID = func() string { return "rec-2" }

	err := s.WriteSettlement(context.Background(), Settlement{
		OrderID:           "o-2",
		OrderDBID:         "db-2",
		Status:            "settled",
		SettlementSeconds: 42,
		TransactionHash:   "0xabc",
		AmountPaid:        decimal.NewNullDecimal(decimal.RequireFromString("100.005")),
		Currency:          "NGN",
	})
	if err != nil {
		t.Fatalf("WriteSettlement error: %v", err)
	}

	item := mock.tables["settlements"]["rec-2"]
	amount, ok := item["amount_paid"].(*types.AttributeValueMemberS)
	if !ok || amount.Value != "100.005" {
		t.Fatalf("amount_paid not stored as string: %+v", item["amount_paid"])
	}
}

func TestWrite_DuplicateRecordID(t *testing.T) {
	mock := newAppendOnlyMock()
	s := NewDynamoStore(mock, "attempts", "settlements")
	s.newID = func() string { return "same" }

	if err := s.WriteAttempt(context.Background(), Attempt{OrderID: "o"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	err := s.WriteAttempt(context.Background(), Attempt{OrderID: "o"})
	if !errors.Is(err, ErrDuplicateRecord) {
		t.Fatalf("expected ErrDuplicateRecord, got %v", err)
	}
}

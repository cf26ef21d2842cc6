package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/cashflow-ledger/src/internal/adapter/events"
	"github.com/api-sage/cashflow-ledger/src/internal/domain"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "transactions"

type TransactionDocument struct {
	ID              string    `bson:"_id"`
	AccountID       string    `bson:"account_id"`
	Type            string    `bson:"type"`
	Amount          string    `bson:"amount"`
	Description     string    `bson:"description"`
	PaymentMethod   string    `bson:"payment_method"`
	Installments    *int      `bson:"installments,omitempty"`
	CurrentBalance  string    `bson:"current_balance"`
	CurrentSavings  string    `bson:"current_savings"`
	CreditUsedAfter string    `bson:"credit_used_after"`
	CreatedAt       time.Time `bson:"created_at"`
}

type inserter interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

// Projection keeps a read-optimized copy of each appended transaction,
// stamped with the balances it left behind.
type Projection struct {
	collection inserter
}

func NewProjection(collection inserter) *Projection {
	return &Projection{collection: collection}
}

func Connect(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Collection, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}

	return client, client.Database(database).Collection(CollectionName), nil
}

func (p *Projection) Publish(ctx context.Context, event events.Event) error {
	if event.Type != events.TransactionAppended {
		return nil
	}

	if _, err := p.collection.InsertOne(ctx, newTransactionDocument(event)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("project transaction %s: %w", event.Transaction.ID, err)
	}

	return nil
}

func newTransactionDocument(event events.Event) TransactionDocument {
	txn := event.Transaction
	return TransactionDocument{
		ID:              txn.ID,
		AccountID:       event.AccountID,
		Type:            string(txn.Type),
		Amount:          domain.FormatMoney(txn.Amount),
		Description:     txn.Description,
		PaymentMethod:   txn.PaymentMethod,
		Installments:    txn.Installments,
		CurrentBalance:  domain.FormatMoney(event.Account.Balance),
		CurrentSavings:  domain.FormatMoney(event.Account.Savings),
		CreditUsedAfter: domain.FormatMoney(event.Account.CreditUsed),
		CreatedAt:       txn.Timestamp,
	}
}

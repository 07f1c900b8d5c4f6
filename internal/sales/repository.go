package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository defines the storage interface for actors and records.
type Repository interface {
	// CreateActor adds a new actor.
	CreateActor(ctx context.Context, actor *Actor) error

	// GetActor retrieves an actor by ID. Returns ErrActorNotFound if missing.
	GetActor(ctx context.Context, id string) (*Actor, error)

	// ListActors returns active actors with the given role, or all active
	// actors when role is empty, ordered by name.
	ListActors(ctx context.Context, role Role) ([]*Actor, error)

	// CreateRecord adds a new record.
	CreateRecord(ctx context.Context, record *Record) error

	// CreateRecords adds multiple records in a batch.
	CreateRecords(ctx context.Context, records []*Record) error

	// GetRecord retrieves a record by ID. Returns ErrRecordNotFound if missing.
	GetRecord(ctx context.Context, id string) (*Record, error)

	// SetRecordOutcome sets the outcome of a record.
	SetRecordOutcome(ctx context.Context, id string, outcome Outcome) error

	// LinkRecords pairs an approved sale with the converted meeting that
	// sourced it. The sale is credited to the meeting's SDR and the
	// meeting takes the sale's value.
	LinkRecords(ctx context.Context, saleID, meetingID string) error

	// FetchRecordsByActorAndWindow returns records owned by any of actorIDs
	// whose timestamp is within [start, end] inclusive.
	FetchRecordsByActorAndWindow(ctx context.Context, actorIDs []string, start, end time.Time) ([]*Record, error)

	// ListRecordsByWindow returns every record within [start, end] inclusive.
	ListRecordsByWindow(ctx context.Context, start, end time.Time) ([]*Record, error)

	// ListAllRecords returns every record ordered by timestamp.
	ListAllRecords(ctx context.Context) ([]*Record, error)

	// ListAllActors returns every actor, including inactive ones.
	ListAllActors(ctx context.Context) ([]*Actor, error)

	// Close releases any resources held by the repository.
	Close() error
}

// SumValues adds up the value of every record.
func SumValues(records []*Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Value)
	}
	return total
}

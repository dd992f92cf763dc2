package domain

import "time"

// Event types
const (
	EventTypeBalanceUpdated    = "balance.updated"
	EventTypeBalanceOverridden = "balance.overridden"
)

// Aggregate types
const (
	AggregateTypeCompanyBalance = "company_balance"
)

// OutboxEvent represents an event to be published. Outbox rows are written
// in the same transaction as the balance mutation; publication itself is
// fire-and-forget and may lag or be lost without affecting ledger
// correctness.
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// BalanceUpdatedEvent payload
type BalanceUpdatedEvent struct {
	OperationID   string `json:"operation_id"`
	CompanyID     int64  `json:"company_id"`
	BalanceType   string `json:"balance_type"`
	OperationType string `json:"operation_type"`
	Amount        string `json:"amount"`
	NewBalance    string `json:"new_balance"`
	DocumentID    string `json:"document_id,omitempty"`
}

package wallet

import "time"

type Debited struct {
	TenantID     string
	EntryID      string
	Amount       int64
	BalanceAfter int64
	Reason       string
	At           time.Time
}

func (e Debited) EventName() string     { return "wallet.debited" }
func (e Debited) AggregateID() string   { return e.TenantID }
func (e Debited) OccurredAt() time.Time { return e.At }

type Credited struct {
	TenantID     string
	EntryID      string
	Amount       int64
	BalanceAfter int64
	ExternalRef  string `json:",omitempty"`
	At           time.Time
}

func (e Credited) EventName() string     { return "wallet.credited" }
func (e Credited) AggregateID() string   { return e.TenantID }
func (e Credited) OccurredAt() time.Time { return e.At }

// Package uow implements the Unit of Work: the single transaction boundary
// that flushes every aggregate mutated during a business operation together
// with the OutboxMessage rows derived from their pending domain events
// (spec.md §4.3). No teacher file in the retrieval pack names a Unit of
// Work directly, so this package is grounded on the transaction-handling
// shape the teacher's own repositories already use (db.BeginTx /
// tx.ExecContext / tx.Commit with rollback-on-error, as seen in
// account.postgresql.go's UpdateAccounts) generalized to span more than one
// repository call.
package uow

import (
	"context"
	"database/sql"
	"fmt"

	pgaccount "github.com/corebank-platform/core/internal/adapters/postgres/account"
	pgcustomer "github.com/corebank-platform/core/internal/adapters/postgres/customer"
	pgoutbox "github.com/corebank-platform/core/internal/adapters/postgres/outbox"
	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	"github.com/corebank-platform/core/internal/domain/event"
	"github.com/corebank-platform/core/pkg/cerr"
	"github.com/corebank-platform/core/platform/mlog"
	"github.com/corebank-platform/core/platform/mopentelemetry"
	"github.com/corebank-platform/core/platform/mpostgres"
)

// UnitOfWork is the composition root for a single atomic commit: it owns the
// Postgres connection and the Tx-capable repositories a Scope flushes
// through when committed.
type UnitOfWork struct {
	connection *mpostgres.Connection

	accounts     *pgaccount.Repository
	transactions *pgaccount.TransactionRepository
	customers    *pgcustomer.Repository
	outbox       *pgoutbox.Repository

	telemetry *mopentelemetry.Telemetry
	logger    mlog.Logger
}

// New returns a UnitOfWork wired to the given Tx-capable repositories.
func New(
	conn *mpostgres.Connection,
	accounts *pgaccount.Repository,
	transactions *pgaccount.TransactionRepository,
	customers *pgcustomer.Repository,
	outbox *pgoutbox.Repository,
	telemetry *mopentelemetry.Telemetry,
	logger mlog.Logger,
) *UnitOfWork {
	return &UnitOfWork{
		connection:   conn,
		accounts:     accounts,
		transactions: transactions,
		customers:    customers,
		outbox:       outbox,
		telemetry:    telemetry,
		logger:       logger,
	}
}

// NewScope starts a fresh unit of work: a batch of tracked aggregate
// mutations and new rows that will flush together in one transaction when
// Commit is called.
func (u *UnitOfWork) NewScope() *Scope {
	return &Scope{uow: u}
}

// Scope accumulates the aggregates and rows one business operation touches.
// It is not safe for concurrent use — a command handler builds one scope,
// tracks everything the operation produced, and commits it once (spec.md
// §4.3, §5 "one unit of work per command").
type Scope struct {
	uow *UnitOfWork

	newAccounts   []*account.Account
	dirtyAccounts []*account.Account

	newCustomers   []*customer.Customer
	dirtyCustomers []*customer.Customer

	transactions []*account.Transaction
}

// TrackNewAccount registers a freshly created account to be inserted on commit.
func (s *Scope) TrackNewAccount(a *account.Account) {
	s.newAccounts = append(s.newAccounts, a)
}

// TrackAccount registers an existing account whose in-memory state has
// changed and must be persisted on commit.
func (s *Scope) TrackAccount(a *account.Account) {
	s.dirtyAccounts = append(s.dirtyAccounts, a)
}

// TrackNewCustomer registers a freshly created customer to be inserted on commit.
func (s *Scope) TrackNewCustomer(c *customer.Customer) {
	s.newCustomers = append(s.newCustomers, c)
}

// TrackCustomer registers an existing customer whose in-memory state has
// changed and must be persisted on commit.
func (s *Scope) TrackCustomer(c *customer.Customer) {
	s.dirtyCustomers = append(s.dirtyCustomers, c)
}

// AddTransaction registers a new Transaction row (the child record a
// Deposit/Withdraw/Transfer call returns) to be inserted on commit.
func (s *Scope) AddTransaction(t *account.Transaction) {
	s.transactions = append(s.transactions, t)
}

// trackedAccounts returns every account this scope touches, new or dirty,
// in the order they were tracked.
func (s *Scope) trackedAccounts() []*account.Account {
	out := make([]*account.Account, 0, len(s.newAccounts)+len(s.dirtyAccounts))
	out = append(out, s.newAccounts...)
	out = append(out, s.dirtyAccounts...)

	return out
}

// Commit flushes every tracked mutation and the domain events they produced
// in one database transaction, following spec.md §4.3's six steps:
//
//  1. snapshot the pending-events list of every tracked account
//  2. serialize each event to an OutboxMessage row
//  3. clear the accounts' pending-event lists
//  4. flush all tracked aggregate mutations
//  5. insert the OutboxMessage rows
//  6. commit
//
// Any failure rolls the transaction back and restores every account's
// pending-event list to its step-1 snapshot, so a failed commit leaves the
// in-memory aggregates exactly as a caller would expect to retry them.
func (s *Scope) Commit(ctx context.Context) ([]event.Event, error) {
	ctx, span := s.uow.telemetry.Start(ctx, "uow.commit")
	defer span.End()

	tracked := s.trackedAccounts()

	snapshots := make(map[*account.Account][]event.Event, len(tracked))

	var committed []event.Event

	for _, a := range tracked {
		pending := a.PendingEvents()
		snapshots[a] = pending
		committed = append(committed, pending...)
	}

	messages, err := buildOutboxMessages(committed)
	if err != nil {
		mopentelemetry.HandleSpanError(&span, "failed to build outbox messages", err)
		return nil, err
	}

	for _, a := range tracked {
		a.ClearPendingEvents()
	}

	if err := s.flush(ctx, messages); err != nil {
		for a, pending := range snapshots {
			a.RestorePendingEvents(pending)
		}

		mopentelemetry.HandleSpanError(&span, "unit of work commit failed", err)

		return nil, err
	}

	return committed, nil
}

func buildOutboxMessages(events []event.Event) ([]*pgoutbox.Message, error) {
	messages := make([]*pgoutbox.Message, 0, len(events))

	for _, e := range events {
		env, err := event.Encode(e)
		if err != nil {
			return nil, fmt.Errorf("encode pending event %s: %w", e.EventID(), err)
		}

		messages = append(messages, pgoutbox.NewMessage(env.Type, env.Payload, e.OccurredOn()))
	}

	return messages, nil
}

func (s *Scope) flush(ctx context.Context, messages []*pgoutbox.Message) error {
	db, err := s.uow.connection.GetDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin unit of work transaction: %w", err)
	}

	if err := s.flushWithin(ctx, tx, messages); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit unit of work transaction: %w", err)
	}

	return nil
}

func (s *Scope) flushWithin(ctx context.Context, tx *sql.Tx, messages []*pgoutbox.Message) error {
	for _, a := range s.newAccounts {
		if err := s.uow.accounts.AddTx(ctx, tx, a); err != nil {
			return err
		}
	}

	for _, a := range s.dirtyAccounts {
		if err := s.uow.accounts.UpdateTx(ctx, tx, a); err != nil {
			return err
		}
	}

	for _, c := range s.newCustomers {
		if err := s.uow.customers.AddTx(ctx, tx, c); err != nil {
			return err
		}
	}

	for _, c := range s.dirtyCustomers {
		if err := s.uow.customers.UpdateTx(ctx, tx, c); err != nil {
			return err
		}
	}

	if len(s.transactions) > 0 {
		if err := s.uow.transactions.AddRangeTx(ctx, tx, s.transactions); err != nil {
			return err
		}
	}

	if len(messages) > 0 {
		if err := s.uow.outbox.InsertBatchTx(ctx, tx, messages); err != nil {
			return err
		}
	}

	return nil
}

// IsConcurrencyConflict reports whether err is the optimistic-concurrency
// failure an UpdateTx call returns when row_version no longer matches
// (spec.md §4.2, §5). The command handlers do not retry on a conflict; they
// return it to their caller.
func IsConcurrencyConflict(err error) bool {
	return cerr.KindOf(err) == cerr.KindConflict
}

package jobs_test

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
)

// fakeAccountRepo is an in-memory stand-in for account.Repository, used to
// exercise the scheduled-job implementations without a database.
type fakeAccountRepo struct {
	byID     map[uuid.UUID]*account.Account
	updated  map[uuid.UUID]int
	failures map[uuid.UUID]error
}

func newFakeAccountRepo(accounts ...*account.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{
		byID:    make(map[uuid.UUID]*account.Account),
		updated: make(map[uuid.UUID]int),
	}

	for _, a := range accounts {
		r.byID[a.ID] = a
	}

	return r
}

func (r *fakeAccountRepo) Add(ctx context.Context, a *account.Account) error {
	r.byID[a.ID] = a
	return nil
}

func (r *fakeAccountRepo) Update(ctx context.Context, a *account.Account) error {
	if r.failures != nil {
		if err, ok := r.failures[a.ID]; ok {
			return err
		}
	}

	r.updated[a.ID]++
	r.byID[a.ID] = a

	return nil
}

func (r *fakeAccountRepo) SaveChanges(ctx context.Context) error { return nil }

func (r *fakeAccountRepo) ByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	return r.byID[id], nil
}

func (r *fakeAccountRepo) ByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	for _, a := range r.byID {
		if a.AccountNumber == accountNumber {
			return a, nil
		}
	}

	return nil, nil
}

func (r *fakeAccountRepo) AllForCustomer(ctx context.Context, customerID uuid.UUID) ([]*account.Account, error) {
	var out []*account.Account

	for _, a := range r.byID {
		if a.CustomerID == customerID {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *fakeAccountRepo) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	a, _ := r.ByAccountNumber(ctx, accountNumber)
	return a != nil, nil
}

func (r *fakeAccountRepo) Active(ctx context.Context) ([]*account.Account, error) {
	var out []*account.Account

	for _, a := range r.byID {
		if a.IsActive && a.Status == account.StatusActive {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *fakeAccountRepo) InterestBearing(ctx context.Context) ([]*account.Account, error) {
	var out []*account.Account

	for _, a := range r.byID {
		if a.InterestBearing && a.IsActive {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *fakeAccountRepo) InactiveSince(ctx context.Context, cutoff time.Time) ([]*account.Account, error) {
	var out []*account.Account

	for _, a := range r.byID {
		if a.LastActivity.Before(cutoff) {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *fakeAccountRepo) ByStatus(ctx context.Context, status account.Status) ([]*account.Account, error) {
	var out []*account.Account

	for _, a := range r.byID {
		if a.Status == status {
			out = append(out, a)
		}
	}

	return out, nil
}

func (r *fakeAccountRepo) LowBalance(ctx context.Context, threshold float64) ([]*account.Account, error) {
	return nil, nil
}

// fakeTransactionRepo is an in-memory stand-in for account.TransactionRepository.
type fakeTransactionRepo struct {
	byAccount map[uuid.UUID][]*account.Transaction
	avgDaily  map[uuid.UUID]float64
	olderThan []*account.Transaction
	added     []*account.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{
		byAccount: make(map[uuid.UUID][]*account.Transaction),
		avgDaily:  make(map[uuid.UUID]float64),
	}
}

func (r *fakeTransactionRepo) Add(ctx context.Context, t *account.Transaction) error {
	r.added = append(r.added, t)
	r.byAccount[t.AccountID] = append(r.byAccount[t.AccountID], t)

	return nil
}

func (r *fakeTransactionRepo) AddRange(ctx context.Context, txns []*account.Transaction) error {
	for _, t := range txns {
		if err := r.Add(ctx, t); err != nil {
			return err
		}
	}

	return nil
}

func (r *fakeTransactionRepo) SaveChanges(ctx context.Context) error { return nil }

func (r *fakeTransactionRepo) ByID(ctx context.Context, id uuid.UUID) (*account.Transaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) ByAccount(ctx context.Context, accountID uuid.UUID) ([]*account.Transaction, error) {
	return r.byAccount[accountID], nil
}

func (r *fakeTransactionRepo) ByAccountAndDateRange(ctx context.Context, accountID uuid.UUID, start, end time.Time) ([]*account.Transaction, error) {
	return r.byAccount[accountID], nil
}

func (r *fakeTransactionRepo) OlderThan(ctx context.Context, cutoff time.Time) ([]*account.Transaction, error) {
	return r.olderThan, nil
}

func (r *fakeTransactionRepo) RecentSince(ctx context.Context, accountID uuid.UUID, since time.Time) ([]*account.Transaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) ByDateRange(ctx context.Context, start, end time.Time) ([]*account.Transaction, error) {
	return nil, nil
}

func (r *fakeTransactionRepo) CountByTypeInRange(ctx context.Context, accountID uuid.UUID, txnType account.TxnType, start, end time.Time) (int, error) {
	return 0, nil
}

func (r *fakeTransactionRepo) AverageDailyBalance(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) (float64, error) {
	return r.avgDaily[accountID], nil
}

// fakeCustomerRepo is an in-memory stand-in for customer.Repository.
type fakeCustomerRepo struct {
	byID map[uuid.UUID]*customer.Customer
}

func newFakeCustomerRepo(customers ...*customer.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: make(map[uuid.UUID]*customer.Customer)}

	for _, c := range customers {
		r.byID[c.ID] = c
	}

	return r
}

func (r *fakeCustomerRepo) Add(ctx context.Context, c *customer.Customer) error {
	r.byID[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	r.byID[c.ID] = c
	return nil
}

func (r *fakeCustomerRepo) SaveChanges(ctx context.Context) error { return nil }

func (r *fakeCustomerRepo) ByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.byID[id], nil
}

func (r *fakeCustomerRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.byID[id]
	return ok, nil
}

func (r *fakeCustomerRepo) ByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	for _, c := range r.byID {
		if c.Email == email {
			return c, nil
		}
	}

	return nil, nil
}

func (r *fakeCustomerRepo) All(ctx context.Context) ([]*customer.Customer, error) {
	out := make([]*customer.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}

	return out, nil
}

// Package jobs implements the three recurring jobs spec.md §4.8 defines,
// plus the outbound interfaces they call through (StatementRenderer,
// EmailService). No teacher file runs scheduled batch jobs directly; these
// are grounded on the teacher's per-item isolated-failure batch shape seen
// across its reconciliation/audit background routines, adapted to the
// fixed batch-of-100 concurrency spec.md §4.8(a) calls for.
package jobs

import (
	"context"
	"time"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/platform/mlog"
)

// StatementRenderer renders a customer-facing statement artifact for one
// account's transactions in a window. Implemented for real by a template
// engine or PDF generator in production; the stub here logs and returns a
// placeholder payload, matching the teacher's logging-stub pattern for
// outbound interfaces that have no sandbox target.
type StatementRenderer interface {
	Render(ctx context.Context, acc *account.Account, txns []*account.Transaction, statementDate time.Time) ([]byte, error)
}

// EmailService sends a rendered statement artifact to a customer's email.
type EmailService interface {
	SendStatement(ctx context.Context, to string, artifact []byte, statementDate time.Time) error
}

// LoggingStatementRenderer is a StatementRenderer that only logs; it stands
// in for a real template/PDF engine until one is wired (spec.md §4.8(a) is
// silent on artifact format).
type LoggingStatementRenderer struct {
	Logger mlog.Logger
}

// Render logs the request and returns a minimal placeholder artifact.
func (r *LoggingStatementRenderer) Render(ctx context.Context, acc *account.Account, txns []*account.Transaction, statementDate time.Time) ([]byte, error) {
	r.Logger.Infof("rendering statement for account %s (%d transactions) as of %s", acc.AccountNumber, len(txns), statementDate.Format("2006-01-02"))

	return []byte("statement:" + acc.AccountNumber + ":" + statementDate.Format("2006-01-02")), nil
}

// LoggingEmailService is an EmailService that only logs; it stands in for a
// real mail transport until one is wired.
type LoggingEmailService struct {
	Logger mlog.Logger
}

// SendStatement logs the send instead of dispatching an email.
func (s *LoggingEmailService) SendStatement(ctx context.Context, to string, artifact []byte, statementDate time.Time) error {
	s.Logger.Infof("sending %d-byte statement for %s to %s", len(artifact), statementDate.Format("2006-01-02"), to)
	return nil
}

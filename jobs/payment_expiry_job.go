package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PaymentExpirer is the ledger operation the sweep drives.
type PaymentExpirer interface {
	ExpireStalePayments(ctx context.Context, olderThan time.Duration) (int, error)
}

// PaymentExpiryJob cancels assignments whose checkout was never completed.
type PaymentExpiryJob struct {
	ledger  PaymentExpirer
	ttl     time.Duration
	timeout time.Duration
	log     *zap.Logger
}

func NewPaymentExpiryJob(ledger PaymentExpirer, ttl time.Duration, log *zap.Logger) *PaymentExpiryJob {
	return &PaymentExpiryJob{
		ledger:  ledger,
		ttl:     ttl,
		timeout: time.Minute,
		log:     log.Named("jobs.payment_expiry"),
	}
}

// Run implements cron.Job.
func (j *PaymentExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	expired, err := j.ledger.ExpireStalePayments(ctx, j.ttl)
	if err != nil {
		j.log.Error("payment expiry sweep failed", zap.Error(err))
		return
	}
	if expired > 0 {
		j.log.Info("expired stale payments", zap.Int("count", expired))
	}
}

// Schedule registers the job on c with the given cron spec.
func Schedule(c *cron.Cron, spec string, job cron.Job) error {
	if _, err := c.AddJob(spec, job); err != nil {
		return errors.Wrapf(err, "schedule job %q", spec)
	}
	return nil
}

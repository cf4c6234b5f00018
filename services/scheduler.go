package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
	"github.com/HSouheill/taxdesk_backend/repositories"
)

const overdueSweepSchedule = "@hourly"

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron     *cron.Cron
	invoices repositories.InvoiceRepository
	notifier Notifier
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewScheduler(invoices repositories.InvoiceRepository, notifier Notifier, m *metrics.Metrics, log *logger.Logger) *Scheduler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Scheduler{
		cron:     cron.New(),
		invoices: invoices,
		notifier: notifier,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(overdueSweepSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.MarkOverdueInvoices(ctx); err != nil {
			s.log.Error(err, "Overdue invoice sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("adding overdue sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started", "overdueSweep", overdueSweepSchedule)
	return nil
}

// Stop waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
}

// MarkOverdueInvoices flips sent invoices past their due date to Overdue and
// tells the owning admin about each one. Invoices switched before a failure
// are still announced.
func (s *Scheduler) MarkOverdueInvoices(ctx context.Context) (int, error) {
	invoices, err := s.invoices.MarkOverdue(ctx, s.now())

	for _, inv := range invoices {
		s.notifier.Notify(inv.AdminID, EventInvoiceOverdue,
			fmt.Sprintf("Invoice %s is overdue", inv.InvoiceNumber),
			map[string]interface{}{
				"invoiceId":     inv.ID.Hex(),
				"invoiceNumber": inv.InvoiceNumber,
				"clientId":      inv.ClientID.Hex(),
				"amount":        inv.Amount,
				"dueDate":       inv.DueDate,
			})
	}
	if s.metrics != nil {
		s.metrics.InvoicesOverdue.Add(float64(len(invoices)))
	}
	if len(invoices) > 0 {
		s.log.Info("Invoices marked overdue", "count", len(invoices))
	}
	return len(invoices), err
}

package services

import (
	"context"
	"fmt"
	"time"

	"finsum/internal/amqp"
	"finsum/internal/core"
	"finsum/internal/log"
	"finsum/internal/mail"
	"finsum/internal/storage"
)

// Mailbox is the slice of the Gmail client the ingest loop uses.
type Mailbox interface {
	ListBankMessages(ctx context.Context, senders []string, since time.Time) ([]string, error)
	FetchMessage(ctx context.Context, id string) (subject, body string, err error)
	DeleteMessage(ctx context.Context, id string) error
}

// MailboxFactory opens a mailbox with one user's stored tokens.
type MailboxFactory func(ctx context.Context, tokens storage.UserTokens) (Mailbox, error)

// IngestStore is the store surface mail ingestion needs.
type IngestStore interface {
	UsersWithMailTokens(ctx context.Context) ([]storage.UserTokens, error)
	InsertTransaction(ctx context.Context, userID int64, tx core.Transaction) (int64, error)
}

// IngestPublisher announces persisted transactions. May be nil when no
// broker is configured.
type IngestPublisher interface {
	PublishTransactionIngested(ctx context.Context, msg *amqp.TransactionIngestedMessage) error
}

// IngestService pulls bank notification mails for every connected user,
// extracts transactions, persists them, and deletes the processed mails.
// One user's failure never blocks the others.
type IngestService struct {
	store     IngestStore
	openBox   MailboxFactory
	publisher IngestPublisher
	senders   []string
	lookback  time.Duration
	logger    *log.Logger
	now       func() time.Time
}

func NewIngestService(store IngestStore, openBox MailboxFactory, publisher IngestPublisher, senders []string, lookback time.Duration, logger *log.Logger) *IngestService {
	return &IngestService{
		store:     store,
		openBox:   openBox,
		publisher: publisher,
		senders:   senders,
		lookback:  lookback,
		logger:    logger.WithComponent(log.ComponentMail),
		now:       time.Now,
	}
}

// Run processes every connected user's mailbox once and returns the number
// of transactions ingested.
func (s *IngestService) Run(ctx context.Context) (int, error) {
	users, err := s.store.UsersWithMailTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("list connected users: %w", err)
	}

	now := s.now()
	ingested := 0
	for _, ut := range users {
		n, err := s.runUser(ctx, ut, now)
		if err != nil {
			fields := log.NewFields().WithUser(ut.User.ID, ut.User.Email).WithError(err)
			s.logger.ErrorContext(ctx, "Mail ingestion failed for user", fields.ToSlice()...)
			continue
		}
		ingested += n
	}

	s.logger.InfoContext(ctx, "Mail ingestion finished",
		"users", len(users),
		"transactions", ingested)
	return ingested, nil
}

func (s *IngestService) runUser(ctx context.Context, ut storage.UserTokens, now time.Time) (int, error) {
	box, err := s.openBox(ctx, ut)
	if err != nil {
		return 0, fmt.Errorf("open mailbox: %w", err)
	}

	ids, err := box.ListBankMessages(ctx, s.senders, now.Add(-s.lookback))
	if err != nil {
		return 0, fmt.Errorf("list bank mails: %w", err)
	}

	ingested := 0
	for _, id := range ids {
		subject, body, err := box.FetchMessage(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable message",
				log.FieldMessageID, id,
				log.FieldError, err)
			continue
		}

		tx, ok := mail.ParseBankEmail(body, subject, now)
		if !ok {
			s.logger.DebugContext(ctx, "Message carries no transaction",
				log.FieldMessageID, id,
				log.FieldOperation, log.OpParse)
			continue
		}

		txID, err := s.store.InsertTransaction(ctx, ut.User.ID, tx)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping transaction that failed to persist",
				log.FieldMessageID, id,
				log.FieldError, err)
			continue
		}
		ingested++

		if s.publisher != nil {
			msg := amqp.NewTransactionIngestedMessage(ut.User.ID, txID, tx)
			if err := s.publisher.PublishTransactionIngested(ctx, msg); err != nil {
				s.logger.WarnContext(ctx, "Failed to publish ingest event",
					log.FieldMessageID, id,
					log.FieldError, err)
			}
		}

		// The mail is only removed once the transaction is stored, so a
		// crash re-reads it instead of losing it.
		if err := box.DeleteMessage(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete processed message",
				log.FieldMessageID, id,
				log.FieldError, err)
		}

		s.logger.InfoContext(ctx, "Ingested transaction",
			log.FieldUserID, ut.User.ID,
			log.FieldAmount, tx.Amount.String(),
			log.FieldCategory, tx.Category,
			log.FieldOperation, log.OpIngest)
	}
	return ingested, nil
}

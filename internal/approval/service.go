// Package approval implements the administrator workflow that moves user
// requests out of Pending. Every decision runs in one database transaction:
// the status compare-and-swap, the ledger mutation and the in-app
// notification commit together or not at all. Email goes out only after
// commit and its failure never undoes a decision.
package approval

import (
	"context"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/email"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Kinds of request, used as metric labels and in log fields.
const (
	KindDeposit     = "deposit"
	KindGasDeposit  = "gas_fee_deposit"
	KindWithdrawal  = "withdrawal"
	KindTransaction = "transaction"
	KindMint        = "mint"
	KindOffer       = "offer"
)

// Actor is the authenticated user asking for a decision.
type Actor struct {
	ID   int64
	Role models.Role
}

// FeeQuoter prices a mint in ETH at the moment of approval.
type FeeQuoter interface {
	MintingFee(ctx context.Context) (decimal.Decimal, error)
}

// Recorder receives one observation per decision.
type Recorder interface {
	ApprovalOutcome(kind, action, outcome string)
	MintingFeeCharged(eth float64)
}

type Service struct {
	db     *sqlx.DB
	fees   FeeQuoter
	mailer email.Mailer
	rec    Recorder
	log    *logrus.Entry
}

func NewService(db *sqlx.DB, fees FeeQuoter, mailer email.Mailer, rec Recorder, log *logrus.Entry) *Service {
	return &Service{db: db, fees: fees, mailer: mailer, rec: rec, log: log}
}

// decision carries what the post-commit email needs.
type decision struct {
	userID int64
	email  string
	name   string
	ref    string
}

// run wraps one decision: admin check, transaction scope, metrics and the
// follow-up email.
func (s *Service) run(ctx context.Context, actor Actor, kind, action string, id int64, fn func(tx *sqlx.Tx) (*decision, error)) error {
	return s.runWith(ctx, actor, kind, action, id, nil, fn)
}

// runWith is run with a step executed after the admin check but before the
// transaction opens, for work that must not hold row locks (network calls).
func (s *Service) runWith(ctx context.Context, actor Actor, kind, action string, id int64, pre func(context.Context) error, fn func(tx *sqlx.Tx) (*decision, error)) error {
	log := s.log.WithFields(logrus.Fields{"kind": kind, "action": action, "id": id, "admin": actor.ID})

	err := s.decide(ctx, actor, pre, fn, func(d *decision) {
		s.mail(ctx, log, d, kind, action)
	})

	s.rec.ApprovalOutcome(kind, action, outcome(err))
	if err != nil {
		log.WithError(err).Warn("decision not applied")
		return err
	}
	log.Info("decision applied")
	return nil
}

func (s *Service) decide(ctx context.Context, actor Actor, pre func(context.Context) error, fn func(tx *sqlx.Tx) (*decision, error), after func(*decision)) error {
	if actor.Role != models.RoleAdmin {
		return apperror.ErrForbidden
	}
	if pre != nil {
		if err := pre(ctx); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	d, err := fn(tx)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if d != nil {
		after(d)
	}
	return nil
}

var labels = map[string]string{
	KindDeposit:     "wallet deposit",
	KindGasDeposit:  "gas fee deposit",
	KindWithdrawal:  "withdrawal",
	KindTransaction: "purchase",
	KindMint:        "minting request",
	KindOffer:       "offer",
}

var pastTense = map[string]string{
	"approve": "approved",
	"reject":  "rejected",
	"accept":  "accepted",
	"decline": "declined",
}

func (s *Service) mail(ctx context.Context, log *logrus.Entry, d *decision, kind, action string) {
	if d.email == "" {
		return
	}
	msg := email.RequestDecision(d.email, d.name, labels[kind], d.ref, pastTense[action])
	if err := s.mailer.Send(context.WithoutCancel(ctx), msg); err != nil {
		log.WithError(err).WithField("to", d.email).Warn("decision email not delivered")
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrAlreadyProcessed):
		return "already_processed"
	case errors.Is(err, apperror.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, apperror.ErrUpstreamUnavailable):
		return "upstream_unavailable"
	case errors.Is(err, apperror.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperror.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}

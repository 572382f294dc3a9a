package approval

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/mintverse-golang/internal/apperror"
	"github.com/01moynul/mintverse-golang/internal/ledger"
	"github.com/01moynul/mintverse-golang/internal/models"
	"github.com/01moynul/mintverse-golang/internal/notification"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// requestKind describes one of the three balance requests: a deposit or
// gas-fee deposit credits a wallet, a withdrawal debits one.
type requestKind struct {
	kind   string
	table  string
	wallet models.Wallet
	credit bool
	reason string
	link   string
}

var (
	depositKind = requestKind{
		kind: KindDeposit, table: "wallet_deposits",
		wallet: models.WalletMain, credit: true, reason: ledger.ReasonDeposit, link: "/wallet",
	}
	gasDepositKind = requestKind{
		kind: KindGasDeposit, table: "gas_fee_deposits",
		wallet: models.WalletGas, credit: true, reason: ledger.ReasonGasDeposit, link: "/wallet",
	}
	withdrawalKind = requestKind{
		kind: KindWithdrawal, table: "withdrawals",
		wallet: models.WalletMain, credit: false, reason: ledger.ReasonWithdrawal, link: "/wallet",
	}
)

// ApproveDeposit credits the owner's main wallet with the deposit amount.
func (s *Service) ApproveDeposit(ctx context.Context, actor Actor, id int64) error {
	return s.approveRequest(ctx, actor, depositKind, id)
}

func (s *Service) RejectDeposit(ctx context.Context, actor Actor, id int64) error {
	return s.rejectRequest(ctx, actor, depositKind, id)
}

// ApproveGasDeposit credits the owner's gas-fee wallet.
func (s *Service) ApproveGasDeposit(ctx context.Context, actor Actor, id int64) error {
	return s.approveRequest(ctx, actor, gasDepositKind, id)
}

func (s *Service) RejectGasDeposit(ctx context.Context, actor Actor, id int64) error {
	return s.rejectRequest(ctx, actor, gasDepositKind, id)
}

// ApproveWithdrawal debits the owner's main wallet. With an insufficient
// balance nothing changes and the request stays Pending.
func (s *Service) ApproveWithdrawal(ctx context.Context, actor Actor, id int64) error {
	return s.approveRequest(ctx, actor, withdrawalKind, id)
}

func (s *Service) RejectWithdrawal(ctx context.Context, actor Actor, id int64) error {
	return s.rejectRequest(ctx, actor, withdrawalKind, id)
}

func (s *Service) approveRequest(ctx context.Context, actor Actor, k requestKind, id int64) error {
	return s.run(ctx, actor, k.kind, "approve", id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, k.table, id, models.RequestPending, models.RequestApproved); err != nil {
			return nil, err
		}

		d, amount, err := loadRequest(ctx, tx, k.table, id)
		if err != nil {
			return nil, err
		}

		if k.credit {
			err = ledger.Credit(ctx, tx, d.userID, k.wallet, amount, k.reason, d.ref)
		} else {
			err = ledger.Debit(ctx, tx, d.userID, k.wallet, amount, k.reason, d.ref)
		}
		if err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("Your %s of %s ETH was approved.", labels[k.kind], amount.StringFixed(4))
		if err := notification.Add(ctx, tx, d.userID, msg, k.link); err != nil {
			return nil, err
		}
		return d, nil
	})
}

func (s *Service) rejectRequest(ctx context.Context, actor Actor, k requestKind, id int64) error {
	return s.run(ctx, actor, k.kind, "reject", id, func(tx *sqlx.Tx) (*decision, error) {
		if err := transition(ctx, tx, k.table, id, models.RequestPending, models.RequestRejected); err != nil {
			return nil, err
		}

		d, amount, err := loadRequest(ctx, tx, k.table, id)
		if err != nil {
			return nil, err
		}

		msg := fmt.Sprintf("Your %s of %s ETH was rejected.", labels[k.kind], amount.StringFixed(4))
		if err := notification.Add(ctx, tx, d.userID, msg, k.link); err != nil {
			return nil, err
		}
		return d, nil
	})
}

func loadRequest(ctx context.Context, tx *sqlx.Tx, table string, id int64) (*decision, decimal.Decimal, error) {
	var (
		d      decision
		amount decimal.Decimal
	)
	query := fmt.Sprintf(`
		SELECT r.user_id, r.amount, r.ref_number, u.email, u.name
		FROM %s r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = ?`, table)
	err := tx.QueryRowContext(ctx, query, id).Scan(&d.userID, &amount, &d.ref, &d.email, &d.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, amount, fmt.Errorf("%s %d: %w", table, id, apperror.ErrNotFound)
	}
	if err != nil {
		return nil, amount, fmt.Errorf("load %s %d: %w", table, id, err)
	}
	return &d, amount, nil
}

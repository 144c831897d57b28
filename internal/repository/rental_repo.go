package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RentalRepository struct {
	DB *pgxpool.Pool
}

func NewRentalRepository(db *pgxpool.Pool) *RentalRepository {
	return &RentalRepository{DB: db}
}

const rentalColumns = `
	rentalid, customerid, deliveryaddress, deliverydate,
	paymentstatus, paymentsessionid,
	followupamountcents, followupstatus, followupinvoiceid, followupchargedat,
	createdat
`

func scanRental(row pgx.Row) (*model.Rental, error) {
	var r model.Rental
	err := row.Scan(
		&r.RentalID,
		&r.CustomerID,
		&r.DeliveryAddress,
		&r.DeliveryDate,
		&r.PaymentStatus,
		&r.PaymentSessionID,
		&r.FollowUpAmountCents,
		&r.FollowUpStatus,
		&r.FollowUpInvoiceID,
		&r.FollowUpChargedAt,
		&r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// Create inserts a rental at checkout initiation with no payment linkage yet.
func (r *RentalRepository) Create(
	ctx context.Context,
	customerID int64,
	deliveryAddress string,
	deliveryDate time.Time,
) (int64, error) {

	var rentalID int64
	q := `
		INSERT INTO rentals
			(customerid, deliveryaddress, deliverydate, paymentstatus, followupstatus, createdat)
		VALUES
			($1, $2, $3, 'none', 'none', NOW())
		RETURNING rentalid
	`
	err := r.DB.QueryRow(ctx, q, customerID, deliveryAddress, deliveryDate).Scan(&rentalID)
	return rentalID, err
}

func (r *RentalRepository) GetByID(ctx context.Context, rentalID int64) (*model.Rental, error) {
	q := `SELECT ` + rentalColumns + ` FROM rentals WHERE rentalid=$1`
	return scanRental(r.DB.QueryRow(ctx, q, rentalID))
}

func (r *RentalRepository) GetBySessionID(ctx context.Context, sessionID string) (*model.Rental, error) {
	q := `SELECT ` + rentalColumns + ` FROM rentals WHERE paymentsessionid=$1`
	return scanRental(r.DB.QueryRow(ctx, q, sessionID))
}

// SetPaymentPending records the session linkage. Written once per checkout
// attempt, before the caller is told the session exists.
func (r *RentalRepository) SetPaymentPending(ctx context.Context, rentalID int64, sessionID string) error {
	q := `
		UPDATE rentals
		SET paymentstatus='pending',
		    paymentsessionid=$2
		WHERE rentalid=$1
	`
	tag, err := r.DB.Exec(ctx, q, rentalID, sessionID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("rental not found")
	}
	return nil
}

// MarkPaymentCompleted transitions pending -> completed. The status guard in
// the WHERE clause is what makes duplicate webhook deliveries no-ops; the
// returned bool reports whether this call applied the transition.
func (r *RentalRepository) MarkPaymentCompleted(ctx context.Context, rentalID int64) (bool, error) {
	q := `
		UPDATE rentals
		SET paymentstatus='completed'
		WHERE rentalid=$1 AND paymentstatus='pending'
	`
	tag, err := r.DB.Exec(ctx, q, rentalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RentalRepository) MarkPaymentFailed(ctx context.Context, rentalID int64) (bool, error) {
	q := `
		UPDATE rentals
		SET paymentstatus='failed'
		WHERE rentalid=$1 AND paymentstatus='pending'
	`
	tag, err := r.DB.Exec(ctx, q, rentalID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// SetFollowUpPending persists the issued invoice onto the rental.
func (r *RentalRepository) SetFollowUpPending(
	ctx context.Context,
	rentalID int64,
	invoiceID string,
	amountCents int64,
) error {

	q := `
		UPDATE rentals
		SET followupstatus='pending',
		    followupinvoiceid=$2,
		    followupamountcents=$3
		WHERE rentalid=$1
	`
	tag, err := r.DB.Exec(ctx, q, rentalID, invoiceID, amountCents)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("rental not found")
	}
	return nil
}

func (r *RentalRepository) MarkFollowUpPaid(ctx context.Context, invoiceID string) (bool, error) {
	q := `
		UPDATE rentals
		SET followupstatus='paid',
		    followupchargedat=NOW()
		WHERE followupinvoiceid=$1 AND followupstatus='pending'
	`
	tag, err := r.DB.Exec(ctx, q, invoiceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RentalRepository) MarkFollowUpFailed(ctx context.Context, invoiceID string) (bool, error) {
	q := `
		UPDATE rentals
		SET followupstatus='failed'
		WHERE followupinvoiceid=$1 AND followupstatus='pending'
	`
	tag, err := r.DB.Exec(ctx, q, invoiceID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListRecent returns rentals newest first (admin use).
func (r *RentalRepository) ListRecent(ctx context.Context, limit int) ([]model.Rental, error) {
	if limit <= 0 {
		limit = 50
	}
	q := `SELECT ` + rentalColumns + ` FROM rentals ORDER BY createdat DESC LIMIT $1`
	rows, err := r.DB.Query(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		var m model.Rental
		if err := rows.Scan(
			&m.RentalID,
			&m.CustomerID,
			&m.DeliveryAddress,
			&m.DeliveryDate,
			&m.PaymentStatus,
			&m.PaymentSessionID,
			&m.FollowUpAmountCents,
			&m.FollowUpStatus,
			&m.FollowUpInvoiceID,
			&m.FollowUpChargedAt,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

package repository

import (
	"context"
	"errors"

	"github.com/alexandermaat99/intermountain-dumpsters-sub001/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `customerid, email, externalcustomerid, hassavedpaymentmethod, created_at`

func scanCustomer(row pgx.Row) (*model.Customer, error) {
	var c model.Customer
	err := row.Scan(
		&c.CustomerID,
		&c.Email,
		&c.ExternalCustomerID,
		&c.HasSavedPaymentMethod,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, customerID int64) (*model.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE customerid=$1`
	return scanCustomer(r.DB.QueryRow(ctx, q, customerID))
}

func (r *CustomerRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE externalcustomerid=$1`
	return scanCustomer(r.DB.QueryRow(ctx, q, externalID))
}

// UpsertByEmail returns the customer id for an email, creating the row on
// first contact. Upsert keeps checkout initiation single-round-trip.
func (r *CustomerRepository) UpsertByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	q := `
		INSERT INTO customers (email, hassavedpaymentmethod, created_at)
		VALUES ($1, FALSE, NOW())
		ON CONFLICT (email) DO UPDATE SET email=EXCLUDED.email
		RETURNING customerid
	`
	if err := r.DB.QueryRow(ctx, q, email).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// SetExternalCustomerID records the provider-side customer reference. It is
// written once; a second write with a different id is refused so the join key
// can never silently repoint.
func (r *CustomerRepository) SetExternalCustomerID(ctx context.Context, customerID int64, externalID string) error {
	q := `
		UPDATE customers
		SET externalcustomerid=$2
		WHERE customerid=$1
		  AND (externalcustomerid IS NULL OR externalcustomerid=$2)
	`
	tag, err := r.DB.Exec(ctx, q, customerID, externalID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("customer not found or already linked")
	}
	return nil
}

func (r *CustomerRepository) SetHasSavedPaymentMethod(ctx context.Context, customerID int64, saved bool) error {
	q := `UPDATE customers SET hassavedpaymentmethod=$2 WHERE customerid=$1`
	tag, err := r.DB.Exec(ctx, q, customerID, saved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.New("customer not found")
	}
	return nil
}

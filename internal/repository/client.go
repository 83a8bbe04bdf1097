package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/deppfellow/client-directory/internal/database"
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/jackc/pgx/v5"
)

const clientTable = "client_info"

// ClientStore is the set of operations on the client directory.
//
// Constraint violations come back as *sqlerr.Error; missing clients as an
// error wrapping pgx.ErrNoRows (see sqlerr.NotFound).
type ClientStore interface {
	InitializeSchema(ctx context.Context) error
	AddClient(ctx context.Context, in model.NewClient) (*model.Client, error)
	AddPhone(ctx context.Context, clientID int64, phone string) (*model.Phone, error)
	UpdateClient(ctx context.Context, clientID int64, update model.ClientUpdate) (*model.Client, error)
	DeletePhone(ctx context.Context, clientID int64) ([]model.Phone, error)
	DeleteClient(ctx context.Context, clientID int64) (bool, error)
	FindClient(ctx context.Context, filter model.ClientFilter) (*model.ClientRecord, error)
	FindClients(ctx context.Context, filter model.ClientFilter) ([]model.ClientRecord, error)
	GetClient(ctx context.Context, clientID int64) (*model.Client, error)
	ListPhones(ctx context.Context, clientID int64) ([]model.Phone, error)
	WithinTx(ctx context.Context, fn func(store ClientStore) error) error
}

// ClientRepository implements ClientStore on PostgreSQL.
type ClientRepository struct {
	db DBTX
}

var _ ClientStore = (*ClientRepository)(nil)

func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

const (
	clientColumns = `client_id, first_name, last_name, email`
	phoneColumns  = `id, client_id, phone_number`

	insertClientSQL = `
		INSERT INTO client_info (first_name, last_name, email)
		VALUES ($1, $2, $3)
		RETURNING ` + clientColumns

	insertPhoneSQL = `
		INSERT INTO client_phone (client_id, phone_number)
		VALUES ($1, $2)
		RETURNING ` + phoneColumns

	selectClientSQL = `SELECT ` + clientColumns + ` FROM client_info WHERE client_id = $1`

	selectPhonesSQL = `SELECT ` + phoneColumns + ` FROM client_phone WHERE client_id = $1 ORDER BY id`

	deletePhonesSQL = `DELETE FROM client_phone WHERE client_id = $1 RETURNING ` + phoneColumns

	deleteClientSQL = `DELETE FROM client_info WHERE client_id = $1`

	findClientsSQL = `
		SELECT c.client_id, c.first_name, c.last_name, c.email, p.id, p.phone_number
		FROM client_info c
		LEFT JOIN client_phone p ON p.client_id = c.client_id
		WHERE ($1::varchar IS NULL OR c.first_name = $1)
		  AND ($2::varchar IS NULL OR c.last_name = $2)
		  AND ($3::varchar IS NULL OR c.email = $3)
		  AND ($4::varchar IS NULL OR p.phone_number = $4)
		ORDER BY c.client_id, p.id`
)

// InitializeSchema drops and recreates both tables in one transaction.
// Existing data is lost.
func (r *ClientRepository) InitializeSchema(ctx context.Context) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return database.ApplySchema(ctx, tx)
	})
	if err != nil {
		return fmt.Errorf("initialize schema: %w", sqlerr.Wrap(err))
	}
	return nil
}

// AddClient inserts a client and returns the stored row.
func (r *ClientRepository) AddClient(ctx context.Context, in model.NewClient) (*model.Client, error) {
	row := r.db.QueryRow(ctx, insertClientSQL,
		model.NullIfEmpty(&in.FirstName),
		model.NullIfEmpty(&in.LastName),
		model.NullIfEmpty(in.Email),
	)
	client, err := scanClient(row)
	if err != nil {
		return nil, fmt.Errorf("add client: %w", sqlerr.Wrap(err))
	}
	return client, nil
}

// AddPhone attaches a phone number to an existing client.
func (r *ClientRepository) AddPhone(ctx context.Context, clientID int64, phone string) (*model.Phone, error) {
	p, err := scanPhone(r.db.QueryRow(ctx, insertPhoneSQL, clientID, phone))
	if err != nil {
		return nil, fmt.Errorf("add phone to client %d: %w", clientID, sqlerr.Wrap(err))
	}
	return p, nil
}

// columnValue pairs an updatable column with its new value.
type columnValue struct {
	name  string
	value *string
}

// updatableColumns lists the client columns UpdateClient may touch, in
// statement order.
func updatableColumns(update model.ClientUpdate) []columnValue {
	return []columnValue{
		{"first_name", update.FirstName},
		{"last_name", update.LastName},
		{"email", update.Email},
	}
}

// buildUpdateSQL renders one UPDATE for the set fields of update.
// It returns an empty statement when nothing is set.
func buildUpdateSQL(clientID int64, update model.ClientUpdate) (string, []any) {
	var (
		sets []string
		args []any
	)
	for _, col := range updatableColumns(update) {
		if !model.IsSet(col.value) {
			continue
		}
		args = append(args, *col.value)
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col.name}.Sanitize(), len(args)))
	}
	if len(sets) == 0 {
		return "", nil
	}
	args = append(args, clientID)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE client_id = $%d RETURNING %s",
		pgx.Identifier{clientTable}.Sanitize(),
		strings.Join(sets, ", "),
		len(args),
		clientColumns,
	)
	return sql, args
}

// UpdateClient changes the set fields of a client in a single statement.
// With nothing set, the current row is returned unchanged.
func (r *ClientRepository) UpdateClient(ctx context.Context, clientID int64, update model.ClientUpdate) (*model.Client, error) {
	sql, args := buildUpdateSQL(clientID, update)
	if sql == "" {
		return r.GetClient(ctx, clientID)
	}

	client, err := scanClient(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update client %d: %w", clientID, sqlerr.NotFound(clientTable))
	}
	if err != nil {
		return nil, fmt.Errorf("update client %d: %w", clientID, sqlerr.Wrap(err))
	}
	return client, nil
}

// DeletePhone removes every phone of a client and returns the deleted rows
// ordered by id. The slice is empty when the client had none.
func (r *ClientRepository) DeletePhone(ctx context.Context, clientID int64) ([]model.Phone, error) {
	rows, err := r.db.Query(ctx, deletePhonesSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("delete phones of client %d: %w", clientID, sqlerr.Wrap(err))
	}
	phones, err := pgx.CollectRows(rows, collectPhone)
	if err != nil {
		return nil, fmt.Errorf("delete phones of client %d: %w", clientID, sqlerr.Wrap(err))
	}

	slices.SortFunc(phones, func(a, b model.Phone) int {
		return cmp.Compare(a.ID, b.ID)
	})
	if phones == nil {
		phones = []model.Phone{}
	}
	return phones, nil
}

// DeleteClient removes a client and its phones atomically.
// It reports false when no such client existed.
func (r *ClientRepository) DeleteClient(ctx context.Context, clientID int64) (bool, error) {
	var deleted bool
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := NewClientRepository(tx).DeletePhone(ctx, clientID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, deleteClientSQL, clientID)
		if err != nil {
			return sqlerr.Wrap(err)
		}
		deleted = tag.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete client %d: %w", clientID, err)
	}
	return deleted, nil
}

// FindClient returns the first row of the client/phone join matching filter,
// ordered by client id then phone id, or nil when nothing matches.
func (r *ClientRepository) FindClient(ctx context.Context, filter model.ClientFilter) (*model.ClientRecord, error) {
	row := r.db.QueryRow(ctx, findClientsSQL+"\n\t\tLIMIT 1", filterArgs(filter)...)

	var rec model.ClientRecord
	err := row.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.PhoneID, &rec.PhoneNumber)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find client: %w", sqlerr.Wrap(err))
	}
	return &rec, nil
}

// FindClients returns every row of the client/phone join matching filter,
// ordered by client id then phone id.
func (r *ClientRepository) FindClients(ctx context.Context, filter model.ClientFilter) ([]model.ClientRecord, error) {
	rows, err := r.db.Query(ctx, findClientsSQL, filterArgs(filter)...)
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", sqlerr.Wrap(err))
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ClientRecord, error) {
		var rec model.ClientRecord
		err := row.Scan(&rec.ID, &rec.FirstName, &rec.LastName, &rec.Email, &rec.PhoneID, &rec.PhoneNumber)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", sqlerr.Wrap(err))
	}
	if records == nil {
		records = []model.ClientRecord{}
	}
	return records, nil
}

func (r *ClientRepository) GetClient(ctx context.Context, clientID int64) (*model.Client, error) {
	client, err := scanClient(r.db.QueryRow(ctx, selectClientSQL, clientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get client %d: %w", clientID, sqlerr.NotFound(clientTable))
	}
	if err != nil {
		return nil, fmt.Errorf("get client %d: %w", clientID, sqlerr.Wrap(err))
	}
	return client, nil
}

func (r *ClientRepository) ListPhones(ctx context.Context, clientID int64) ([]model.Phone, error) {
	rows, err := r.db.Query(ctx, selectPhonesSQL, clientID)
	if err != nil {
		return nil, fmt.Errorf("list phones of client %d: %w", clientID, sqlerr.Wrap(err))
	}
	phones, err := pgx.CollectRows(rows, collectPhone)
	if err != nil {
		return nil, fmt.Errorf("list phones of client %d: %w", clientID, sqlerr.Wrap(err))
	}
	if phones == nil {
		phones = []model.Phone{}
	}
	return phones, nil
}

// WithinTx runs fn against a store bound to one transaction. It commits when
// fn returns nil and rolls back otherwise. Nested calls use savepoints.
func (r *ClientRepository) WithinTx(ctx context.Context, fn func(store ClientStore) error) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return fn(NewClientRepository(tx))
	})
}

func filterArgs(filter model.ClientFilter) []any {
	return []any{
		model.NullIfEmpty(filter.FirstName),
		model.NullIfEmpty(filter.LastName),
		model.NullIfEmpty(filter.Email),
		model.NullIfEmpty(filter.PhoneNumber),
	}
}

func scanClient(row pgx.Row) (*model.Client, error) {
	var c model.Client
	if err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanPhone(row pgx.Row) (*model.Phone, error) {
	var p model.Phone
	if err := row.Scan(&p.ID, &p.ClientID, &p.PhoneNumber); err != nil {
		return nil, err
	}
	return &p, nil
}

func collectPhone(row pgx.CollectableRow) (model.Phone, error) {
	var p model.Phone
	err := row.Scan(&p.ID, &p.ClientID, &p.PhoneNumber)
	return p, err
}

// Package testutil provides test doubles shared by the service, handler and
// CLI tests.
package testutil

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"unicode/utf8"

	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/jackc/pgx/v5/pgconn"
)

// MemStore is an in-memory repository.ClientStore.
//
// It enforces the constraints of the PostgreSQL schema and reports
// violations as *sqlerr.Error values carrying the same SQLSTATE, table and
// constraint names the server would. Like SERIAL columns, id sequences keep
// advancing across failed inserts and rolled back transactions.
type MemStore struct {
	mu          sync.Mutex
	clients     map[int64]model.Client
	phones      map[int64]model.Phone
	nextClient  int64
	nextPhone   int64
	initialized bool

	// Err, when set, is returned by every operation.
	Err error
}

var _ repository.ClientStore = (*MemStore)(nil)

// NewMemStore returns a store whose schema is already initialized.
func NewMemStore() *MemStore {
	s := &MemStore{}
	s.reset()
	return s
}

func (s *MemStore) reset() {
	s.clients = make(map[int64]model.Client)
	s.phones = make(map[int64]model.Phone)
	s.nextClient = 1
	s.nextPhone = 1
	s.initialized = true
}

func pgError(code, table, column, constraint, message string) error {
	return sqlerr.ConvertPgError(&pgconn.PgError{
		Severity:       "ERROR",
		Code:           code,
		Message:        message,
		TableName:      table,
		ColumnName:     column,
		ConstraintName: constraint,
	})
}

func notNull(table, column string) error {
	return pgError("23502", table, column, "",
		fmt.Sprintf(`null value in column "%s" of relation "%s" violates not-null constraint`, column, table))
}

func unique(table, constraint string) error {
	return pgError("23505", table, "", constraint,
		fmt.Sprintf(`duplicate key value violates unique constraint "%s"`, constraint))
}

func tooLong(limit int) error {
	return pgError("22001", "", "", "", fmt.Sprintf("value too long for type character varying(%d)", limit))
}

func tooLongFor(v string, limit int) bool {
	return utf8.RuneCountInString(v) > limit
}

func (s *MemStore) check() error {
	if s.Err != nil {
		return s.Err
	}
	if !s.initialized {
		return pgError("42P01", "", "", "", `relation "client_info" does not exist`)
	}
	return nil
}

// Uninitialize drops the schema, as on a fresh database.
func (s *MemStore) Uninitialize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = false
}

func (s *MemStore) InitializeSchema(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return fmt.Errorf("initialize schema: %w", s.Err)
	}
	s.reset()
	return nil
}

func (s *MemStore) emailTaken(email string, except int64) bool {
	for id, c := range s.clients {
		if id != except && c.Email != nil && *c.Email == email {
			return true
		}
	}
	return false
}

func (s *MemStore) AddClient(_ context.Context, in model.NewClient) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("add client: %w", err)
	}

	id := s.nextClient
	s.nextClient++

	switch {
	case !model.IsSet(&in.FirstName):
		return nil, fmt.Errorf("add client: %w", notNull("client_info", "first_name"))
	case !model.IsSet(&in.LastName):
		return nil, fmt.Errorf("add client: %w", notNull("client_info", "last_name"))
	case tooLongFor(in.FirstName, 40):
		return nil, fmt.Errorf("add client: %w", tooLong(40))
	case tooLongFor(in.LastName, 60):
		return nil, fmt.Errorf("add client: %w", tooLong(60))
	}

	email := model.NullIfEmpty(in.Email)
	if email != nil {
		if tooLongFor(*email, 100) {
			return nil, fmt.Errorf("add client: %w", tooLong(100))
		}
		if s.emailTaken(*email, 0) {
			return nil, fmt.Errorf("add client: %w", unique("client_info", "client_info_email_key"))
		}
		email = model.Ptr(*email)
	}

	c := model.Client{ID: id, FirstName: in.FirstName, LastName: in.LastName, Email: email}
	s.clients[id] = c
	return &c, nil
}

func (s *MemStore) AddPhone(_ context.Context, clientID int64, phone string) (*model.Phone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("add phone to client %d: %w", clientID, err)
	}

	id := s.nextPhone
	s.nextPhone++

	if tooLongFor(phone, 12) {
		return nil, fmt.Errorf("add phone to client %d: %w", clientID, tooLong(12))
	}
	for _, p := range s.phones {
		if p.PhoneNumber == phone {
			return nil, fmt.Errorf("add phone to client %d: %w", clientID,
				unique("client_phone", "client_phone_phone_number_key"))
		}
	}
	if _, ok := s.clients[clientID]; !ok {
		return nil, fmt.Errorf("add phone to client %d: %w", clientID,
			pgError("23503", "client_phone", "", "client_phone_client_id_fkey",
				`insert or update on table "client_phone" violates foreign key constraint "client_phone_client_id_fkey"`))
	}

	p := model.Phone{ID: id, ClientID: clientID, PhoneNumber: phone}
	s.phones[id] = p
	return &p, nil
}

func (s *MemStore) UpdateClient(ctx context.Context, clientID int64, update model.ClientUpdate) (*model.Client, error) {
	if update.IsEmpty() {
		return s.GetClient(ctx, clientID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("update client %d: %w", clientID, err)
	}

	c, ok := s.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("update client %d: %w", clientID, sqlerr.NotFound("client_info"))
	}

	if model.IsSet(update.FirstName) {
		if tooLongFor(*update.FirstName, 40) {
			return nil, fmt.Errorf("update client %d: %w", clientID, tooLong(40))
		}
		c.FirstName = *update.FirstName
	}
	if model.IsSet(update.LastName) {
		if tooLongFor(*update.LastName, 60) {
			return nil, fmt.Errorf("update client %d: %w", clientID, tooLong(60))
		}
		c.LastName = *update.LastName
	}
	if model.IsSet(update.Email) {
		if tooLongFor(*update.Email, 100) {
			return nil, fmt.Errorf("update client %d: %w", clientID, tooLong(100))
		}
		if s.emailTaken(*update.Email, clientID) {
			return nil, fmt.Errorf("update client %d: %w", clientID, unique("client_info", "client_info_email_key"))
		}
		c.Email = model.Ptr(*update.Email)
	}

	s.clients[clientID] = c
	return &c, nil
}

func (s *MemStore) phonesOf(clientID int64) []model.Phone {
	phones := []model.Phone{}
	for _, p := range s.phones {
		if p.ClientID == clientID {
			phones = append(phones, p)
		}
	}
	slices.SortFunc(phones, func(a, b model.Phone) int { return int(a.ID - b.ID) })
	return phones
}

func (s *MemStore) DeletePhone(_ context.Context, clientID int64) ([]model.Phone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("delete phones of client %d: %w", clientID, err)
	}

	phones := s.phonesOf(clientID)
	for _, p := range phones {
		delete(s.phones, p.ID)
	}
	return phones, nil
}

func (s *MemStore) DeleteClient(_ context.Context, clientID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return false, fmt.Errorf("delete client %d: %w", clientID, err)
	}

	for _, p := range s.phonesOf(clientID) {
		delete(s.phones, p.ID)
	}
	if _, ok := s.clients[clientID]; !ok {
		return false, nil
	}
	delete(s.clients, clientID)
	return true, nil
}

func matches(criterion *string, value *string) bool {
	if !model.IsSet(criterion) {
		return true
	}
	return value != nil && *value == *criterion
}

func (s *MemStore) FindClients(_ context.Context, filter model.ClientFilter) ([]model.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	return s.find(filter), nil
}

func (s *MemStore) find(filter model.ClientFilter) []model.ClientRecord {
	records := []model.ClientRecord{}
	for _, id := range slices.Sorted(maps.Keys(s.clients)) {
		c := s.clients[id]
		if !matches(filter.FirstName, &c.FirstName) ||
			!matches(filter.LastName, &c.LastName) ||
			!matches(filter.Email, c.Email) {
			continue
		}

		phones := s.phonesOf(id)
		if len(phones) == 0 {
			if !model.IsSet(filter.PhoneNumber) {
				records = append(records, model.ClientRecord{Client: c})
			}
			continue
		}
		for _, p := range phones {
			if !matches(filter.PhoneNumber, &p.PhoneNumber) {
				continue
			}
			records = append(records, model.ClientRecord{
				Client:      c,
				PhoneID:     &p.ID,
				PhoneNumber: model.Ptr(p.PhoneNumber),
			})
		}
	}
	return records
}

func (s *MemStore) FindClient(_ context.Context, filter model.ClientFilter) (*model.ClientRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("find client: %w", err)
	}
	records := s.find(filter)
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (s *MemStore) GetClient(_ context.Context, clientID int64) (*model.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("get client %d: %w", clientID, err)
	}
	c, ok := s.clients[clientID]
	if !ok {
		return nil, fmt.Errorf("get client %d: %w", clientID, sqlerr.NotFound("client_info"))
	}
	return &c, nil
}

func (s *MemStore) ListPhones(_ context.Context, clientID int64) ([]model.Phone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return nil, fmt.Errorf("list phones of client %d: %w", clientID, err)
	}
	return s.phonesOf(clientID), nil
}

// WithinTx runs fn against the store and restores the previous contents
// when fn fails or panics. Sequences are not restored.
func (s *MemStore) WithinTx(_ context.Context, fn func(store repository.ClientStore) error) (err error) {
	s.mu.Lock()
	clients := maps.Clone(s.clients)
	phones := maps.Clone(s.phones)
	initialized := s.initialized
	s.mu.Unlock()

	rollback := func() {
		s.mu.Lock()
		s.clients = clients
		s.phones = phones
		s.initialized = initialized
		s.mu.Unlock()
	}

	defer func() {
		if p := recover(); p != nil {
			rollback()
			panic(p)
		}
	}()

	if err = fn(s); err != nil {
		rollback()
	}
	return err
}

// Clients returns a copy of every stored client ordered by id.
func (s *MemStore) Clients() []model.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Client, 0, len(s.clients))
	for _, id := range slices.Sorted(maps.Keys(s.clients)) {
		out = append(out, s.clients[id])
	}
	return out
}

// PhoneNumbers returns every stored phone number, sorted.
func (s *MemStore) PhoneNumbers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.phones))
	for _, p := range s.phones {
		out = append(out, p.PhoneNumber)
	}
	slices.Sort(out)
	return out
}

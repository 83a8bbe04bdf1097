package service

import (
	"context"
	"errors"
	"time"

	"github.com/deppfellow/client-directory/internal/metrics"
	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// ClientService exposes the client directory operations.
//
// Every call is logged with its operation name and duration and reported to
// the metrics recorder. Calls slower than slowThreshold are logged at warn.
type ClientService struct {
	store         repository.ClientStore
	logger        *zerolog.Logger
	metrics       metrics.Recorder
	slowThreshold time.Duration
}

func NewClientService(store repository.ClientStore, logger *zerolog.Logger, recorder metrics.Recorder, slowThreshold time.Duration) *ClientService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &ClientService{
		store:         store,
		logger:        logger,
		metrics:       recorder,
		slowThreshold: slowThreshold,
	}
}

// withStore returns a copy of s bound to another store, e.g. a transaction.
func (s *ClientService) withStore(store repository.ClientStore) *ClientService {
	cp := *s
	cp.store = store
	return &cp
}

// log prefers the request-scoped logger carried by ctx.
func (s *ClientService) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return s.logger
}

// track records the outcome of an operation. It is deferred with a pointer
// to the operation's named error.
func (s *ClientService) track(ctx context.Context, operation string, start time.Time, errp *error, fields ...any) {
	duration := time.Since(start)
	var err error
	if errp != nil {
		err = *errp
	}
	s.metrics.Observe(ctx, operation, err == nil, duration)

	log := s.log(ctx)
	var event *zerolog.Event
	switch {
	case err == nil && s.slowThreshold > 0 && duration > s.slowThreshold:
		event = log.Warn().Bool("slow", true)
	case err == nil:
		event = log.Debug()
	case sqlerr.ErrCode(err) != sqlerr.Other && sqlerr.ErrCode(err) != sqlerr.ConnectionFailure,
		errors.Is(err, pgx.ErrNoRows):
		event = log.Warn().Err(err)
	default:
		event = log.Error().Stack().Err(err)
	}

	event.
		Str("operation", operation).
		Dur("duration", duration).
		Fields(fields).
		Msg("client directory operation")
}

// InitializeSchema drops and recreates the client tables.
func (s *ClientService) InitializeSchema(ctx context.Context) (err error) {
	defer s.track(ctx, "initialize_schema", time.Now(), &err)
	return s.store.InitializeSchema(ctx)
}

func (s *ClientService) AddClient(ctx context.Context, in model.NewClient) (client *model.Client, err error) {
	defer s.track(ctx, "add_client", time.Now(), &err)
	return s.store.AddClient(ctx, in)
}

func (s *ClientService) AddPhone(ctx context.Context, clientID int64, phone string) (p *model.Phone, err error) {
	defer s.track(ctx, "add_phone", time.Now(), &err, "client_id", clientID)
	return s.store.AddPhone(ctx, clientID, phone)
}

// UpdateClient changes the set fields of update; unset fields keep their value.
func (s *ClientService) UpdateClient(ctx context.Context, clientID int64, update model.ClientUpdate) (client *model.Client, err error) {
	defer s.track(ctx, "update_client", time.Now(), &err, "client_id", clientID)
	return s.store.UpdateClient(ctx, clientID, update)
}

// DeletePhone removes every phone of the client.
func (s *ClientService) DeletePhone(ctx context.Context, clientID int64) (phones []model.Phone, err error) {
	start := time.Now()
	defer func() {
		s.track(ctx, "delete_phone", start, &err, "client_id", clientID, "deleted", len(phones))
	}()
	return s.store.DeletePhone(ctx, clientID)
}

func (s *ClientService) DeleteClient(ctx context.Context, clientID int64) (deleted bool, err error) {
	defer s.track(ctx, "delete_client", time.Now(), &err, "client_id", clientID)
	return s.store.DeleteClient(ctx, clientID)
}

// FindClient returns the first matching record or nil.
func (s *ClientService) FindClient(ctx context.Context, filter model.ClientFilter) (rec *model.ClientRecord, err error) {
	defer s.track(ctx, "find_client", time.Now(), &err)
	return s.store.FindClient(ctx, filter)
}

func (s *ClientService) FindClients(ctx context.Context, filter model.ClientFilter) (records []model.ClientRecord, err error) {
	defer s.track(ctx, "find_clients", time.Now(), &err)
	return s.store.FindClients(ctx, filter)
}

func (s *ClientService) GetClient(ctx context.Context, clientID int64) (client *model.Client, err error) {
	defer s.track(ctx, "get_client", time.Now(), &err, "client_id", clientID)
	return s.store.GetClient(ctx, clientID)
}

func (s *ClientService) ListPhones(ctx context.Context, clientID int64) (phones []model.Phone, err error) {
	defer s.track(ctx, "list_phones", time.Now(), &err, "client_id", clientID)
	return s.store.ListPhones(ctx, clientID)
}

package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/repository"
)

// DemoReport is the outcome of every step of RunDemo.
type DemoReport struct {
	Clients       []model.Client      `json:"clients"`
	Phones        []model.Phone       `json:"phones"`
	Updated       *model.Client       `json:"updated"`
	DeletedPhones []model.Phone       `json:"deleted_phones"`
	ClientDeleted bool                `json:"client_deleted"`
	Found         *model.ClientRecord `json:"found"`
}

var demoClients = []model.NewClient{
	{FirstName: "Nikolay", LastName: "Shirokov", Email: model.Ptr("nsh@internet.ru")},
	{FirstName: "Alexandr", LastName: "Zubarev", Email: model.Ptr("zu@internet.ru")},
	{FirstName: "Ksenya", LastName: "Shirokova", Email: model.Ptr("ks@internet.ru")},
}

// demoPhones attaches numbers to demoClients by index.
var demoPhones = []struct {
	client int
	number string
}{
	{0, "89693239999"},
	{1, "89993790000"},
	{1, "83332323055"},
}

var demoUpdate = model.ClientUpdate{
	FirstName: model.Ptr("Taty"),
	LastName:  model.Ptr("Shirokova"),
	Email:     model.Ptr("shirokova@mail.ru"),
}

// RunDemo recreates the schema and replays a fixed scenario touching every
// operation. All steps share one transaction: the first failure rolls back
// everything, including the schema reset.
func (s *ClientService) RunDemo(ctx context.Context) (*DemoReport, error) {
	report := &DemoReport{}

	err := s.store.WithinTx(ctx, func(store repository.ClientStore) error {
		tx := s.withStore(store)

		if err := tx.InitializeSchema(ctx); err != nil {
			return err
		}

		for _, in := range demoClients {
			client, err := tx.AddClient(ctx, in)
			if err != nil {
				return err
			}
			report.Clients = append(report.Clients, *client)
		}

		for _, p := range demoPhones {
			phone, err := tx.AddPhone(ctx, report.Clients[p.client].ID, p.number)
			if err != nil {
				return err
			}
			report.Phones = append(report.Phones, *phone)
		}

		updated, err := tx.UpdateClient(ctx, report.Clients[0].ID, demoUpdate)
		if err != nil {
			return err
		}
		report.Updated = updated

		if report.DeletedPhones, err = tx.DeletePhone(ctx, report.Clients[1].ID); err != nil {
			return err
		}

		if report.ClientDeleted, err = tx.DeleteClient(ctx, report.Clients[0].ID); err != nil {
			return err
		}

		report.Found, err = tx.FindClient(ctx, model.ClientFilter{FirstName: model.Ptr("Ksenya")})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("demo run: %w", err)
	}

	s.logger.Info().
		Int("clients", len(report.Clients)).
		Int("phones", len(report.Phones)).
		Int("deleted_phones", len(report.DeletedPhones)).
		Bool("client_deleted", report.ClientDeleted).
		Msg("demo run committed")

	return report, nil
}

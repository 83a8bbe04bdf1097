package cli

import (
	"context"
	"errors"

	"github.com/deppfellow/client-directory/internal/model"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/spf13/cobra"
)

var errNoMatch = errors.New("no client matches the given criteria")

// deleteResult is printed by "client delete".
type deleteResult struct {
	ClientID int64 `json:"client_id"`
	Deleted  bool  `json:"deleted"`
}

func newClientCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Add, change, remove and look up clients",
	}

	cmd.AddCommand(
		newClientAddCommand(open),
		newClientGetCommand(open),
		newClientUpdateCommand(open),
		newClientDeleteCommand(open),
		newClientFindCommand(open),
		newClientSearchCommand(open),
	)
	return cmd
}

func newClientAddCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Args:  cobra.NoArgs,
	}
	addClientFlags(cmd)
	_ = cmd.MarkFlagRequired(flagFirstName)
	_ = cmd.MarkFlagRequired(flagLastName)

	cmd.RunE = withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
		firstName, _ := cmd.Flags().GetString(flagFirstName)
		lastName, _ := cmd.Flags().GetString(flagLastName)
		return svc.AddClient(ctx, model.NewClient{
			FirstName: firstName,
			LastName:  lastName,
			Email:     optionalString(cmd, flagEmail),
		})
	})
	return cmd
}

// idCommand builds a command taking a single client id argument.
func idCommand(use, short string, open Opener, fn func(ctx context.Context, svc *service.ClientService, id int64) (any, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := parseClientID(args[0])
		if err != nil {
			return err
		}
		return withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
			return fn(ctx, svc, id)
		})(cmd, args)
	}
	return cmd
}

func newClientGetCommand(open Opener) *cobra.Command {
	return idCommand("get <client-id>", "Show a client", open,
		func(ctx context.Context, svc *service.ClientService, id int64) (any, error) {
			return svc.GetClient(ctx, id)
		})
}

func newClientUpdateCommand(open Opener) *cobra.Command {
	var cmd *cobra.Command
	cmd = idCommand("update <client-id>", "Change the given fields of a client", open,
		func(ctx context.Context, svc *service.ClientService, id int64) (any, error) {
			return svc.UpdateClient(ctx, id, model.ClientUpdate{
				FirstName: optionalString(cmd, flagFirstName),
				LastName:  optionalString(cmd, flagLastName),
				Email:     optionalString(cmd, flagEmail),
			})
		})
	addClientFlags(cmd)
	return cmd
}

func newClientDeleteCommand(open Opener) *cobra.Command {
	return idCommand("delete <client-id>", "Delete a client and all of its phone numbers", open,
		func(ctx context.Context, svc *service.ClientService, id int64) (any, error) {
			deleted, err := svc.DeleteClient(ctx, id)
			if err != nil {
				return nil, err
			}
			return deleteResult{ClientID: id, Deleted: deleted}, nil
		})
}

func newClientFindCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Show the first client matching every given field",
		Args:  cobra.NoArgs,
	}
	addFilterFlags(cmd)

	cmd.RunE = withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
		record, err := svc.FindClient(ctx, filterFromFlags(cmd))
		if err != nil {
			return nil, err
		}
		if record == nil {
			return nil, errNoMatch
		}
		return record, nil
	})
	return cmd
}

func newClientSearchCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "List every client row matching every given field",
		Args:  cobra.NoArgs,
	}
	addFilterFlags(cmd)

	cmd.RunE = withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
		return svc.FindClients(ctx, filterFromFlags(cmd))
	})
	return cmd
}

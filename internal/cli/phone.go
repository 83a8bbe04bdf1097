package cli

import (
	"context"

	"github.com/deppfellow/client-directory/internal/service"
	"github.com/spf13/cobra"
)

func newPhoneCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phone",
		Short: "Manage the phone numbers of a client",
	}

	cmd.AddCommand(
		newPhoneAddCommand(open),
		idCommand("list <client-id>", "List the phone numbers of a client", open,
			func(ctx context.Context, svc *service.ClientService, id int64) (any, error) {
				return svc.ListPhones(ctx, id)
			}),
		idCommand("delete <client-id>", "Delete every phone number of a client", open,
			func(ctx context.Context, svc *service.ClientService, id int64) (any, error) {
				return svc.DeletePhone(ctx, id)
			}),
	)
	return cmd
}

func newPhoneAddCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "add <client-id> <phone-number>",
		Short: "Attach a phone number to a client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseClientID(args[0])
			if err != nil {
				return err
			}
			return withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
				return svc.AddPhone(ctx, id, args[1])
			})(cmd, args)
		},
	}
}

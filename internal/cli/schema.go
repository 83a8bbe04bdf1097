package cli

import (
	"context"

	"github.com/deppfellow/client-directory/internal/service"
	"github.com/spf13/cobra"
)

type statusResult struct {
	Status string `json:"status"`
}

func newSchemaCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Drop and recreate client_info and client_phone (all data is lost)",
		Args:  cobra.NoArgs,
		RunE: withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
			if err := svc.InitializeSchema(ctx); err != nil {
				return nil, err
			}
			return statusResult{Status: "initialized"}, nil
		}),
	})
	return cmd
}

func newDemoCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Recreate the schema and run every operation on sample data in one transaction",
		Args:  cobra.NoArgs,
		RunE: withService(open, func(ctx context.Context, svc *service.ClientService) (any, error) {
			return svc.RunDemo(ctx)
		}),
	}
}

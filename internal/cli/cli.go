// Package cli builds the clientdir command tree.
//
// Every data command opens one database connection, runs a single service
// operation and prints the result to stdout as indented JSON. Logs go to
// stderr.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/deppfellow/client-directory/internal/config"
	"github.com/deppfellow/client-directory/internal/database"
	"github.com/deppfellow/client-directory/internal/errs"
	"github.com/deppfellow/client-directory/internal/lib/utils"
	"github.com/deppfellow/client-directory/internal/logger"
	"github.com/deppfellow/client-directory/internal/repository"
	"github.com/deppfellow/client-directory/internal/service"
	"github.com/deppfellow/client-directory/internal/sqlerr"
	"github.com/spf13/cobra"
)

// Opener returns the client service a command runs against, plus a release
// func the command defers. Logs are written to errOut.
type Opener func(ctx context.Context, errOut io.Writer) (*service.ClientService, func(), error)

// OpenDatabase loads config from the environment and opens a single
// PostgreSQL connection.
func OpenDatabase(ctx context.Context, errOut io.Writer) (*service.ClientService, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	loggerService := logger.NewLoggerService(cfg.Observability)
	log := logger.NewLoggerWithWriter(cfg.Observability, loggerService, errOut)

	conn, err := database.Connect(ctx, cfg, &log, loggerService)
	if err != nil {
		loggerService.Shutdown()
		return nil, nil, err
	}

	repos := repository.NewRepositoriesWithDB(conn)
	svc := service.NewClientService(repos.Clients, &log, nil, cfg.Observability.Logging.SlowQueryThreshold)

	release := func() {
		if err := conn.Close(context.Background()); err != nil {
			log.Warn().Err(err).Msg("failed to close database connection")
		}
		loggerService.Shutdown()
	}
	return svc, release, nil
}

// NewRootCommand returns the clientdir command. open backs every data
// command; serve always builds its own pooled server.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "clientdir",
		Short:         "Manage a PostgreSQL directory of clients and their phone numbers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCommand(),
		newSchemaCommand(open),
		newDemoCommand(open),
		newClientCommand(open),
		newPhoneCommand(open),
	)
	return root
}

// withService runs fn against a freshly opened service and prints its result.
func withService(open Opener, fn func(ctx context.Context, svc *service.ClientService) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		svc, release, err := open(cmd.Context(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer release()

		result, err := fn(cmd.Context(), svc)
		if err != nil {
			return err
		}
		return utils.PrintJSON(cmd.OutOrStdout(), result)
	}
}

// parseClientID parses a client id argument. Ids are positive and fit the
// INTEGER client_id column.
func parseClientID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 32)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid client id %q: must be between 1 and %d", arg, math.MaxInt32)
	}
	return id, nil
}

// FormatError renders err for a terminal.
//
// Errors the API would answer with a 4xx get the same user-facing message
// and field details. Anything else is printed as-is.
func FormatError(err error) string {
	var httpErr *errs.HTTPError
	if !errors.As(sqlerr.HandleError(err), &httpErr) || httpErr.Status >= 500 {
		return "error: " + err.Error()
	}

	var b strings.Builder
	b.WriteString("error: " + httpErr.Message)
	for _, fe := range httpErr.Errors {
		fmt.Fprintf(&b, "\n  %s: %s", fe.Field, fe.Error)
	}
	return b.String()
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/deppfellow/client-directory/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(cli.OpenDatabase).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, cli.FormatError(err))
		os.Exit(1)
	}
}

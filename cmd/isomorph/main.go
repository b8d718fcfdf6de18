// Command isomorph serves, renders and tests an isomorphic application.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/isomorph/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

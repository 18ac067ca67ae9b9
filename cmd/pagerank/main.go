// Command pagerank ranks the vertices of the yearly citation graphs and
// reports the top vertices of each year.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// A missing .env file is not an error; existing env vars take precedence.
	_ = godotenv.Load()

	ctx, cancelFn := signal.NotifyContext(context.Background(), os.Interrupt)
	code := execute(ctx, newViper(), os.Args[1:], os.Stdout, os.Stderr)
	cancelFn()
	os.Exit(code)
}

// execute runs the root command and returns the process exit code.
func execute(ctx context.Context, v *viper.Viper, args []string, stdout, stderr io.Writer) int {
	if args == nil {
		args = []string{}
	}
	cmd := newRootCmd(v, stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var uErr *usageError
	if errors.As(err, &uErr) {
		fmt.Fprintf(stderr, "pagerank: %v\n%s\n", uErr, usage)
	} else {
		fmt.Fprintf(stderr, "pagerank: %v\n", err)
	}
	return 1
}

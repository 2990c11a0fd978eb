package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nholding/finseries/internal/repository"
	"github.com/nholding/finseries/internal/storage"
)

type runCmd struct {
	common
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "fetch disclosure files from S3 and answer the configured queries" }
func (*runCmd) Usage() string {
	return `finseries run [-config <file>] [-id <id> -file <file> -date <YYYY-MM-DD>] [-isolate] [-keep]

  Lists the objects under APP_COMPANY_DATA_PATH in APP_BUCKET_NAME, downloads them,
  expands archives, parses every CSV file and prints the value of each query.
`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
}

func (c *runCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	clients, err := repository.NewAWSClients(ctx, &cfg.AWS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	return execute(ctx, storage.NewS3BlobStore(clients.S3), cfg)
}

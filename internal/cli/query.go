package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/nholding/finseries/internal/storage"
)

type queryCmd struct {
	common
	dir    string
	prefix string
}

func (*queryCmd) Name() string     { return "query" }
func (*queryCmd) Synopsis() string { return "answer queries against disclosure files in a local directory" }
func (*queryCmd) Usage() string {
	return `finseries query -dir <path> [-prefix <path>] [-id <id> -file <file> -date <YYYY-MM-DD>]

  Runs the same pipeline as "run" with a local directory standing in for the bucket.
`
}

func (c *queryCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.dir, "dir", "", "Directory holding the disclosure files (required)")
	f.StringVar(&c.prefix, "prefix", "", "Only use files whose path below -dir starts with this prefix (default APP_COMPANY_DATA_PATH)")
}

func (c *queryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.dir == "" {
		fmt.Fprintln(os.Stderr, "Error: -dir is required")
		return subcommands.ExitUsageError
	}

	cfg, err := c.load(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.prefix != "" {
		cfg.SourcePath = c.prefix
	}

	return execute(ctx, storage.NewDirBlobStore(c.dir), cfg)
}

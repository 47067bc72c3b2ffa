package cli

import (
	"fmt"

	"github.com/rankpulse/rankpulse/pkg/data"
	"github.com/urfave/cli/v2"
)

const queryResultLimitDefault = 10

var (
	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of runs returned",
		Value: queryResultLimitDefault,
	}

	runIDFlag = &cli.StringFlag{
		Name:  "run",
		Usage: "Run id (default: latest run)",
	}

	queryCmd = &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Query persisted evaluation results",
		Subcommands: []*cli.Command{
			{
				Name:    "runs",
				Usage:   "List recorded evaluation runs",
				Aliases: []string{"r"},
				Action:  cmdQueryRuns,
				Flags: []cli.Flag{
					queryLimitFlag,
				},
			},
			{
				Name:    "results",
				Usage:   "List NDCG results for a run",
				Aliases: []string{"n"},
				Action:  cmdQueryResults,
				Flags: []cli.Flag{
					runIDFlag,
				},
			},
			{
				Name:    "state",
				Usage:   "Show local database state (row counts and fetch counters)",
				Aliases: []string{"s"},
				Action:  cmdQueryState,
			},
		},
	}
)

func cmdQueryRuns(c *cli.Context) error {
	app := getConfig(c)

	runs, err := data.ListRuns(app.DB, c.Int(queryLimitFlag.Name))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}

	if err := encode(runs); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func cmdQueryResults(c *cli.Context) error {
	app := getConfig(c)

	runID := c.String(runIDFlag.Name)
	if runID == "" {
		var err error
		runID, err = data.GetLatestRunID(app.DB)
		if err != nil {
			return fmt.Errorf("resolving latest run: %w", err)
		}
	}

	results, err := data.GetResults(app.DB, runID)
	if err != nil {
		return fmt.Errorf("querying results: %w", err)
	}

	if err := encode(results); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

func cmdQueryState(c *cli.Context) error {
	app := getConfig(c)

	state, err := data.GetDataState(app.DB)
	if err != nil {
		return fmt.Errorf("querying state: %w", err)
	}

	if err := encode(state); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	workersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of parallel evaluation workers (overrides config)",
	}

	seedFlag = &cli.Uint64Flag{
		Name:  "seed",
		Usage: "RNG seed for shuffling, sampling, and training (overrides config)",
	}

	ltrOnlyFlag = &cli.BoolFlag{
		Name:  "ltr",
		Usage: "Only evaluate the learning-to-rank baseline",
	}

	runCmd = &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "Train the ranking model and evaluate all baselines on the prepared dataset",
		UsageText: `rankpulse run                   # evaluate every baseline
   rankpulse run --ltr              # only the learning-to-rank baseline
   rankpulse run --workers 8`,
		Action: cmdRun,
		Flags: []cli.Flag{
			workersFlag,
			seedFlag,
			ltrOnlyFlag,
			outFlag,
		},
	}
)

func cmdRun(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return err
	}

	res, err := p.Run(c.Context)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

var allCmd = &cli.Command{
	Name:  "all",
	Usage: "Fetch the dataset, then train and evaluate (fetch failure skips the run)",
	UsageText: `rankpulse all
   rankpulse all --source clicklog.jsonl --metadata metadata.db --workers 8`,
	Action: cmdAll,
	Flags: []cli.Flag{
		sourceFlag,
		urlFlag,
		metadataFlag,
		outFlag,
		maxFlag,
		workersFlag,
		seedFlag,
		ltrOnlyFlag,
	},
}

func cmdAll(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return err
	}

	res, err := p.All(c.Context)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

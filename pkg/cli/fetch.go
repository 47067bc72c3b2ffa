package cli

import (
	"fmt"

	"github.com/rankpulse/rankpulse/pkg/pipeline"
	"github.com/urfave/cli/v2"
)

var (
	sourceFlag = &cli.StringFlag{
		Name:  "source",
		Usage: "Path to the raw click-log file (overrides config)",
	}

	urlFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "URL to download the click log from (overrides config)",
	}

	metadataFlag = &cli.StringFlag{
		Name:  "metadata",
		Usage: "Path to the torrent metadata SQLite database (overrides config)",
	}

	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Output directory for the prepared dataset (overrides config)",
	}

	maxFlag = &cli.IntFlag{
		Name:    "max",
		Aliases: []string{"n"},
		Usage:   "Maximum number of activities to use (0 = all)",
	}

	fetchCmd = &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Acquire the click log and prepare the ranking dataset",
		UsageText: `rankpulse fetch                          # use configured paths
   rankpulse fetch --source clicklog.jsonl --metadata metadata.db
   rankpulse fetch --url https://example.com/clicklog.jsonl --max 10000`,
		Action: cmdFetch,
		Flags: []cli.Flag{
			sourceFlag,
			urlFlag,
			metadataFlag,
			outFlag,
			maxFlag,
		},
	}
)

func cmdFetch(c *cli.Context) error {
	p, err := newPipeline(c)
	if err != nil {
		return err
	}

	res, err := p.Fetch(c.Context)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	if err := encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}

// newPipeline applies command flags over the loaded config and builds
// the pipeline.
func newPipeline(c *cli.Context) (*pipeline.Pipeline, error) {
	app := getConfig(c)
	cfg := app.Cfg

	if v := c.String(sourceFlag.Name); v != "" {
		cfg.ClickLog.Path = v
	}
	if v := c.String(urlFlag.Name); v != "" {
		cfg.ClickLog.URL = v
	}
	if v := c.String(metadataFlag.Name); v != "" {
		cfg.MetadataDB = v
	}
	if v := c.String(outFlag.Name); v != "" {
		cfg.OutputDir = v
	}
	if v := c.Int(maxFlag.Name); v > 0 {
		cfg.MaxActivities = v
	}
	if v := c.Int(workersFlag.Name); v > 0 {
		cfg.Workers = v
	}
	if c.IsSet(seedFlag.Name) {
		cfg.Seed = c.Uint64(seedFlag.Name)
	}

	token, err := getToken()
	if err != nil {
		token = "" // unauthenticated fetch is fine for local files
	}

	return pipeline.New(cfg, app.DB,
		pipeline.WithToken(token),
		pipeline.WithLTROnly(c.Bool(ltrOnlyFlag.Name)),
	)
}

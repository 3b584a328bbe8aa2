package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/alphatrader/alphatrader/internal/backtest"
)

// runAction executes one backtest from a YAML config and a market data file.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	resultsFolder := cmd.String("output")

	configYAML := ""
	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		configYAML = string(content)
	}

	engine := backtest.NewEngine()
	if err := engine.Initialize(configYAML); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}
	defer engine.Close()

	engine.SetDataPath(dataPath)
	engine.SetResultsFolder(resultsFolder)

	report, err := engine.Run(ctx)
	if err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	rendered, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	fmt.Println(string(rendered))

	return nil
}

// schemaAction prints the JSON schema for the run configuration.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	config := backtest.DefaultConfig()

	schema := config.GenerateSchema()

	rendered, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render schema: %w", err)
	}

	fmt.Println(string(rendered))

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Simulate a trading strategy over historical bars",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest and write the trajectory and report",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML run configuration",
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the market data file (csv or parquet)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Folder that receives the run artifacts",
						Value:   "results",
					},
				},
				Action: runAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for the run configuration",
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/samuelfneumann/sflearn/experiment"
	"github.com/samuelfneumann/sflearn/experiment/plot"
	"github.com/samuelfneumann/sflearn/experiment/tracker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "sflearn",
	Short: "Successor feature learning experiments",
	Long: `sflearn trains successor feature Q-learning agents on sequences of
gridworld tasks, transferring successor features between tasks and acting
with generalized policy improvement.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an online transfer experiment",
	Long: `Run trains an agent on each task of an experiment configuration in
order and saves the episodic returns of each task.

Flags may also be set with SFLEARN_ environment variables, for example
SFLEARN_LOG_LEVEL=debug.`,
	RunE: runExperiment,
}

var plotCmd = &cobra.Command{
	Use:   "plot [flags] data.bin...",
	Short: "Plot saved episodic returns",
	Long: `Plot renders the data saved by run, one line per file, as an HTML
line chart.`,
	Args: cobra.MinimumNArgs(1),
	RunE: plotReturns,
}

// settings holds the command line flags and environment variables of
// the run command
var settings = viper.New()

func init() {
	runCmd.Flags().String("config", "", "YAML experiment configuration (defaults are used if empty)")
	runCmd.Flags().String("out", "", "Directory to save data to (overrides the configuration)")
	runCmd.Flags().String("db", "", "SQLite database to record episodes in (overrides the configuration)")
	runCmd.Flags().Uint64("seed", 0, "Random seed (overrides the configuration)")
	runCmd.Flags().Int("episodes", 0, "Episodes per task (overrides the configuration)")
	runCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	runCmd.Flags().Bool("json", false, "Log JSON instead of human readable output")
	runCmd.Flags().Bool("no-progress", false, "Do not display a progress bar")
	runCmd.Flags().Bool("no-color", false, "Do not color terminal output")
	runCmd.Flags().Bool("show-policy", true, "Print the greedy policy of each task after training")

	// Bind flags to viper for environment variable support
	settings.BindPFlags(runCmd.Flags())
	settings.SetEnvPrefix("SFLEARN")
	settings.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settings.AutomaticEnv()

	plotCmd.Flags().StringP("out", "o", "returns.html", "HTML file to write the chart to")
	plotCmd.Flags().Int("window", 10, "Number of episodes to smooth over")
	plotCmd.Flags().String("title", "Episodic return", "Chart title")

	rootCmd.AddCommand(runCmd, plotCmd)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	colors := !settings.GetBool("no-color")
	logger, err := newLogger(settings.GetString("log-level"),
		settings.GetBool("json"), colors, os.Stderr)
	if err != nil {
		return err
	}

	c, err := buildConfig(settings)
	if err != nil {
		return err
	}

	var progress io.Writer
	if !settings.GetBool("no-progress") {
		progress = os.Stdout
	}
	exp, err := experiment.NewOnline(c, logger, progress)
	if err != nil {
		return fmt.Errorf("could not create experiment: %w", err)
	}
	defer exp.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt,
		syscall.SIGTERM)
	defer stop()

	logger.Info().
		Str("run", exp.RunID()).
		Int("tasks", len(c.Tasks)).
		Int("episodes_per_task", c.EpisodesPerTask).
		Msg("starting experiment")

	runErr := exp.Run(ctx)
	if runErr != nil {
		logger.Error().Err(runErr).Msg("experiment stopped early")
	} else if settings.GetBool("show-policy") {
		for task := range c.Tasks {
			policy, err := exp.RenderPolicy(task, colors)
			if err != nil {
				return err
			}
			fmt.Printf("Task %d %v:\n%v", task, c.Tasks[task], policy)
		}
	}

	// Save whatever was tracked, even if the experiment stopped early
	if err := exp.Save(); err != nil {
		return fmt.Errorf("could not save experiment: %w", err)
	}
	return runErr
}

// buildConfig loads the experiment configuration and applies the
// overrides set in v
func buildConfig(v *viper.Viper) (experiment.Config, error) {
	c := experiment.Default()
	if path := v.GetString("config"); path != "" {
		var err error
		if c, err = experiment.LoadConfig(path); err != nil {
			return experiment.Config{}, err
		}
	}

	if out := v.GetString("out"); out != "" {
		c.Out = out
	}
	if db := v.GetString("db"); db != "" {
		c.Database = db
	}
	if seed := v.GetUint64("seed"); seed != 0 {
		c.Seed = seed
	}
	if episodes := v.GetInt("episodes"); episodes > 0 {
		c.EpisodesPerTask = episodes
	}

	if err := c.Validate(); err != nil {
		return experiment.Config{}, fmt.Errorf("invalid configuration: %w",
			err)
	}
	return c, nil
}

func plotReturns(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	window, _ := cmd.Flags().GetInt("window")
	title, _ := cmd.Flags().GetString("title")

	series := make([]plot.Series, len(args))
	for i, filename := range args {
		data, err := tracker.LoadData(filename)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(filename),
			filepath.Ext(filename))
		series[i] = plot.Series{Name: name, Values: data}
	}

	file, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("could not create chart file: %w", err)
	}
	defer file.Close()

	if err := plot.Lines(file, title, window, series...); err != nil {
		return err
	}
	fmt.Printf("Wrote %v\n", out)
	return nil
}

// newLogger returns a logger writing to w at the named level
func newLogger(level string, json, colors bool, w io.Writer) (zerolog.Logger,
	error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level,
			err)
	}

	if !json {
		w = zerolog.ConsoleWriter{Out: w, NoColor: !colors}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

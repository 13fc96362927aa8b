package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"moodlens/adapters/excel"
	"moodlens/app"
	"moodlens/domain/core"
	"moodlens/domain/record"
	"moodlens/internal"
	"moodlens/internal/config"
	"moodlens/internal/container"
	"moodlens/internal/errors"
	"moodlens/internal/filter"
	"moodlens/internal/stats"
	"moodlens/internal/testkit"
	"moodlens/internal/timeseries"
)

// globalOptions are shared by every command that reads the dataset
type globalOptions struct {
	dataFile     string
	profilesFile string
	detailsFile  string
	logLevel     string

	from, to     string
	genders      []string
	ageGroups    []string
	platforms    []string
	mentalStates []string
}

func main() {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:           "moodlens-cli",
		Short:         "Explore the social media and mental health dataset from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.dataFile, "data", "", "Dataset file (.xlsx or .csv); defaults to DATA_FILE")
	pf.StringVar(&opts.profilesFile, "profiles", "", "Cluster profiles file; defaults to PROFILES_FILE")
	pf.StringVar(&opts.detailsFile, "details", "", "Persona details YAML; defaults to PERSONA_DETAILS_FILE")
	pf.StringVar(&opts.logLevel, "log-level", "WARN", "Log level: ERROR|WARN|INFO|DEBUG|TRACE")
	pf.StringVar(&opts.from, "from", "", "First date to include (YYYY-MM-DD)")
	pf.StringVar(&opts.to, "to", "", "Last date to include (YYYY-MM-DD)")
	pf.StringSliceVar(&opts.genders, "gender", nil, "Restrict to genders")
	pf.StringSliceVar(&opts.ageGroups, "age-group", nil, "Restrict to age groups")
	pf.StringSliceVar(&opts.platforms, "platform", nil, "Restrict to platforms")
	pf.StringSliceVar(&opts.mentalStates, "mental-state", nil, "Restrict to mental states")

	rootCmd.AddCommand(
		newSummaryCmd(opts),
		newFrequencyCmd(opts),
		newCorrCmd(opts),
		newTrendCmd(opts),
		newPersonaCmd(opts),
		newGenerateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [fields...]",
		Short: "Describe numeric fields (count, mean, std, quartiles, skew, kurtosis)",
		Long: `Describe numeric fields of the filtered dataset. With no fields, every
numeric field is described.

Example: moodlens-cli summary sleep_hours stress_level --gender Female`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), opts, stats.Request{Kind: stats.KindDistribution, Fields: args})
		},
	}
}

func newFrequencyCmd(opts *globalOptions) *cobra.Command {
	var percentages bool
	cmd := &cobra.Command{
		Use:   "frequency [fields...]",
		Short: "Count categories of one or more fields",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), opts, stats.Request{Kind: stats.KindFrequency, Fields: args, Percentages: percentages})
		},
	}
	cmd.Flags().BoolVar(&percentages, "percent", false, "Include percentages of the filtered rows")
	return cmd
}

func newCorrCmd(opts *globalOptions) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "corr [fields...]",
		Short: "Correlation matrix over numeric fields",
		Long: `Compute a pairwise correlation matrix.

Example: moodlens-cli corr social_media_time_min sleep_hours mood_level --method spearman`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := stats.ParseMethod(method)
			if err != nil {
				return err
			}
			return runStats(cmd.Context(), opts, stats.Request{Kind: stats.KindCorrelation, Fields: args, Method: m})
		},
	}
	cmd.Flags().StringVar(&method, "method", "pearson", "Coefficient: pearson|spearman|kendall")
	return cmd
}

func newTrendCmd(opts *globalOptions) *cobra.Command {
	var granularity, aggregation string
	var rolling int
	var variability bool

	cmd := &cobra.Command{
		Use:   "trend [fields...]",
		Short: "Resample fields over time",
		Long: `Resample numeric fields into daily, weekly or monthly buckets.

Example: moodlens-cli trend stress_level anxiety_level --granularity weekly --rolling 4`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := timeseries.ParseGranularity(granularity)
			if err != nil {
				return err
			}
			a, err := timeseries.ParseAggregation(aggregation)
			if err != nil {
				return err
			}
			spec, err := opts.filter()
			if err != nil {
				return err
			}
			svc, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.Trends(cmd.Context(), app.TrendRequest{
				Filter: spec,
				Fields: args,
				Options: timeseries.Options{
					Granularity:   g,
					Aggregation:   a,
					Variability:   variability,
					RollingWindow: rolling,
				},
			})
			return printResult(res, err)
		},
	}
	cmd.Flags().StringVar(&granularity, "granularity", "daily", "Bucket size: daily|weekly|monthly")
	cmd.Flags().StringVar(&aggregation, "aggregation", "mean", "Bucket reduction: mean|median|sum")
	cmd.Flags().IntVar(&rolling, "rolling", 0, "Rolling mean window in buckets (0 disables)")
	cmd.Flags().BoolVar(&variability, "variability", false, "Include per-bucket standard deviation")
	return cmd
}

func newPersonaCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "persona [cluster]",
		Short: "List personas, or show one cluster's projected record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				return printJSON(svc.Personas())
			}
			cluster, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("cluster must be an integer: %w", err)
			}
			p, err := svc.Persona(cluster)
			if err != nil {
				return err
			}
			return printJSON(p)
		},
	}
}

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultRecordConfig()
	var out, start string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic dataset in the source layout",
		Long: `Generate synthetic records and write them as .xlsx or .csv, loadable by the
server and by migrate seed.

Example: moodlens-cli generate --out ./data/sample.xlsx --count 500 --seed 7`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if start != "" {
				t, err := core.ParseDate(start)
				if err != nil {
					return err
				}
				cfg.StartDate = t
			}
			records := testkit.NewRecordGenerator(cfg).Generate()
			if err := excel.NewRecordFile(out, internal.NewNopLogger()).SaveRecords(cmd.Context(), records); err != nil {
				return err
			}
			fmt.Printf("Wrote %d records to %s\n", len(records), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "./data/generated.xlsx", "Output file (.xlsx or .csv)")
	cmd.Flags().IntVar(&cfg.Count, "count", cfg.Count, "Number of records")
	cmd.Flags().IntVar(&cfg.Days, "days", cfg.Days, "Spread dates over this many days")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed for deterministic output")
	cmd.Flags().StringVar(&start, "start", "", "First date (YYYY-MM-DD)")
	return cmd
}

func runStats(ctx context.Context, opts *globalOptions, req stats.Request) error {
	spec, err := opts.filter()
	if err != nil {
		return err
	}
	svc, err := opts.load(ctx)
	if err != nil {
		return err
	}
	res, err := svc.Stats(ctx, app.StatsRequest{Filter: spec, Request: req})
	return printResult(res, err)
}

// load reads configuration, applies flag overrides and loads the dataset
func (o *globalOptions) load(ctx context.Context) (*app.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if o.dataFile != "" {
		cfg.Data.Source = "file"
		cfg.Data.File = o.dataFile
	}
	if o.profilesFile != "" {
		cfg.Data.ProfilesFile = o.profilesFile
	}
	if o.detailsFile != "" {
		cfg.Data.PersonaDetailsFile = o.detailsFile
	}

	logger := internal.NewLogger(internal.ParseLogLevel(o.logLevel))
	c, err := container.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := c.Load(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c.Service, nil
}

func (o *globalOptions) filter() (filter.Spec, error) {
	var spec filter.Spec
	if o.from != "" {
		t, err := core.ParseDate(o.from)
		if err != nil {
			return spec, fmt.Errorf("--from: %w", err)
		}
		d := core.Date(t)
		spec.Dates.Start = &d
	}
	if o.to != "" {
		t, err := core.ParseDate(o.to)
		if err != nil {
			return spec, fmt.Errorf("--to: %w", err)
		}
		d := core.Date(t)
		spec.Dates.End = &d
	}
	spec.Genders = convert[record.Gender](o.genders)
	spec.AgeGroups = convert[record.AgeGroup](o.ageGroups)
	spec.Platforms = convert[record.Platform](o.platforms)
	spec.MentalStates = convert[record.MentalState](o.mentalStates)
	return spec, spec.Validate()
}

func convert[T ~string](values []string) []T {
	if len(values) == 0 {
		return nil
	}
	out := make([]T, len(values))
	for i, v := range values {
		out[i] = T(v)
	}
	return out
}

// printResult prints res, treating insufficient data as an empty answer
func printResult(res interface{}, err error) error {
	if err != nil {
		if errors.GetCode(err) == errors.CodeInsufficientData {
			fmt.Fprintf(os.Stderr, "No data for this selection: %v\n", err)
			return printJSON(res)
		}
		return err
	}
	return printJSON(res)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}


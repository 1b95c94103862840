package main

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rgehrsitz/ratesim/internal/compare"
	"github.com/rgehrsitz/ratesim/internal/config"
	"github.com/rgehrsitz/ratesim/internal/domain"
	"github.com/rgehrsitz/ratesim/internal/output"
	"github.com/rgehrsitz/ratesim/internal/web"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Compute premiums, subsidies and net premiums for a selection",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		incomes, err := incomeFlag(cmd)
		if err != nil {
			return err
		}
		filter := domain.RateFilter{
			States:        stringsFlag(cmd, "state"),
			RatingAreas:   stringsFlag(cmd, "area"),
			Ages:          stringsFlag(cmd, "age"),
			MetalLevels:   metalFlag(cmd),
			CSRVariations: stringsFlag(cmd, "csr"),
			Incomes:       incomes,
		}

		table, err := a.svc.QueryRates(cmd.Context(), filter)
		if err != nil {
			return err
		}
		return writeReport(cmd, &output.Report{Title: "Premium and subsidy what-if", Table: table})
	},
}

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the rate change matrix of a state and rating area",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		matrix, err := a.svc.GetRateChangeMatrix(cmd.Context(), stringsFlag(cmd, "state"), stringsFlag(cmd, "area"))
		if err != nil {
			return err
		}
		return writeReport(cmd, &output.Report{Title: "Rate changes", Matrix: matrix})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit [edits-file]",
	Short: "Store the rate changes of an edits file (YAML or JSON) for a state and rating area",
	Long: `Store an edited rate change matrix. The file maps insurer names to metal levels
and percentages, for example:

  Acme Health:
    Silver: 4.5
    Gold: -1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		edits, err := config.NewInputParser().LoadEditsFromFile(args[0])
		if err != nil {
			return err
		}

		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		states, areas := stringsFlag(cmd, "state"), stringsFlag(cmd, "area")
		if err := a.svc.SubmitRateChangeEdits(cmd.Context(), edits, states, areas); err != nil {
			return err
		}
		matrix, err := a.svc.GetRateChangeMatrix(cmd.Context(), states, areas)
		if err != nil {
			return err
		}
		return writeReport(cmd, &output.Report{Title: "Rate changes saved", Matrix: matrix})
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact",
	Short: "Summarize how the rate changes move average premiums per insurer and metal level",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		incomes, err := incomeFlag(cmd)
		if err != nil {
			return err
		}
		options := compare.CompareOptions{
			States:      stringsFlag(cmd, "state"),
			RatingAreas: stringsFlag(cmd, "area"),
			MetalLevels: metalFlag(cmd),
			Incomes:     incomes,
			ConfigPath:  cfgFile,
		}

		engine := compare.NewCompareEngine(a.svc)
		var set *compare.ImpactSet
		if editsFile, _ := cmd.Flags().GetString("edits"); editsFile != "" {
			edits, err := config.NewInputParser().LoadEditsFromFile(editsFile)
			if err != nil {
				return err
			}
			set, err = engine.Preview(cmd.Context(), edits, options)
			if err != nil {
				return err
			}
		} else if set, err = engine.Compare(cmd.Context(), options); err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		var out string
		switch format {
		case "table", "console":
			out = (&compare.TableFormatter{}).Format(set)
		case "compact":
			out = (&compare.TableFormatter{}).FormatCompact(set) + "\n"
		case "csv":
			out, err = (&compare.CSVFormatter{}).Format(set)
		case "json":
			out, err = (&compare.JSONFormatter{Pretty: true}).Format(set)
			out += "\n"
		default:
			return fmt.Errorf("unsupported format %q (valid: table, compact, csv, json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return web.NewServer(a.svc, logger).Run(cmd.Context(), a.config.Server.Addr)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate a scenario file and check that its data files exist",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := cfgFile
		if len(args) == 1 {
			inputFile = args[0]
		}

		cfg, err := config.Load(inputFile, viper.GetViper())
		if err != nil {
			return err
		}
		for _, path := range []string{cfg.Data.RatePUF, cfg.Data.PlanAttributesPUF} {
			if !fileExists(path) {
				return fmt.Errorf("data file %s does not exist", path)
			}
		}

		name := inputFile
		if name == "" {
			name = "Configuration"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid (%s store, %d rate changes)\n", name, cfg.Store.Driver, len(cfg.RateChanges))
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{queryCmd, matrixCmd, editCmd, impactCmd} {
		cmd.Flags().StringSlice("state", nil, "state codes (repeatable; default all, edits use the first)")
		cmd.Flags().StringSlice("area", nil, "rating area IDs (repeatable; default all, edits use the first)")
	}
	for _, cmd := range []*cobra.Command{queryCmd, impactCmd} {
		cmd.Flags().StringSlice("metal", nil, "metal levels to keep (repeatable)")
		cmd.Flags().StringSlice("income", nil, "income levels as multiples of the poverty level, e.g. 2.5 (repeatable)")
	}

	formats := strings.Join(output.AvailableFormatterNames(), ", ")
	for _, cmd := range []*cobra.Command{queryCmd, matrixCmd, editCmd} {
		cmd.Flags().StringP("format", "f", "console", "Output format ("+formats+")")
		cmd.Flags().Bool("save", false, "write the report to a timestamped file instead of stdout")
	}

	queryCmd.Flags().StringSlice("age", nil, "ages to keep (repeatable)")
	queryCmd.Flags().StringSlice("csr", nil, "CSR variation types to keep (repeatable)")

	impactCmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	impactCmd.Flags().String("edits", "", "preview an edits file on top of the stored rate changes without saving it")

	serveCmd.Flags().String("addr", "", "listen address (default "+config.DefaultServerAddr+")")
	_ = viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
}

// writeReport prints the report in the --format format, or saves it with --save.
// PDF reports are always saved.
func writeReport(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unsupported format %q (valid: %s)", format, strings.Join(output.AvailableFormatterNames(), ", "))
	}

	if save, _ := cmd.Flags().GetBool("save"); save || f.Name() == "pdf" {
		ext := f.Name()
		if ext == "console" {
			ext = "txt"
		}
		filename, err := output.WriteFormatted(f, report, ext)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", filename)
		return nil
	}

	data, err := f.Format(report)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func stringsFlag(cmd *cobra.Command, name string) []string {
	values, _ := cmd.Flags().GetStringSlice(name)
	return values
}

func metalFlag(cmd *cobra.Command) []domain.MetalLevel {
	var levels []domain.MetalLevel
	for _, v := range stringsFlag(cmd, "metal") {
		levels = append(levels, domain.MetalLevel(v))
	}
	return levels
}

func incomeFlag(cmd *cobra.Command) ([]decimal.Decimal, error) {
	var incomes []decimal.Decimal
	for _, v := range stringsFlag(cmd, "income") {
		income, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid --income %q: %w", v, err)
		}
		incomes = append(incomes, income)
	}
	return incomes, nil
}

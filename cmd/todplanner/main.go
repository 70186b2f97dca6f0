package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ChicagoDave/todplanner/internal/config"
	"github.com/ChicagoDave/todplanner/internal/server"
)

var (
	cfg        *config.Config
	cityPreset string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "todplanner",
		Short: "Transit-oriented development scoring and land-use engine",
		Long: "Scores a city grid by proximity to transit stations, blends the result with walkability, " +
			"allocates green, residential and commercial land use, and estimates coverage and impact.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load()
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			cfg = c

			if err := config.InitLogger(cfg.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = zap.L().Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&cityPreset, "city", "",
		"analyse a built-in city preset instead of a project directory")

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(coverageCmd())
	rootCmd.AddCommand(allocateCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(serveCmd())
	return rootCmd
}

func analyzeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze [project-path]",
		Short: "Run a full analysis and print the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, projectArg(args), format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json or text")
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate an analysis spec and its station data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, projectArg(args))
		},
	}
}

func scoreCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "score [project-path]",
		Short: "Score a single point and explain the result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd, projectArg(args), lat, lon)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.MarkFlagRequired("lat")
	cmd.MarkFlagRequired("lon")
	return cmd
}

func coverageCmd() *cobra.Command {
	var radius float64

	cmd := &cobra.Command{
		Use:   "coverage [project-path]",
		Short: "Estimate the share of the city within a station buffer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd, projectArg(args), radius)
		},
	}
	cmd.Flags().Float64Var(&radius, "radius", 0, "buffer radius in meters (default from spec)")
	return cmd
}

func allocateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "allocate [project-path]",
		Short: "Allocate land use from walkability alone",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocate(cmd, projectArg(args))
		},
	}
}

func exportCmd() *cobra.Command {
	var geojsonPath, xlsxPath string

	cmd := &cobra.Command{
		Use:   "export [project-path]",
		Short: "Run an analysis and write GeoJSON and/or XLSX files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, projectArg(args), geojsonPath, xlsxPath)
		},
	}
	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "write the cell grid as GeoJSON to this path")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "write the result workbook to this path")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the HTTP API",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := loadSpec(projectArg(args))
			if err != nil {
				return err
			}
			srvCfg := cfg.Server
			if port != 0 {
				srvCfg.Port = port
			}
			return server.New(s, srvCfg, cfg.Analysis.Workers).Start(ctx)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (default from config)")
	return cmd
}

// projectArg returns the positional project path, falling back to the
// configured default.
func projectArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	if cfg != nil && cfg.Analysis.Project != "" {
		return cfg.Analysis.Project
	}
	return "."
}

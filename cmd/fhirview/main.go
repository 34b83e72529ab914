package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/fhirview/internal/config"
	"github.com/reoring/fhirview/r4"
	"github.com/reoring/fhirview/schema"
	_ "github.com/reoring/fhirview/source"
)

// errFailed signals a reported failure (issues already printed).
var errFailed = errors.New("failed")

type app struct {
	cfg *config.Config
	log zerolog.Logger
	reg *schema.Registry
	out *printer
	in  io.Reader

	configFile string
	schemaFile string
	logLevel   string
	logFormat  string
	colorMode  string
}

func main() {
	root := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(in io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{in: in}
	rootCmd := &cobra.Command{
		Use:           "fhirview",
		Short:         "Inspect, validate and edit FHIR resources against a schema table",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, stdout, stderr)
		},
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	f := rootCmd.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (yaml, json or toml)")
	f.StringVar(&a.schemaFile, "schema", "", "schema table to use instead of the built-in R4 table")
	f.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	f.StringVar(&a.logFormat, "log-format", "", "log format (console or json)")
	f.StringVar(&a.colorMode, "color", "", "colorize output (auto, always, never)")

	rootCmd.AddCommand(a.validateCmd())
	rootCmd.AddCommand(a.getCmd())
	rootCmd.AddCommand(a.buildCmd())
	rootCmd.AddCommand(a.patchCmd())
	rootCmd.AddCommand(a.diffCmd())
	rootCmd.AddCommand(a.schemaCmd())
	rootCmd.AddCommand(a.typesCmd())
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = a.logFormat
	}
	if flags.Changed("color") {
		cfg.Color = a.colorMode
	}
	if flags.Changed("schema") {
		cfg.SchemaFile = a.schemaFile
	}
	cfg.Apply()
	a.cfg = cfg
	a.log = cfg.Logger(stderr)
	a.out = newPrinter(stdout, cfg.Color)

	if cfg.SchemaFile != "" {
		data, err := os.ReadFile(cfg.SchemaFile)
		if err != nil {
			return fmt.Errorf("read schema: %w", err)
		}
		a.reg, err = schema.LoadYAML(data, schema.WithLogger(a.log))
		if err != nil {
			a.out.issues(cfg.SchemaFile, err)
			return errFailed
		}
	} else {
		a.reg, err = r4.Load(schema.WithLogger(a.log))
		if err != nil {
			return fmt.Errorf("load r4 table: %w", err)
		}
	}
	a.log.Debug().Int("types", len(a.reg.Names())).Str("schema", cfg.SchemaFile).Msg("registry ready")
	return nil
}

// Command ecsgen generates an entity container, event types and a system
// dispatcher from an ECS schema file.
//
//	//go:generate go run github.com/l1jgo/ecsgen/cmd/ecsgen generate world.ecs
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/ecsgen/internal/config"
	"github.com/l1jgo/ecsgen/internal/gen"
	"github.com/l1jgo/ecsgen/internal/loader"
	"github.com/l1jgo/ecsgen/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// app holds what every command needs after flags and config are resolved.
type app struct {
	configPath string
	logLevel   string
	profile    string

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ecsgen",
		Short:         "Generate ECS code from a schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $"+config.EnvPath+" or "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logging.level")
	root.PersistentFlags().StringVar(&a.profile, "profile", "", "profile the run: cpu, mem or trace")

	root.AddCommand(a.generateCmd(), a.checkCmd(), namesCmd())
	return root
}

func (a *app) init() error {
	path, explicit := config.Path(a.configPath)
	cfg, err := config.Load(path, !explicit)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.profile != "" {
		cfg.Profile.Mode = a.profile
	}
	a.cfg = cfg

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.log = log
	return nil
}

// startProfile starts the configured profiler. The returned func stops it.
func (a *app) startProfile() (func(), error) {
	var mode func(*profile.Profile)
	switch a.cfg.Profile.Mode {
	case "":
		return func() {}, nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfileAllocs
	case "trace":
		mode = profile.TraceProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q", a.cfg.Profile.Mode)
	}
	p := profile.Start(mode, profile.ProfilePath(a.cfg.Profile.Path), profile.NoShutdownHook, profile.Quiet)
	return p.Stop, nil
}

func (a *app) generateCmd() *cobra.Command {
	var (
		pkg, out, runtime, header string
		single                    bool
	)
	cmd := &cobra.Command{
		Use:   "generate [schema]",
		Short: "Write the generated Go files for a schema",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g := a.cfg.Generate
			if len(args) == 1 {
				g.Schema = args[0]
			}
			flags := cmd.Flags()
			if flags.Changed("package") {
				g.Package = pkg
			}
			if flags.Changed("out") {
				g.OutputDir = out
			}
			if flags.Changed("runtime") {
				g.RuntimeImport = runtime
			}
			if flags.Changed("header") {
				g.Header = header
			}
			if flags.Changed("single-file") {
				g.SingleFile = single
			}

			stop, err := a.startProfile()
			if err != nil {
				return err
			}
			defer stop()
			return a.generate(cmd, g)
		},
	}
	cmd.Flags().StringVarP(&pkg, "package", "p", "", "package name (default: output dir name)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output dir (default: the schema's dir)")
	cmd.Flags().StringVar(&runtime, "runtime", "", "import path of the ecs runtime")
	cmd.Flags().StringVar(&header, "header", "", "comment placed at the top of every file")
	cmd.Flags().BoolVar(&single, "single-file", false, "write everything to "+gen.FileSingle)
	return cmd
}

func (a *app) generate(cmd *cobra.Command, g config.GenerateConfig) error {
	s, err := loader.New(a.log).LoadFile(g.Schema)
	if err != nil {
		return schemaError(g.Schema, err)
	}

	outDir := g.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(g.Schema)
	}
	pkg := g.Package
	if pkg == "" {
		abs, err := filepath.Abs(outDir)
		if err != nil {
			return fmt.Errorf("resolve output dir: %w", err)
		}
		pkg = filepath.Base(abs)
	}

	artifacts, err := gen.New(gen.Options{
		Package:       pkg,
		RuntimeImport: g.RuntimeImport,
		SingleFile:    g.SingleFile,
		Header:        g.Header,
		Source:        g.Schema,
	}, a.log).Generate(s)
	if err != nil {
		var ferr *gen.FormatError
		if errors.As(err, &ferr) {
			bad := filepath.Join(outDir, ferr.File+".bad")
			if werr := os.WriteFile(bad, ferr.Source, 0o644); werr == nil {
				a.log.Warn("wrote unformatted source", zap.String("file", bad))
			}
		}
		return schemaError(g.Schema, err)
	}

	written, err := artifacts.Write(outDir)
	if err != nil {
		return err
	}
	for _, p := range written {
		a.log.Info("wrote", zap.String("file", p))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "generated %d files for package %s in %s\n", len(written), pkg, outDir)
	return nil
}

func (a *app) checkCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "check [schema]",
		Short: "Validate a schema without writing anything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Generate.Schema
			if len(args) == 1 {
				path = args[0]
			}
			l := loader.New(a.log)
			decls, err := l.ReadFile(path)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if verbose {
				for _, d := range decls {
					fmt.Fprintf(w, "%s: %s\n", d.Pos, d)
				}
			}
			s, err := schema.Build(decls)
			if err != nil {
				return schemaError(path, err)
			}
			// names are only checked by the generator
			if _, err := gen.Generate(s, gen.Options{Package: "check"}); err != nil {
				return schemaError(path, err)
			}
			fmt.Fprintf(w, "%s: ok (%d components, %d events, %d systems, %d constructors)\n",
				path, len(s.Components), len(s.Events), len(s.Systems), len(s.Constructors))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every declaration")
	return cmd
}

func namesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names <Type>...",
		Short: "Print the identifiers generated for component types",
		Args:  cobra.MinimumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, typ := range args {
				c := gen.ComponentNames(typ)
				fmt.Fprintf(w, "%s\n  field      %s\n  collection %s\n  entity     %s / %s\n  entities   %s %s\n",
					c.Type, c.Field, c.Collection, c.GoField, c.Builder, c.GoCollection, c.Alias)
			}
			return nil
		},
	}
}

// schemaError lists every validation problem on its own line.
func schemaError(path string, err error) error {
	errs := schema.Errors(err)
	if len(errs) <= 1 {
		return fmt.Errorf("%s: %w", path, err)
	}
	return &problems{path: path, errs: errs}
}

type problems struct {
	path string
	errs []*schema.Error
}

func (p *problems) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d problems", p.path, len(p.errs))
	for _, e := range p.errs {
		b.WriteString("\n  ")
		b.WriteString(e.Error())
	}
	return b.String()
}

func (p *problems) Unwrap() []error {
	out := make([]error, len(p.errs))
	for i, e := range p.errs {
		out[i] = e
	}
	return out
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

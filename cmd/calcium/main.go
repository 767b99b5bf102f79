package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/calcium-lang/calcium/pkg/calcium"
)

var (
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Config holds the CLI configuration.
type Config struct {
	Debug      bool
	Strict     bool
	Precision  uint
	Angle      string
	ConfigFile string
	Rules      []string
}

func main() {
	var cfg Config

	rootCmd := &cobra.Command{
		Use:   "calcium",
		Short: "Symbolic computation kernel",
		Long: `Calcium is a symbolic-computation kernel: it canonicalizes
mathematical expressions, rewrites them with pattern rules, and expands
products and powers over exact rational arithmetic.`,
		Example: `  # Expand a power
  calcium expand "(a+b)^3"

  # Rewrite with a rule
  calcium rewrite --rule "f(x) -> g(x)" "f(f(a))"

  # Evaluate numerically at 50 digits
  calcium eval --precision 50 "pi/4"`,
	}

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&cfg.Strict, "strict", false, "Enable strict validation")
	rootCmd.PersistentFlags().UintVar(&cfg.Precision, "precision", 0, "Decimal precision (0 = configured default)")
	rootCmd.PersistentFlags().StringVar(&cfg.Angle, "angle", "", "Angular unit: radians, degrees, gradians, turns")
	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFile, "config", "calcium.toml", "Path to configuration file")

	rootCmd.AddCommand(expandCmd(&cfg), rewriteCmd(&cfg), evalCmd(&cfg))

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, errorStyle.Render(err.Error()))
		}),
	); err != nil {
		os.Exit(1)
	}
}

// newContext builds an engine context from the config file, the
// environment, and any explicit flags, in that order.
func newContext(cfg *Config) (*calcium.Context, error) {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	fileCfg, err := calcium.LoadConfig(cfg.ConfigFile)
	if err != nil {
		return nil, err
	}
	if cfg.Precision != 0 {
		fileCfg.Precision = cfg.Precision
	}
	if cfg.Strict {
		fileCfg.Strict = true
	}
	if cfg.Angle != "" {
		fileCfg.Angle = cfg.Angle
	}
	slog.Debug("engine configuration",
		"precision", fileCfg.Precision,
		"strict", fileCfg.Strict,
		"angle", fileCfg.Angle)
	return fileCfg.Context(), nil
}

func printResult(cfg *Config, e calcium.Expr) {
	if cfg.Debug {
		slog.Debug("result tree", "dump", pretty.Sprint(e))
	}
	if !e.IsValid() {
		fmt.Println(errorStyle.Render(calcium.Serialize(e)))
		return
	}
	fmt.Println(resultStyle.Render(calcium.Serialize(e)))
}

func expandCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "expand <expression>",
		Short: "Algebraically expand an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cfg)
			if err != nil {
				return err
			}
			e, err := ctx.Parse(args[0])
			if err != nil {
				return err
			}
			printResult(cfg, ctx.ExpandAll(e))
			return nil
		},
	}
}

func rewriteCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite --rule \"lhs -> rhs\" <expression>",
		Short: "Rewrite an expression with pattern rules",
		Long: `Rewrite applies the given rules to the whole expression tree,
bottom-up, until no rule matches. Rules use ordinary identifiers as
pattern variables and may carry a condition: "x/x -> 1 ; Greater(x, 0)".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(cfg.Rules) == 0 {
				return fmt.Errorf("at least one --rule is required")
			}
			ctx, err := newContext(cfg)
			if err != nil {
				return err
			}
			rules, err := ctx.CompileRuleSet(cfg.Rules...)
			if err != nil {
				return err
			}
			e, err := ctx.Parse(args[0])
			if err != nil {
				return err
			}
			printResult(cfg, ctx.ReplaceAll(rules, e))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&cfg.Rules, "rule", nil, "Rewrite rule \"pattern -> replacement [; condition]\" (repeatable)")
	return cmd
}

func evalCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "eval <expression>",
		Short: "Reduce an expression to a numeric value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := newContext(cfg)
			if err != nil {
				return err
			}
			e, err := ctx.Parse(args[0])
			if err != nil {
				return err
			}
			v, ok := ctx.NumericValue(e)
			if !ok {
				printResult(cfg, e)
				return nil
			}
			fmt.Println(resultStyle.Render(v.String()))
			return nil
		},
	}
}

// Package cli implements the searchdash command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/searchdash/internal/app"
)

// Command and flag names.
const (
	CmdModules = "modules"
	CmdVersion = "version"

	FlagSearch         = "search"
	FlagModule         = "module"
	FlagPlaceholder    = "placeholder"
	FlagAlphabet       = "alphabet"
	FlagMaxVariants    = "max-variants"
	FlagProviders      = "providers"
	FlagMax            = "max"
	FlagRateLimit      = "rate-limit"
	FlagConnectTimeout = "connect-timeout"
	FlagTimeout        = "timeout"
	FlagSequential     = "sequential"
	FlagAttempts       = "attempts"
	FlagUserAgent      = "user-agent"
	FlagSearxURL       = "searx.url"
	FlagSearxKey       = "searx.key"
	FlagLLMBase        = "llm.base"
	FlagLLMModel       = "llm.model"
	FlagLLMKey         = "llm.key"
	FlagFormat         = "format"
	FlagOutput         = "output"
	FlagConfig         = "config"
	FlagEnv            = "env"
	FlagVerbose        = "verbose"
)

// options receives flag values. Only flags the user actually set are copied
// into the resolved configuration.
type options struct {
	cfg        app.Config
	configPath string
	envFiles   []string
}

// NewRootCommand builds the searchdash command tree writing results to out
// and logs plus failure causes to errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	return newRootCommand(out, errOut, &options{cfg: app.DefaultConfig()})
}

func newRootCommand(out, errOut io.Writer, opts *options) *cobra.Command {

	root := &cobra.Command{
		Use:   "searchdash [flags] [query...]",
		Short: "Search several engines at once, expanding placeholder variants",
		Long: `searchdash sends one query to several search providers concurrently and
prints their results side by side.

When the query contains the placeholder character (default "-") it is run
once per variant: with the default dashsub module "web-scraping" searches
"webascraping", "webbscraping" ... "webzscraping".

EXAMPLES:
  searchdash "golang rate limiter"
  searchdash -s web-scraping --providers duckduckgo
  searchdash -m search -s web-scraping          # literal dashes
  searchdash -m llm --llm.model gpt-4o-mini -s "best - for go"
  searchdash --format markdown -o results.md chicken-recipe`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			setupLogging(errOut, cfg.Verbose)
			a, err := app.New(cfg, out, errOut)
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context())
			return err
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.Flags()
	f.StringVarP(&opts.cfg.Query, FlagSearch, "s", "", "Search string; placeholders expand into variants")
	f.StringVarP(&opts.cfg.Module, FlagModule, "m", opts.cfg.Module, "Variant module (see `searchdash modules`)")
	f.StringVar(&opts.cfg.Placeholder, FlagPlaceholder, opts.cfg.Placeholder, "Placeholder character replaced in variants")
	f.StringVar(&opts.cfg.Alphabet, FlagAlphabet, "", "Substitution symbols for dashsub (default a..z)")
	f.IntVar(&opts.cfg.MaxVariants, FlagMaxVariants, 0, "Upper bound on variants from the llm module (0 = module default)")
	f.StringSliceVar(&opts.cfg.Providers, FlagProviders, opts.cfg.Providers, "Providers in output order: duckduckgo, startpage, searxng")
	f.IntVar(&opts.cfg.MaxResults, FlagMax, opts.cfg.MaxResults, "Maximum results per provider")
	f.DurationVar(&opts.cfg.RateLimit, FlagRateLimit, opts.cfg.RateLimit, "Minimum spacing between requests to one provider (negative disables)")
	f.DurationVar(&opts.cfg.ConnectTimeout, FlagConnectTimeout, opts.cfg.ConnectTimeout, "Per-provider request timeout")
	f.DurationVar(&opts.cfg.OverallTimeout, FlagTimeout, opts.cfg.OverallTimeout, "Deadline for one run across all providers")
	f.BoolVar(&opts.cfg.Sequential, FlagSequential, false, "Query providers one after another")
	f.IntVar(&opts.cfg.MaxAttempts, FlagAttempts, opts.cfg.MaxAttempts, "HTTP attempts per request (1 disables retry)")
	f.StringVar(&opts.cfg.UserAgent, FlagUserAgent, "", "User-Agent sent to providers")
	f.StringVar(&opts.cfg.SearxURL, FlagSearxURL, "", "SearxNG base URL (enables the searxng provider)")
	f.StringVar(&opts.cfg.SearxKey, FlagSearxKey, "", "SearxNG API key")
	f.StringVar(&opts.cfg.LLMBaseURL, FlagLLMBase, "", "OpenAI-compatible base URL for the llm module")
	f.StringVar(&opts.cfg.LLMModel, FlagLLMModel, "", "Model name for the llm module")
	f.StringVar(&opts.cfg.LLMAPIKey, FlagLLMKey, "", "API key for the llm module")
	f.StringVarP(&opts.cfg.Format, FlagFormat, "f", opts.cfg.Format, "Output format: text, json, markdown, pdf")
	f.StringVarP(&opts.cfg.OutputPath, FlagOutput, "o", "", "Write output to a file instead of stdout (required for pdf)")
	f.StringVar(&opts.configPath, FlagConfig, "", "YAML or JSON config file")
	f.StringSliceVar(&opts.envFiles, FlagEnv, []string{".env"}, "Dotenv files loaded before reading the environment")
	f.BoolVarP(&opts.cfg.Verbose, FlagVerbose, "v", false, "Debug logging")

	root.AddCommand(newModulesCommand(), newVersionCommand())
	return root
}

// resolveConfig layers defaults, config file, environment and explicitly set
// flags, in increasing precedence.
func resolveConfig(cmd *cobra.Command, opts *options, args []string) (app.Config, error) {
	flags := cmd.Flags()
	if len(args) > 0 && flags.Changed(FlagSearch) {
		return app.Config{}, errors.New("give the query either with --search or as arguments, not both")
	}

	if err := app.LoadEnvFiles(opts.envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env: %w", err)
	}
	cfg := app.DefaultConfig()
	if opts.configPath != "" {
		fc, err := app.LoadConfigFile(opts.configPath)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config %s: %w", opts.configPath, err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	set := opts.cfg
	apply := func(name string, fn func()) {
		if flags.Changed(name) {
			fn()
		}
	}
	apply(FlagSearch, func() { cfg.Query = set.Query })
	apply(FlagModule, func() { cfg.Module = set.Module })
	apply(FlagPlaceholder, func() { cfg.Placeholder = set.Placeholder })
	apply(FlagAlphabet, func() { cfg.Alphabet = set.Alphabet })
	apply(FlagMaxVariants, func() { cfg.MaxVariants = set.MaxVariants })
	apply(FlagProviders, func() { cfg.Providers = append([]string(nil), set.Providers...) })
	apply(FlagMax, func() { cfg.MaxResults = set.MaxResults })
	apply(FlagRateLimit, func() { cfg.RateLimit = set.RateLimit })
	apply(FlagConnectTimeout, func() { cfg.ConnectTimeout = set.ConnectTimeout })
	apply(FlagTimeout, func() { cfg.OverallTimeout = set.OverallTimeout })
	apply(FlagSequential, func() { cfg.Sequential = set.Sequential })
	apply(FlagAttempts, func() { cfg.MaxAttempts = set.MaxAttempts })
	apply(FlagUserAgent, func() { cfg.UserAgent = set.UserAgent })
	apply(FlagSearxURL, func() { cfg.SearxURL = set.SearxURL })
	apply(FlagSearxKey, func() { cfg.SearxKey = set.SearxKey })
	apply(FlagLLMBase, func() { cfg.LLMBaseURL = set.LLMBaseURL })
	apply(FlagLLMModel, func() { cfg.LLMModel = set.LLMModel })
	apply(FlagLLMKey, func() { cfg.LLMAPIKey = set.LLMAPIKey })
	apply(FlagFormat, func() { cfg.Format = set.Format })
	apply(FlagOutput, func() { cfg.OutputPath = set.OutputPath })
	apply(FlagVerbose, func() { cfg.Verbose = set.Verbose })

	if len(args) > 0 {
		cfg.Query = strings.Join(args, " ")
	}
	// A configured SearxNG instance joins the default provider set.
	if cfg.SearxURL != "" && !flags.Changed(FlagProviders) && slices.Equal(cfg.Providers, app.DefaultProviders) {
		cfg.Providers = append(cfg.Providers, "searxng")
	}
	return cfg, nil
}

func setupLogging(w io.Writer, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	setupLogging(os.Stderr, false)
	return NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	seek "github.com/TFMV/seek/internal/search"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	version = "0.2.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seek [options] <root> <pattern>",
	Short: "Find files and directories whose name contains a substring",
	Long: `seek searches a directory tree concurrently for entries whose name
contains the given pattern. Every directory is expanded in parallel and the
result is printed once the whole tree has been examined.

Examples:
  seek /src Go
  seek --ignore-case --format=json ~/projects readme
  seek --follow-symlinks --workers=8 /var/log .gz
  seek --strict --relative . _test.go`,
	Version:      version,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeek(cmd, args[0], args[1])
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.seek.yaml)")

	// Flags
	rootCmd.Flags().IntP("workers", "w", seek.DefaultMaxInFlight, "Maximum concurrent directory listings")
	rootCmd.Flags().Bool("unbounded", false, "Do not cap concurrent directory listings")
	rootCmd.Flags().Bool("follow-symlinks", false, "Descend into symbolic links to directories")
	rootCmd.Flags().BoolP("ignore-case", "i", false, "Match names case-insensitively")
	rootCmd.Flags().Bool("normalize", false, "Apply Unicode NFC normalization before matching")
	rootCmd.Flags().String("format", "text", "Output format (text|json|yaml)")
	rootCmd.Flags().Bool("unsorted", false, "Print matches in discovery order")
	rootCmd.Flags().Bool("relative", false, "Print paths relative to the root")
	rootCmd.Flags().String("color", "auto", "Highlight the pattern in text output (auto|always|never)")
	rootCmd.Flags().Bool("progress", false, "Show progress updates on stderr")
	rootCmd.Flags().Bool("strict", false, "Exit with an error when directories could not be read")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.Flags().Bool("silent", false, "Disable all logging except errors")

	// Bind flags to viper
	for _, name := range []string{
		"workers", "unbounded", "follow-symlinks", "ignore-case", "normalize",
		"format", "unsorted", "relative", "color", "progress", "strict",
		"verbose", "silent",
	} {
		viper.BindPFlag(name, rootCmd.Flags().Lookup(name))
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".seek" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".seek")
	}

	viper.SetEnvPrefix("seek")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func runSeek(cmd *cobra.Command, root, pattern string) error {
	workers := viper.GetInt("workers")
	unbounded := viper.GetBool("unbounded")
	if workers < 1 && !unbounded {
		return fmt.Errorf("invalid workers value: %d", workers)
	}

	out, err := newOutputOptions(
		viper.GetString("format"),
		viper.GetString("color"),
		viper.GetBool("relative"),
		cmd.OutOrStdout(),
	)
	if err != nil {
		return err
	}

	opts := seek.Options{
		MatchOptions: seek.MatchOptions{
			IgnoreCase: viper.GetBool("ignore-case"),
			Normalize:  viper.GetBool("normalize"),
		},
		MaxInFlight:    workers,
		Unbounded:      unbounded,
		FollowSymlinks: viper.GetBool("follow-symlinks"),
		Unsorted:       viper.GetBool("unsorted"),
	}

	// Set log level
	if viper.GetBool("verbose") {
		opts.LogLevel = seek.LogLevelDebug
	} else if viper.GetBool("silent") {
		opts.LogLevel = seek.LogLevelError
	} else {
		opts.LogLevel = seek.LogLevelWarn
	}

	stderr := cmd.ErrOrStderr()
	if viper.GetBool("progress") {
		opts.Progress = func(stats seek.Stats) {
			fmt.Fprintf(stderr, "\rListed: %d dirs, %d entries, %d matches, %d skipped, %.0f entries/s",
				stats.DirsListed, stats.EntriesSeen, stats.Matches, stats.SkippedDirs, stats.EntriesPerSec)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := seek.SearchWithOptions(ctx, root, pattern, opts)
	if res == nil {
		return err
	}
	if opts.Progress != nil {
		fmt.Fprintln(stderr)
	}

	if werr := writeResult(res, out); werr != nil {
		return werr
	}
	if out.format == formatText {
		writeSkipped(stderr, res)
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("search interrupted, results are partial: %w", err)
		}
		return err
	}
	if viper.GetBool("strict") && !res.Complete() {
		return fmt.Errorf("search incomplete: %w", res.Err())
	}
	return nil
}

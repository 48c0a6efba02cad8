package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/hostcall/host"
	"github.com/wippyai/hostcall/linker"
	"github.com/wippyai/hostcall/sysapi"
)

var rootCmd = &cobra.Command{
	Use:   "hostcall",
	Short: "Link WebAssembly guests against typed host capabilities",
	Long: `hostcall - Run WebAssembly modules against the system capability set.

Guest imports are resolved by qualified key <namespace>_<name>. The system
capabilities (debug_print) are mounted under --namespace, "env" by default.
Only binary modules are accepted.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("namespace", "n", "env", "Namespace the system capabilities are mounted under")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log bridge activity to stderr")
	rootCmd.PersistentFlags().Bool("no-type-check", false, "Skip import type checks before instantiation")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	}
	host.SetLogger(logger)
	linker.SetLogger(logger)
	sysapi.SetLogger(logger)
	return nil
}

func linkerOptions(cmd *cobra.Command) linker.Options {
	opts := linker.DefaultOptions()
	if skip, _ := cmd.Flags().GetBool("no-type-check"); skip {
		opts.TypeCheck = false
	}
	return opts
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/hostcall/linker"
	"github.com/wippyai/hostcall/sysapi"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the system capabilities as a WIT interface",
	Args:  cobra.NoArgs,
	RunE:  runDescribe,
}

func init() {
	rootCmd.AddCommand(describeCmd)
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	system, err := sysapi.Register(sysapi.NewPrinter(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	namespace, _ := cmd.Flags().GetString("namespace")

	out := cmd.OutOrStdout()
	fmt.Fprint(out, system.Descriptor().WIT())
	fmt.Fprintln(out)
	for _, key := range linker.Mount(namespace, system).Keys() {
		slot := key[len(namespace)+1:]
		fmt.Fprintf(out, "// import (%q %q) resolves as %s\n", namespace, slot, key)
	}
	return nil
}

package main

import (
	"flag"
	"os"

	"github.com/plan-systems/klog"
	"github.com/spf13/cobra"
)

var cfgPath string

// newRootCmd builds the command tree with freshly registered flags.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rapidroute",
		Short: "Interconnect path analysis over a routing-resource oracle",
		Long: `rapidroute enumerates the interconnect paths between two routing resources,
classifies which of them are near-variations of each other, and finds one-node detours.`,
		SilenceUsage: true,
	}

	runCmd := &cobra.Command{
		Use:   "run [script.py]",
		Short: "Runs a gpython script, or starts a REPL if no script is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pathname := ""
			if len(args) > 0 {
				pathname = args[0]
			}
			return go_gpython(pathname)
		},
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Enumerates paths between src and snk and reports their variations and detours",
		Args:  cobra.NoArgs,
		RunE:  runSolve,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serves a fabric description as an oracle over http or a unix socket",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "YAML config file")
	addSolveFlags(solveCmd.Flags())
	addServeFlags(serveCmd.Flags())

	rootCmd.AddCommand(runCmd, solveCmd, serveCmd)
	return rootCmd
}

func main() {
	fset := flag.NewFlagSet("", flag.ContinueOnError)
	klog.InitFlags(fset)
	fset.Set("logtostderr", "true")
	fset.Set("v", "1")
	klog.SetFormatter(&klog.FmtConstWidth{
		FileNameCharWidth: 16,
		UseColor:          true,
	})

	rootCmd := newRootCmd()
	rootCmd.PersistentFlags().AddGoFlagSet(fset)

	err := rootCmd.Execute()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}

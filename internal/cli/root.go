// Package cli implements the threadpool command line tool: a workload driver
// that exercises a pool and reports how the work was spread across workers.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/utkarsh5026/threadpool/internal/config"
)

// app carries state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
}

// NewRootCommand builds the threadpool command tree writing to out.
func NewRootCommand(out io.Writer) (*cobra.Command, error) {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "threadpool",
		Short: "Drive a fixed-size worker pool with a synthetic workload",
		Long: `threadpool starts a pool with a fixed set of workers, submits a synthetic
workload from one or more goroutines, tears the pool down and reports how the
tasks were spread across the workers.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	root.PersistentFlags().StringVar(&a.cfgFile, "config-file", "", "YAML config file.")
	if err := config.BindFlags(root.PersistentFlags(), a.v); err != nil {
		return nil, fmt.Errorf("error while binding flags: %w", err)
	}

	root.AddCommand(newRunCommand(a), newConfigCommand(a))
	return root, nil
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

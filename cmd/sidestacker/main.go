// Command sidestacker is the terminal client for Side-Stacker.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/config"
	"github.com/sidestacker/sidestacker/internal/game"
)

func main() {
	klogFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(klogFlags)
	defer klog.Flush()

	root := newRootCmd(klogFlags)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// globalOptions are flags shared by all commands.
type globalOptions struct {
	configPath string
	klogFlags  *flag.FlagSet
}

func newRootCmd(klogFlags *flag.FlagSet) *cobra.Command {
	g := &globalOptions{klogFlags: klogFlags}
	root := &cobra.Command{
		Use:          "sidestacker",
		Short:        "Play Side-Stacker in the terminal",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sidestacker/config.yaml)")
	addConfigFlags(pf)
	if klogFlags != nil {
		pf.AddGoFlagSet(klogFlags)
	}

	root.AddCommand(
		newPlayCmd(g),
		newStatsCmd(g),
		newIDCmd(g),
		newVersionCmd(),
	)
	return root
}

// addConfigFlags declares one flag per config key, named with dashes.
// Defaults shown are informational: config.Load only applies changed flags
// over the file and environment.
func addConfigFlags(fs *pflag.FlagSet) {
	def := config.Default()
	fs.String("server-url", def.ServerURL, "game server WebSocket base URL")
	fs.String("api-url", def.APIURL, "game server REST base URL")
	fs.Int("board-size", def.BoardSize, "board size used until the server sends a board")
	fs.String("username", "", "username sent when creating or joining games")
	fs.Duration("dial-timeout", def.DialTimeout, "timeout to open the connection")
	fs.Duration("write-timeout", def.WriteTimeout, "timeout to send one message")
	fs.Duration("move-timeout", def.MoveTimeout, "how long to wait for the server to accept a move")
	fs.Bool("reconnect", def.Reconnect, "retry reaching the server with exponential backoff")
	fs.Duration("reconnect-max-elapsed", def.ReconnectMaxElapsed, "give up reconnecting after this long (0: never)")
	fs.Bool("persist-identity", def.PersistIdentity, "reuse the same client identity across runs")
}

func (g *globalOptions) load(cmd *cobra.Command) (config.Config, error) {
	config.LoadDotEnv()
	cfg, path, err := config.Load(g.configPath, cmd.Flags())
	if err != nil {
		return cfg, err
	}
	klog.V(1).Infof("Config loaded from %s: %+v", path, cfg)
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sidestacker %s\n", game.Version)
		},
	}
}

const statsTimeout = 10 * time.Second

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/config"
	"github.com/sidestacker/sidestacker/internal/conn"
	"github.com/sidestacker/sidestacker/internal/identity"
	"github.com/sidestacker/sidestacker/internal/session"
	"github.com/sidestacker/sidestacker/internal/stats"
	"github.com/sidestacker/sidestacker/internal/tui"
)

const logFile = "sidestacker/sidestacker.log"

var errCreateAndJoin = errors.New("--create and --join are mutually exclusive")

type playOptions struct {
	create     string
	difficulty string
	ai1, ai2   string
	join       string
}

// intent returns the request issued once connected, or nil.
func (o *playOptions) intent() (func(ctrl *session.Controller) error, error) {
	switch {
	case o.create != "" && o.join != "":
		return nil, errCreateAndJoin
	case o.create != "":
		mode := strings.ToUpper(o.create)
		opts := session.CreateOptions{Difficulty: o.difficulty, AI1Difficulty: o.ai1, AI2Difficulty: o.ai2}
		return func(ctrl *session.Controller) error {
			opts.Username = ctrl.Snapshot().Username
			return ctrl.CreateGame(mode, opts)
		}, nil
	case o.join != "":
		return func(ctrl *session.Controller) error { return ctrl.JoinGame(o.join) }, nil
	}
	return nil, nil
}

func newPlayCmd(g *globalOptions) *cobra.Command {
	o := &playOptions{}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Connect to the game server and play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.create, "create", "", "create a game right away: pvp, pve or ava")
	f.StringVar(&o.difficulty, "difficulty", "", "AI difficulty for pve: easy, medium or hard")
	f.StringVar(&o.ai1, "ai1", "", "first AI difficulty for ava")
	f.StringVar(&o.ai2, "ai2", "", "second AI difficulty for ava")
	f.StringVar(&o.join, "join", "", "join the game with this ID right away")
	return cmd
}

// clientIdentity returns the identity for this run.
func clientIdentity(cfg config.Config) (string, error) {
	if !cfg.PersistIdentity {
		return identity.New(), nil
	}
	return identity.LoadOrCreate(identity.DefaultStateFile)
}

// logToFile sends klog output to a file, since the terminal belongs to the
// UI. An explicit --logtostderr or --log_file wins.
func (g *globalOptions) logToFile(cmd *cobra.Command) {
	if g.klogFlags == nil {
		return
	}
	flags := cmd.Flags()
	if flags.Changed("logtostderr") || flags.Changed("log_file") {
		return
	}
	path, err := xdg.StateFile(logFile)
	if err != nil {
		klog.Warningf("Cannot resolve log file: %v", err)
		return
	}
	_ = g.klogFlags.Set("logtostderr", "false")
	_ = g.klogFlags.Set("alsologtostderr", "false")
	_ = g.klogFlags.Set("log_file", path)
}

func runPlay(cmd *cobra.Command, g *globalOptions, o *playOptions) error {
	intent, err := o.intent()
	if err != nil {
		return err
	}
	cfg, err := g.load(cmd)
	if err != nil {
		return err
	}
	clientID, err := clientIdentity(cfg)
	if err != nil {
		return err
	}
	g.logToFile(cmd)

	mgr := conn.NewManager(cfg.ServerURL, clientID, conn.Options{
		DialTimeout:  cfg.DialTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	ctrl := session.New(mgr, clientID, session.Options{
		BoardSize:   cfg.BoardSize,
		MoveTimeout: cfg.MoveTimeout,
		Username:    cfg.Username,
	})
	defer ctrl.Close()
	ui := tui.New(ctrl, stats.NewClient(cfg.APIURL))

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	ui.SetReconnect(func() {
		go func() {
			err := mgr.ConnectWithRetry(ctx, conn.DefaultBackOff(cfg.ReconnectMaxElapsed), ctrl.Listener())
			if err != nil && ctx.Err() == nil {
				klog.Errorf("Cannot reconnect to %s: %v", mgr.URL(), err)
			}
		}()
	})

	eg.Go(func() error {
		// Quitting the UI ends the run.
		defer cancel()
		return ui.Run(ctx)
	})
	eg.Go(func() error {
		if err := connect(ctx, cfg, mgr, ctrl); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// The UI shows the server as unreachable.
			klog.Errorf("Cannot connect to %s: %v", mgr.URL(), err)
			return nil
		}
		if intent == nil {
			return nil
		}
		if err := intent(ctrl); err != nil {
			klog.Errorf("Initial request failed: %v", err)
		}
		return nil
	})

	klog.Infof("Client %s playing on %s", clientID, cfg.ServerURL)
	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// connect opens the connection, retrying if configured to.
func connect(ctx context.Context, cfg config.Config, mgr *conn.Manager, ctrl *session.Controller) error {
	if cfg.Reconnect {
		return mgr.ConnectWithRetry(ctx, conn.DefaultBackOff(cfg.ReconnectMaxElapsed), ctrl.Listener())
	}
	ctrl.Start()
	return mgr.WaitOpen(ctx)
}

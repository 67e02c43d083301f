package main

import (
	"flag"
	"os"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/frontend"
)

func main() {
	// Initialize klog for WASM, forcing logs to stderr (console).
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	_ = fs.Set("logtostderr", "true")
	klog.SetOutput(os.Stderr)
	klog.Infof("WASM started!")

	// A single page: Home switches views as the session progresses.
	app.Route("/", func() app.Composer { return &frontend.Home{} })

	// Connects to the game server when running in the browser.
	frontend.InitState()

	app.RunWhenOnBrowser()
}

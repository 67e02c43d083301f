package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"k8s.io/klog/v2"

	"github.com/sidestacker/sidestacker/internal/server"
)

var (
	flagAddr      = flag.String("addr", "", "Address to listen on (default: auto-port on localhost)")
	flagServerURL = flag.String("server_url", "", "Game server WebSocket base URL handed to the browser (default: same host)")
	flagAPIURL    = flag.String("api_url", "", "Game server REST base URL handed to the browser (default: same host)")
	flagWebDir    = flag.String("web_dir", "web", "Directory with app.wasm and static assets")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	started := make(chan *server.ServerState, 1)
	go func() {
		state := <-started
		fmt.Printf("Side-Stacker web client listening on http://%s\n", state.Address)
	}()

	opts := server.Options{
		Addr:      *flagAddr,
		ServerURL: *flagServerURL,
		APIURL:    *flagAPIURL,
		WebDir:    *flagWebDir,
	}
	if err := server.Run(ctx, opts, started); err != nil {
		klog.Fatal(err)
	}
}

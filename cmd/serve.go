package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fcelec/cablesize/internal/server"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve circuit sizing over a websocket",
	Long: `Start a websocket endpoint at /ws. Each text message is a circuit
spec in JSON, answered in order with {"result": ...} or
{"error": ..., "kind": ...}.

Example message:
  {"power_w": 3500, "power_factor": 0.8, "voltage": "single-phase",
   "length_m": 25, "material": "copper", "method": "conduit",
   "max_drop_percent": 3}`,
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) {
	addr := cfg.ServerAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.NewServer(addr, upgrader, engine).Serve(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"testrig/internal/cli"
	"testrig/internal/liveserver"
)

// ServeCommand runs the built-in servers until SIGTERM or SIGINT
type ServeCommand struct{}

// NewServeCommand creates a new ServeCommand
func NewServeCommand() *ServeCommand {
	return &ServeCommand{}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// Live serves the live target
func (sc *ServeCommand) Live(ctx context.Context, flags *cli.ServeFlags, logger *slog.Logger) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	srv := liveserver.NewLiveServer(logger, flags.CertFile != "")
	return liveserver.Serve(ctx, flags.Port, srv.Handler(), flags.CertFile, flags.KeyFile, logger)
}

// Proxy serves the forward proxy
func (sc *ServeCommand) Proxy(ctx context.Context, flags *cli.ServeFlags, logger *slog.Logger) error {
	ctx, stop := signalContext(ctx)
	defer stop()

	proxy := liveserver.NewProxy(flags.User, flags.Password, logger)
	return liveserver.Serve(ctx, flags.Port, proxy, "", "", logger)
}

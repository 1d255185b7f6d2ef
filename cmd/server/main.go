package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/adamgrzybowski/google-task-mcp/authflow"
	"github.com/adamgrzybowski/google-task-mcp/clients"
	"github.com/adamgrzybowski/google-task-mcp/internal/config"
	"github.com/adamgrzybowski/google-task-mcp/internal/errors"
	"github.com/adamgrzybowski/google-task-mcp/mcpserver"
	"github.com/adamgrzybowski/google-task-mcp/server"
	"github.com/adamgrzybowski/google-task-mcp/tokenstore"
	"github.com/adamgrzybowski/google-task-mcp/upstream"
)

const version = "0.1.0"

func main() {
	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	tokens, err := tokenstore.New(c.GetDataFolder(), c.GetTokenRetention())
	if err != nil {
		return fmt.Errorf("tokenstore.New: %w", err)
	}

	authFlows := authflow.NewInMemoryRepo(c.GetPendingAuthTTL())
	stores := server.Stores{
		AuthFlows: authFlows,
		Clients:   clients.NewInMemoryRepo(),
		Tokens:    tokens,
	}

	authFlows.Start(c.GetSweepInterval())
	defer authFlows.Stop()
	tokens.Start(c.GetSweepInterval())
	defer tokens.Stop()

	upstreamClient := upstream.New(context.Background(), c)
	sessions := mcpserver.NewSessionManager(c, tokens, upstreamClient)
	protocol := mcpserver.New(c.GetAppName(), version, sessions)

	httpServer := &http.Server{
		Addr:    c.GetPort(),
		Handler: server.New(c, stores, upstreamClient, protocol.Handler()),
	}

	g := &errgroup.Group{}
	g.Go(func() error { return listenAndServe(httpServer) })

	waitForStopSignal()

	if err := shutdown(httpServer, protocol); err != nil {
		return err
	}
	return g.Wait()
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server, protocol *mcpserver.MCPServer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := protocol.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("protocol shutdown")
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nstehr/cohort/agent"
	"github.com/nstehr/cohort/ipc"
	"github.com/nstehr/cohort/metrics"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game-client bridge over a unix socket",
	RunE: func(cmd *cobra.Command, args []string) error {
		socketPath, _ := cmd.Flags().GetString("socket")
		metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

		d, err := loadDoctrine()
		if err != nil {
			return err
		}
		if _, err := d.CompileGuards(); err != nil {
			return err
		}

		fmt.Println(banner)
		slog.Info("starting cohort", "doctrine", d.Name, "engine", d.Engine)

		// Unix sockets leave behind a file on unclean shutdown; remove it so we can rebind.
		if err := os.RemoveAll(socketPath); err != nil {
			return fmt.Errorf("clean up socket %s: %w", socketPath, err)
		}
		listener, err := net.Listen("unix", socketPath)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", socketPath, err)
		}
		defer listener.Close()
		defer os.Remove(socketPath)
		slog.Info("listening on domain socket", "path", socketPath)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		rec := metrics.New()
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", rec.Handler())
			srv := &http.Server{Addr: metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			go func() {
				slog.Info("serving metrics", "addr", metricsAddr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					slog.Error("metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()
		}

		go func() {
			for {
				conn, err := listener.Accept()
				if err != nil {
					select {
					case <-ctx.Done():
						return
					default:
						slog.Error("failed to accept connection", "error", err)
						continue
					}
				}
				slog.Info("new connection accepted")
				go handleConn(conn, func(c *ipc.Connection) *agent.Agent {
					return agent.New(c, d, rec, slog.Default())
				})
			}
		}()

		<-ctx.Done()
		slog.Info("shutting down")
		return nil
	},
}

func init() {
	serveCmd.Flags().String("socket", "/tmp/cohort.sock", "unix socket the bridge connects to")
	serveCmd.Flags().String("metrics-addr", "", "address for the Prometheus /metrics endpoint, empty to disable")
}

func handleConn(conn net.Conn, newAgent func(*ipc.Connection) *agent.Agent) {
	c := ipc.NewConnection(conn, nil, slog.Default())
	a := newAgent(c)
	c.SetLogger(a.Logger())
	a.Register(c)
	c.ReadLoop()
}

package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nstehr/cohort/config"
)

const banner = `
 ██████╗ ██████╗ ██╗  ██╗ ██████╗ ██████╗ ████████╗
██╔════╝██╔═══██╗██║  ██║██╔═══██╗██╔══██╗╚══██╔══╝
██║     ██║   ██║███████║██║   ██║██████╔╝   ██║
██║     ██║   ██║██╔══██║██║   ██║██╔══██╗   ██║
╚██████╗╚██████╔╝██║  ██║╚██████╔╝██║  ██║   ██║
 ╚═════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚═╝  ╚═╝   ╚═╝

Reactive Army Micro`

var (
	doctrinePath string
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "cohort",
	Short: "Army and unit micro for a real-time strategy bot",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(logLevel))); err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&doctrinePath, "doctrine", "", "doctrine YAML file (defaults built in)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.AddCommand(serveCmd, simulateCmd)
}

// loadDoctrine returns the doctrine named by --doctrine, or the defaults.
func loadDoctrine() (config.Doctrine, error) {
	if doctrinePath == "" {
		return config.Default(), nil
	}
	d, err := config.Load(doctrinePath)
	if err != nil {
		return config.Doctrine{}, err
	}
	slog.Info("doctrine loaded", "path", doctrinePath, "name", d.Name, "engine", d.Engine)
	return d, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"predman/internal/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultAPIURL = "http://localhost:8090"

var logFile io.Closer

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "predman",
		Short:         "predman is the terminal client for the Predman board",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)
	root.PersistentFlags().String("api-url", defaultAPIURL, "content service base URL")
	root.PersistentFlags().String("session-file", "", "where the login is kept (default in the user config dir)")
	root.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	root.PersistentFlags().StringP("output", "o", "table", "output format: table, json or yaml")
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	for _, name := range []string{"api-url", "session-file", "log-file", "output", "debug"} {
		if err := viper.BindPFlag(name, root.PersistentFlags().Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind %s flag: %v", name, err))
		}
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initLogging(viper.GetString("log-file"))
	}
	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			_ = logFile.Close()
			logFile = nil
		}
	}

	root.AddCommand(registerCmd())
	root.AddCommand(loginCmd())
	root.AddCommand(logoutCmd())
	root.AddCommand(whoamiCmd())
	root.AddCommand(projectsCmd())
	root.AddCommand(boardCmd())
	root.AddCommand(showCmd())
	root.AddCommand(addCmd())
	root.AddCommand(editCmd())
	root.AddCommand(rmCmd())
	root.AddCommand(moveCmd())
	root.AddCommand(tuiCmd())
	return root
}

// initConfig maps PREDMAN_API_URL, PREDMAN_SESSION_FILE, ... onto the flags.
func initConfig() {
	viper.SetEnvPrefix("predman")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initLogging(path string) error {
	level := "warn"
	if viper.GetBool("debug") {
		level = "debug"
	}
	if path == "" {
		logger.InitWriter(os.Stderr, level, false)
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = f
	logger.InitWriter(f, level, false)
	return nil
}

package main

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"predman/internal/logger"
	"predman/internal/session"
	"predman/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func tuiCmd() *cobra.Command {
	var live bool
	cmd := &cobra.Command{
		Use:   "tui <project_id>",
		Short: "Open the interactive board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// logs must not land on the screen
			if viper.GetString("log-file") == "" {
				path, err := session.DefaultPath()
				if err == nil {
					err = initLogging(filepath.Join(filepath.Dir(path), "predman.log"))
				}
				if err != nil {
					return err
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			c, sess, err := authedClient()
			if err != nil {
				return err
			}
			projectID := args[0]
			info, err := c.ProjectInfo(ctx, projectID)
			if err != nil {
				return err
			}

			store, err := loadBoard(ctx, projectID)
			if err != nil {
				return err
			}
			model := tui.New(ctx, store, info.Name)
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if live {
				onEvent := tui.RefreshOnRemote(sess.UserID, p.Send)
				go func() {
					for ctx.Err() == nil {
						err := c.Watch(ctx, projectID, onEvent)
						if ctx.Err() != nil {
							return
						}
						logger.Warn("board stream dropped, reconnecting", "error", err)
						select {
						case <-ctx.Done():
						case <-time.After(3 * time.Second):
						}
					}
				}()
			}

			_, err = p.Run()
			if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&live, "live", true, "reload the board when other members change it")
	return cmd
}

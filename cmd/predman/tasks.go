package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"predman/internal/board"
	"predman/internal/domain"

	"github.com/spf13/cobra"
)

func boardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board <project_id>",
		Short: "Print the task board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printBoard(cmd.OutOrStdout(), store)
		},
	}
}

func printBoard(w io.Writer, store *board.Store) error {
	b, _ := store.Get()
	return render(w, b, func(tw *tabwriter.Writer) {
		fmt.Fprintln(tw, "COLUMN\t#\tID\tNAME\tPOINTS")
		for _, bk := range domain.Buckets {
			for i, t := range b.Column(bk) {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%g\n", bk, i, t.ID, t.Name, t.StoryPoints)
			}
		}
	})
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <task_id>",
		Short: "Show a task with its successor and dependencies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			t, err := c.Task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), t, func(tw *tabwriter.Writer) {
				next := "-"
				if t.Next != nil {
					next = *t.Next
				}
				fmt.Fprintf(tw, "ID\t%s\n", t.ID)
				fmt.Fprintf(tw, "NAME\t%s\n", t.Name)
				fmt.Fprintf(tw, "STATUS\t%s\n", t.Status)
				fmt.Fprintf(tw, "POINTS\t%g\n", t.StoryPoints)
				fmt.Fprintf(tw, "NEXT\t%s\n", next)
				fmt.Fprintf(tw, "DEPENDS ON\t%s\n", strings.Join(t.Dependencies, ", "))
			})
		},
	}
}

func addCmd() *cobra.Command {
	var description string
	var points float64
	cmd := &cobra.Command{
		Use:   "add <project_id> <name>",
		Short: "Add a task to the planned column",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(strings.Join(args[1:], " "))
			if name == "" {
				return domain.Invalid("task name is required")
			}
			store, err := loadBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			t, err := store.AddTask(cmd.Context(), name, description, points)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s added\n", t.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().Float64Var(&points, "points", 0, "story points")
	return cmd
}

func editCmd() *cobra.Command {
	var name, description, status string
	var points float64
	cmd := &cobra.Command{
		Use:   "edit <project_id> <task_id>",
		Short: "Change task fields; a new status moves the task to the end of that column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("name") {
				patch.Name = &name
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("points") {
				patch.StoryPoints = &points
			}
			if flags.Changed("status") {
				bk, err := domain.ParseBucket(strings.ToLower(status))
				if err != nil {
					return err
				}
				s := bk.Status()
				patch.Status = &s
			}

			store, err := loadBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.EditTask(cmd.Context(), args[1], patch); err != nil {
				return err
			}
			return printBoard(cmd.OutOrStdout(), store)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().Float64Var(&points, "points", 0, "new story points")
	cmd.Flags().StringVar(&status, "status", "", "planned, inprogress or completed")
	return cmd
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <project_id> <task_id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteTask(cmd.Context(), args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %s deleted\n", args[1])
			return nil
		},
	}
}

func moveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <project_id> <task_id> <column[:index]>",
		Short: "Move a task; without an index it goes to the end of the column",
		Example: "  predman move $P $T inprogress\n" +
			"  predman move $P $T planned:0",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := loadBoard(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			src, err := position(store, args[1])
			if err != nil {
				return err
			}
			b, _ := store.Get()
			dst, err := parseTarget(b, src, args[2])
			if err != nil {
				return err
			}
			if err := store.Reorder(cmd.Context(), src, &dst); err != nil {
				return err
			}
			return printBoard(cmd.OutOrStdout(), store)
		},
	}
}

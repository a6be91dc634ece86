package main

import (
	"fmt"
	"text/tabwriter"

	"predman/internal/domain"

	"github.com/spf13/cobra"
)

func projectsCmd() *cobra.Command {
	var owned bool
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List and manage projects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			list := c.JoinedProjects
			if owned {
				list = c.OwnedProjects
			}
			projects, err := list(cmd.Context())
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), projects, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
				for _, p := range projects {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.Name, p.Description)
				}
			})
		},
	}
	cmd.Flags().BoolVar(&owned, "owned", false, "only projects you own")
	cmd.AddCommand(projectCreateCmd())
	cmd.AddCommand(projectInfoCmd())
	cmd.AddCommand(projectMembersCmd())
	cmd.AddCommand(projectInviteCmd())
	cmd.AddCommand(projectStatsCmd())
	return cmd
}

func projectCreateCmd() *cobra.Command {
	var description, due string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := domain.ParseDate(due)
			if err != nil {
				return err
			}
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			info, err := c.CreateProject(cmd.Context(), domain.NewProject{Name: args[0], Description: description, DueDate: dueDate})
			if err != nil {
				return err
			}
			return printProjectInfo(cmd, info)
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "project description")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func projectInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <project_id>",
		Short: "Show planning inputs and the predicted deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			info, err := c.ProjectInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printProjectInfo(cmd, info)
		},
	}
}

func printProjectInfo(cmd *cobra.Command, info *domain.ProjectInfo) error {
	return render(cmd.OutOrStdout(), info, func(tw *tabwriter.Writer) {
		fmt.Fprintf(tw, "ID\t%s\n", info.ID)
		fmt.Fprintf(tw, "NAME\t%s\n", info.Name)
		fmt.Fprintf(tw, "DUE\t%s\n", info.DueDate)
		fmt.Fprintf(tw, "PREDICTED\t%s (%.0f%% certain)\n", info.PredictedDeadline, info.CertaintyPercent)
		fmt.Fprintf(tw, "HOURS/EXPERIENCE/RISK\t%g / %g / %g\n", info.AvailableHours, info.SumExperience, info.ExternalRiskProbability)
	})
}

func projectMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "members <project_id>",
		Short: "List project members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			users, err := c.Members(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), users, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "ID\tLOGIN\tEMAIL")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Login, u.Email)
				}
			})
		},
	}
}

func projectInviteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "invite <project_id> <email>",
		Short: "Add a user to the project (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			u, err := c.AddMember(cmd.Context(), domain.MemberByEmail{ProjectID: args[0], UserEmail: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s joined the project\n", u.Login)
			return nil
		},
	}
}

func projectStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <project_id>",
		Short: "Show daily statistics snapshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := authedClient()
			if err != nil {
				return err
			}
			history, err := c.Statistics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), history, func(tw *tabwriter.Writer) {
				fmt.Fprintln(tw, "DAY\tTEAM\tTASKS LEFT\tPOINTS LEFT\tCRITICAL PATH")
				for _, s := range history {
					fmt.Fprintf(tw, "%s\t%d\t%d\t%g\t%g\n", s.SavedAt, s.TeamSize, s.RemainingTasks, s.RemainingStoryPoints, s.CriticalPathLength)
				}
			})
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/pyama86/snowpanel/domain/entity"
	"github.com/pyama86/snowpanel/presentation/cards"
	"github.com/spf13/cobra"
)

var (
	searchQuery string
	draftFlags  entity.Draft
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Login(cmd.Context()); err != nil {
			return err
		}
		app.Panel.SetSearch(searchQuery)
		return cards.Table(cmd.OutOrStdout(), app.Panel.Visible())
	},
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an incident",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Login(cmd.Context()); err != nil {
			return err
		}
		app.Panel.SetDraft(draftFlags)
		return app.Panel.Submit(cmd.Context())
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <sys_id>",
	Short: "Update an incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Login(cmd.Context()); err != nil {
			return err
		}
		if err := app.Panel.BeginEdit(args[0]); err != nil {
			return err
		}

		// 指定されなかった項目は現在の値を使う
		d := app.Panel.Draft()
		if cmd.Flags().Changed("impact") {
			d.Impact = draftFlags.Impact
		}
		if cmd.Flags().Changed("urgency") {
			d.Urgency = draftFlags.Urgency
		}
		if cmd.Flags().Changed("description") {
			d.ShortDescription = draftFlags.ShortDescription
		}
		app.Panel.SetDraft(d)
		return app.Panel.Submit(cmd.Context())
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <sys_id>",
	Short: "Delete an incident",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Session.Login(cmd.Context()); err != nil {
			return fmt.Errorf("failed to login: %w", err)
		}
		if err := app.Panel.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&searchQuery, "search", "s", "", "filter by short description or number")

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVar(&draftFlags.Impact, "impact", "", "impact (1 - High, 2 - Medium, 3 - Low)")
		c.Flags().StringVar(&draftFlags.Urgency, "urgency", "", "urgency (1 - High, 2 - Medium, 3 - Low)")
		c.Flags().StringVar(&draftFlags.ShortDescription, "description", "", "short description")
	}
	for _, name := range []string{"impact", "urgency", "description"} {
		_ = createCmd.MarkFlagRequired(name)
	}

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)
}

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/greetd/app"
	"github.com/kilianp07/greetd/core/model"
)

var contactsFormat string

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List the configured contacts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withService(func(_ context.Context, svc *app.Service) error {
			return printContacts(cmd.OutOrStdout(), svc.Contacts.List(), contactsFormat)
		})
	},
}

func init() {
	contactsCmd.Flags().StringVarP(&contactsFormat, "format", "o", "table", "output format: table or yaml")
	rootCmd.AddCommand(contactsCmd)
}

func printContacts(w io.Writer, list []model.Contact, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(list); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tEMAIL\tPREFERRED TIME")
		for _, c := range list {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.Email, c.PreferredTime)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	advisor "github.com/marycampus/advisor"
	"github.com/marycampus/advisor/app/routes"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the compiled route table",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := advisor.New(advisor.Config{})
		if err != nil {
			return err
		}
		if err := routes.Register(app); err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATTERN\tKIND")
		for _, r := range app.Router().Routes() {
			method := r.Method
			if method == "" {
				method = "GET" // page routes serve GET
			}
			kind := "eager"
			if r.Lazy {
				kind = "lazy"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", method, r.Pattern, kind)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}

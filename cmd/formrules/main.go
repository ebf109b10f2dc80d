package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"formrules/internal/config"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		app        *App
	)

	cmd := &cobra.Command{
		Use:   "formrules",
		Short: "Inspect form field storage types, visibility rules and reply filters",
		Long: `Inspect form definitions offline.

Forms are JSON or YAML documents; a form argument is either a file path or a
form id found in the configured forms directory.

Examples:
  formrules classify forms/intake.json
  formrules evaluate intake reply.json
  formrules query intake 'filter[age.gte]=18' 'filter[skills]=go'
  formrules match intake reply.json 'filter[name.like]=A%'
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			app = NewApp(cfg, cmd.OutOrStdout())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil {
				app.Close()
			}
		},
	}
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./formrules.yaml)")

	cmd.AddCommand(&cobra.Command{
		Use:   "forms",
		Short: "List forms in the configured forms directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.ListForms()
		},
	})

	cmd.AddCommand(classifyCmd(&app))

	cmd.AddCommand(&cobra.Command{
		Use:   "evaluate <form> <reply.json>",
		Short: "Evaluate field visibility rules against a reply",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Evaluate(cmd.Context(), args[0], args[1])
		},
	})

	cmd.AddCommand(queryCmd(&app))

	cmd.AddCommand(&cobra.Command{
		Use:   "match <form> <reply.json> [filter[field.op]=value ...]",
		Short: "Check whether a reply satisfies a set of filters",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Match(args[0], args[1], args[2:])
		},
	})

	return cmd
}

func classifyCmd(app **App) *cobra.Command {
	var storedOnly bool
	cmd := &cobra.Command{
		Use:   "classify <form>",
		Short: "Print the storage and column type of every field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*app).Classify(args[0], storedOnly)
		},
	}
	cmd.Flags().BoolVar(&storedOnly, "stored", false, "only list fields whose answers are stored")
	return cmd
}

func queryCmd(app **App) *cobra.Command {
	var opts QueryOptions
	cmd := &cobra.Command{
		Use:   "query <form> [filter[field.op]=value ...]",
		Short: "Print the reply query SQL for a set of filters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return (*app).Query(args[0], args[1:], opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Count, "count", false, "count matching replies instead of selecting them")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum number of replies (0 for no limit)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "number of replies to skip")
	return cmd
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "archive",
	Short: "versioned document archive tool",
	Example: `archive serve
archive create -t <title> -k <type> -c <contents>
archive get -d <doc-id>
archive list -o <owner-id> -s <status>
archive update -d <doc-id> -c <contents>
archive submit -d <doc-id> -c <contents>
archive versions -d <doc-id>
archive worklist -s pending
archive approve -d <doc-id> -v <version>
archive reject -d <doc-id> -v <version>
archive delete -d <doc-id>`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(contextCommand)
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	cobra.EnableCommandSorting = false
}

package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/papyri/archive/internal/service"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(worklistCmd())
	rootCmd.AddCommand(approveVersionCmd())
	rootCmd.AddCommand(rejectVersionCmd())
}

func worklistCmd() *cobra.Command {
	var status string

	command := &cobra.Command{
		Use:     "worklist",
		Short:   "list versions awaiting moderation",
		Example: "archive worklist -s pending",
		Run: func(cmd *cobra.Command, args []string) {
			client := apiClient()
			items, notice, err := client.Worklist(context.Background(), status)
			if err != nil {
				logrus.Error(err)
				return
			}

			renderWorklist(items)

			if notice != "" {
				color.Yellow("notice: %s", notice)
			}
		},
	}

	command.Flags().StringVarP(&status, "status", "s", "pending", "status filter: pending, approved, rejected or all")

	return command
}

func approveVersionCmd() *cobra.Command {
	var docID uint
	var version int64
	var filter string

	var required = []string{"doc-id", "version"}

	command := &cobra.Command{
		Use:     "approve",
		Short:   "approve a document version",
		Example: "archive approve -d <doc-id> -v <version>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			items, err := client.ApproveVersion(context.Background(), docID, version, filter)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("version %d approved", version)
			renderWorklist(items)
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().Int64VarP(&version, "version", "v", 0, "version number (required)")
	command.Flags().StringVarP(&filter, "filter", "s", "pending", "status filter for the refreshed worklist")
	command.Flags().SortFlags = false

	return command
}

func rejectVersionCmd() *cobra.Command {
	var docID uint
	var version int64
	var filter string

	var required = []string{"doc-id", "version"}

	command := &cobra.Command{
		Use:     "reject",
		Short:   "reject a document version",
		Example: "archive reject -d <doc-id> -v <version>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			items, err := client.RejectVersion(context.Background(), docID, version, filter)
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("version %d rejected", version)
			renderWorklist(items)
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().Int64VarP(&version, "version", "v", 0, "version number (required)")
	command.Flags().StringVarP(&filter, "filter", "s", "pending", "status filter for the refreshed worklist")
	command.Flags().SortFlags = false

	return command
}

func renderWorklist(items []service.WorklistItem) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Document", "Title", "Owner", "Version", "Status"})
	for _, item := range items {
		table.Append([]string{
			strconv.FormatUint(uint64(item.DocumentID), 10),
			item.DocumentTitle,
			item.OwnerID,
			strconv.FormatInt(item.Version.V, 10),
			string(item.Version.Status),
		})
	}

	table.Render()
}

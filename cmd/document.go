package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/papyri/archive"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(createDocCmd())
	rootCmd.AddCommand(getDocCmd())
	rootCmd.AddCommand(listDocCmd())
	rootCmd.AddCommand(updateDocCmd())
	rootCmd.AddCommand(submitVersionCmd())
	rootCmd.AddCommand(listVersionsCmd())
	rootCmd.AddCommand(deleteDocCmd())
}

// apiClient builds a REST client from the saved context.
func apiClient() *archive.Client {
	cfg := readContext()

	port := cfg.Port
	if port == "" {
		port = "4020"
	}

	client := archive.NewClient(port)
	if cfg.Token != "" {
		client = client.WithToken(cfg.Token)
	}

	return client
}

func createDocCmd() *cobra.Command {
	var title string
	var docType string
	var contents string
	var tags string
	var file string

	var required = []string{"title", "type"}

	command := &cobra.Command{
		Use:     "create",
		Short:   "create a document",
		Long:    `create a document with the given title, type and contents`,
		Example: "archive create -t <title> -k <type> -c <contents> -f <file>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			req := archive.CreateDocumentRequest{
				Title:    title,
				Type:     docType,
				Contents: contents,
				Tags:     splitTags(tags),
			}

			if file != "" {
				f, ferr := os.Open(file)
				if ferr != nil {
					logrus.Error(ferr)
					return
				}
				defer f.Close()
				created, uerr := client.UploadDocument(context.Background(), req, f, file)
				if uerr != nil {
					logrus.Error(uerr)
					return
				}
				logrus.Infof("document created with id: %d", created.ID)
				return
			}

			created, err := client.CreateDocument(context.Background(), req)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("document created with id: %d", created.ID)
		},
	}

	command.Flags().StringVarP(&title, "title", "t", "", "title of the document (required)")
	command.Flags().StringVarP(&docType, "type", "k", "", "type of the document (required)")
	command.Flags().StringVarP(&contents, "contents", "c", "", "contents of the document")
	command.Flags().StringVarP(&tags, "tags", "g", "", "comma separated tags")
	command.Flags().StringVarP(&file, "file", "f", "", "file to attach")

	command.Flags().SortFlags = false

	return command
}

func getDocCmd() *cobra.Command {
	var docID uint

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "get",
		Short:   "get a document",
		Example: "archive get -d <doc-id>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			doc, err := client.GetDocument(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Status", "Version", "Attach File"})
			table.Append([]string{
				strconv.FormatUint(uint64(doc.ID), 10),
				doc.Title,
				string(doc.Status),
				strconv.FormatInt(doc.CurrentVersion, 10),
				doc.AttachFile,
			})
			table.Render()

			printField("Type", doc.Type)
			printField("Contents", doc.Contents)
			printField("Tags", strings.Join(doc.TagList(), ", "))
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")

	command.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	command.Flags().SortFlags = false

	return command
}

func listDocCmd() *cobra.Command {
	var ownerID string
	var status string
	var query string

	command := &cobra.Command{
		Use:   "list",
		Short: "list documents",
		Run: func(cmd *cobra.Command, args []string) {
			client := apiClient()
			docs, err := client.ListDocuments(context.Background(), ownerID, status, query)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Owner", "Status", "Version"})
			for _, doc := range docs {
				table.Append([]string{
					strconv.FormatUint(uint64(doc.ID), 10),
					doc.Title,
					doc.OwnerID,
					string(doc.Status),
					strconv.FormatInt(doc.CurrentVersion, 10),
				})
			}

			table.Render()
		},
	}

	command.Flags().StringVarP(&ownerID, "owner-id", "o", "", "filter by owner id")
	command.Flags().StringVarP(&status, "status", "s", "", "filter by status")
	command.Flags().StringVarP(&query, "query", "q", "", "search by title or status")
	command.Flags().SortFlags = false

	return command
}

func updateDocCmd() *cobra.Command {
	var docID uint
	var title string
	var docType string
	var contents string
	var tags string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:   "update",
		Short: "update a document",
		Long: `Update the metadata of a document with the given id.

The version collection is untouched; submit a new version to change the
reviewed payload.`,
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			req := archive.UpdateDocumentRequest{
				Tags: splitTags(tags),
			}
			if title != "" {
				req.Title = &title
			}
			if docType != "" {
				req.Type = &docType
			}
			if contents != "" {
				req.Contents = &contents
			}

			doc, err := client.UpdateDocument(context.Background(), docID, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"ID", "Title", "Status"})
			table.Append([]string{strconv.FormatUint(uint64(doc.ID), 10), doc.Title, string(doc.Status)})
			table.Render()
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "title")
	command.Flags().StringVarP(&docType, "type", "k", "", "type")
	command.Flags().StringVarP(&contents, "contents", "c", "", "contents")
	command.Flags().StringVarP(&tags, "tags", "g", "", "comma separated tags")

	command.Flags().SortFlags = false

	return command
}

func submitVersionCmd() *cobra.Command {
	var docID uint
	var title string
	var contents string
	var notes string
	var tags string
	var file string

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:     "submit",
		Short:   "submit a new version of a document",
		Example: "archive submit -d <doc-id> -c <contents> -f <file>",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			req := archive.NewVersionRequest{
				Title:    title,
				Contents: contents,
				Notes:    notes,
				Tags:     splitTags(tags),
			}

			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					logrus.Error(err)
					return
				}
				defer f.Close()
				doc, err := client.UploadNewVersion(context.Background(), docID, req, f, file)
				if err != nil {
					logrus.Error(err)
					return
				}
				logrus.Infof("version %d submitted for review", doc.CurrentVersion)
				return
			}

			doc, err := client.CreateNewVersion(context.Background(), docID, req)
			if err != nil {
				logrus.Error(err)
				return
			}

			logrus.Infof("version %d submitted for review", doc.CurrentVersion)
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().StringVarP(&title, "title", "t", "", "title")
	command.Flags().StringVarP(&contents, "contents", "c", "", "contents")
	command.Flags().StringVarP(&notes, "notes", "n", "", "submission notes")
	command.Flags().StringVarP(&tags, "tags", "g", "", "comma separated tags")
	command.Flags().StringVarP(&file, "file", "f", "", "file to attach")

	command.Flags().SortFlags = false

	return command
}

func listVersionsCmd() *cobra.Command {
	var docID uint

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:   "versions",
		Short: "list document versions",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()
			doc, err := client.GetDocument(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}

			versions, err := client.GetVersions(context.Background(), docID)
			if err != nil {
				logrus.Error(err)
				return
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Version", "Status", "Created At"})
			for _, v := range versions {
				version := strconv.FormatInt(v.V, 10)
				if v.V == doc.CurrentVersion {
					table.Append([]string{version + " (current)", string(v.Status), v.CreatedAt.Format("2006-01-02 15:04:05")})
				} else {
					table.Append([]string{fmt.Sprintf("%-11s", version), string(v.Status), v.CreatedAt.Format("2006-01-02 15:04:05")})
				}
			}

			table.Render()
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id to list versions")

	return command
}

func deleteDocCmd() *cobra.Command {
	var docID uint
	var erase bool

	var required = []string{"doc-id"}

	command := &cobra.Command{
		Use:   "delete",
		Short: "delete a document",
		Run: func(cmd *cobra.Command, args []string) {
			if checkMissingFlags(cmd, required) {
				return
			}

			client := apiClient()

			var err error
			if erase {
				err = client.EraseDocument(context.Background(), docID)
			} else {
				err = client.DeleteDocument(context.Background(), docID)
			}
			if err != nil {
				logrus.Error(err)
				return
			}

			color.Green("document deleted")
		},
	}

	command.Flags().UintVarP(&docID, "doc-id", "d", 0, "document id (required)")
	command.Flags().BoolVarP(&erase, "erase", "e", false, "permanently remove the document and its files")
	command.Flags().SortFlags = false

	return command
}

func printField(label, value string) {
	color.Set(color.FgCyan)
	fmt.Print(label)
	color.Unset()
	fmt.Printf(": %s\n", value)
}

func splitTags(raw string) []string {
	if raw == "" {
		return nil
	}

	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// checkMissingFlags checks if the required flags are set and returns ok if they are set
func checkMissingFlags(cmd *cobra.Command, flags []string) bool {
	var missingFlags []string
	var providedFlags []string
	for _, required := range flags {
		if cmd.Flag(required).Changed == false {
			missingFlags = append(missingFlags, required)
		} else {
			value := cmd.Flag(required).Value.String()
			providedFlags = append(providedFlags, fmt.Sprintf("--%s=%s", required, value))
		}
	}

	if len(missingFlags) > 0 {
		var msg string
		for _, f := range missingFlags {
			msg += fmt.Sprintf("--%s ", f)
		}

		color.Red("missing: %s\n", msg)
		if len(providedFlags) > 0 {
			provided := strings.Join(providedFlags, " ")
			color.Green("provide: %s\n", provided)
		}

		cmd.Println("")

		cmd.Usage()

		return true
	}

	return false
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"json-share-api/pkg/client"
	"json-share-api/pkg/identity"
)

const defaultServer = "http://localhost:8080"

type options struct {
	server       string
	userID       string
	identityFile string
	timeout      time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "jsonsharectl",
		Short:         "Share JSON documents through a jsonshare server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("JSONSHARE_URL")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVarP(&opts.server, "server", "s", server, "Server base URL")
	rootCmd.PersistentFlags().StringVarP(&opts.userID, "user-id", "u", os.Getenv("JSONSHARE_USER_ID"), "Owner id (default: the persisted installation id)")
	rootCmd.PersistentFlags().StringVar(&opts.identityFile, "identity-file", "", "Where the installation id is stored")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newUploadCmd(opts),
		newGetCmd(opts),
		newListCmd(opts),
		newDeleteCmd(opts),
	)

	return rootCmd
}

func newUploadCmd(opts *options) *cobra.Command {
	var expiry string

	cmd := &cobra.Command{
		Use:   "upload <file.json>",
		Short: "Upload a JSON file and print the share link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			r, err := c.UploadFile(cmd.Context(), args[0], expiry)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), r)
		},
	}
	cmd.Flags().StringVarP(&expiry, "expiry", "e", "permanent", `Days until expiry (1-365) or "permanent"`)

	return cmd
}

func newGetCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "get <share-id>",
		Short: "Print the content of a share",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := client.New(opts.server, "", client.WithTimeout(opts.timeout))
			s, err := c.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return printJSON(w, s.Content)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write the content to this file")

	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your active shares",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			shares, err := c.ListMine(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), shares)
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <share-id>",
		Short: "Delete one of your shares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			if err = c.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}

func (o *options) client() (*client.Client, error) {
	owner, err := o.owner().OwnerID()
	if err != nil {
		return nil, err
	}
	return client.New(o.server, owner, client.WithTimeout(o.timeout)), nil
}

func (o *options) owner() identity.Provider {
	if o.userID != "" {
		return identity.Static(o.userID)
	}
	path := o.identityFile
	if path == "" {
		var err error
		if path, err = identity.DefaultPath(); err != nil {
			return failingProvider{err}
		}
	}
	return identity.NewFileStore(path)
}

type failingProvider struct{ err error }

func (p failingProvider) OwnerID() (string, error) { return "", p.err }

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

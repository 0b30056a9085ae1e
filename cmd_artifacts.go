package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smartfarm/db"
)

func newArtifactsCmd(a *app) *cobra.Command {
	var registryPath string
	open := func() (*db.Registry, error) {
		path := registryPath
		if path == "" {
			path = a.cfg.Models.Registry
		}
		if path == "" {
			return nil, fmt.Errorf("no registry: set models.registry or --registry")
		}
		return db.Open(path)
	}

	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Manage the sqlite model artifact registry",
	}
	cmd.PersistentFlags().StringVar(&registryPath, "registry", "", "registry database (default models.registry)")

	var name string
	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Validate an exported model artifact and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			registry, err := open()
			if err != nil {
				return err
			}
			defer registry.Close()

			if name == "" {
				name = filepath.Base(args[0])
			}
			info, err := registry.Import(cmd.Context(), name, payload)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			a.logger.Info("artifact imported",
				zap.String("name", info.Name),
				zap.String("format", info.Format),
				zap.String("sha256", info.SHA256))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s, %d features)\n", info.Name, info.Format, info.NFeatures)
			return nil
		},
	}
	importCmd.Flags().StringVar(&name, "name", "", "artifact name (default file base name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := open()
			if err != nil {
				return err
			}
			defer registry.Close()

			infos, err := registry.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFORMAT\tFEATURES\tSIZE\tSHA256\tIMPORTED")
			for _, info := range infos {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.12s\t%s\n",
					info.Name, info.Format, info.NFeatures, info.Size, info.SHA256, info.ImportedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(importCmd, listCmd)
	return cmd
}

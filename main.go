package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"smartfarm/config"
	"smartfarm/db"
	"smartfarm/logging"
	"smartfarm/ml"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	cfg        config.Config
	logger     *zap.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "smartfarm",
		Short:         "Smart Farming Assistant",
		Long:          "Predict the best crop & fertilizer for your farm.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigPath, "path to config.yaml")

	root.AddCommand(
		newServeCmd(a),
		newPredictCmd(a, "crop"),
		newPredictCmd(a, "fertilizer"),
		newInteractiveCmd(a),
		newArtifactsCmd(a),
	)
	return root
}

// setup loads config and builds the logger. A missing default config file
// is not an error; an explicitly named one is.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// loadModels reads both artifacts from the registry when one is configured,
// otherwise from disk. Any failure is fatal to the caller.
func (a *app) loadModels(ctx context.Context) (*ml.Models, error) {
	var src ml.Source = ml.FileSource{Dir: a.cfg.Models.Dir}
	if a.cfg.Models.Registry != "" {
		registry, err := db.Open(a.cfg.Models.Registry)
		if err != nil {
			return nil, fmt.Errorf("Error loading models: %w", err)
		}
		defer registry.Close()
		src = registry
	}

	models, err := ml.LoadModels(ctx, src, a.cfg.Models.Crop.Spec(), a.cfg.Models.Fertilizer.Spec())
	if err != nil {
		a.logger.Error("model load failed", zap.Error(err))
		return nil, fmt.Errorf("Error loading models: %w", err)
	}
	a.logger.Info("models loaded",
		zap.String("crop", a.cfg.Models.Crop.Path),
		zap.String("fertilizer", a.cfg.Models.Fertilizer.Path))
	return models, nil
}

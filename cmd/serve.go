/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valpere/nllbd/internal/engine"
	"github.com/valpere/nllbd/internal/orchestrator"
	"github.com/valpere/nllbd/internal/profile"
	"github.com/valpere/nllbd/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the translation worker loop",
	Long: `Read line-delimited JSON translation requests from stdin and write
responses to stdout. The model-runner sidecar is contacted once at
startup; a sidecar that cannot be reached is fatal.

Request fields: text, src_lang (default eng_Latn, "auto" to detect),
tgt_lang (default hin_Deva), stream (default false), batch_size
(default derived from the device class).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := buildLogger(viper.GetString("log-level"))
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		runner := engine.NewRunner(viper.GetString("runner-url"))

		ctx := context.Background()

		// Engine load failure is fatal: nothing can be served without it.
		health, err := runner.Ping(ctx)
		if err != nil {
			return fmt.Errorf("failed to reach model runner: %w", err)
		}

		class := profile.FromDevice(health.Device)
		if dev := viper.GetString("device"); dev != "" && dev != "auto" {
			class = profile.FromDevice(dev)
		}
		prof := profile.New(class, viper.GetInt("parallelism"))

		log.Info("model runner ready",
			zap.String("model", health.Model), zap.String("device", health.Device),
			zap.String("class", string(prof.Class)), zap.Int("parallelism", prof.Parallelism))

		orch := orchestrator.New(func(context.Context) (engine.Engine, error) {
			return runner, nil
		}, prof, log)
		if err := orch.Warm(ctx); err != nil {
			return err
		}

		srv := server.New(orch, os.Stdout, log)
		return srv.Run(ctx, os.Stdin)
	},
}

// buildLogger writes structured logs to stderr only; stdout belongs to
// the wire protocol.
func buildLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

func init() {
	serveCmd.Flags().String("runner-url", "http://localhost:8571", "Base URL of the model-runner sidecar")
	serveCmd.Flags().String("device", "auto", "Device class override: auto, cpu or gpu")
	serveCmd.Flags().Int("parallelism", 0, "CPU parallelism override (0 = detect)")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn, error")

	_ = viper.BindPFlags(serveCmd.Flags())

	rootCmd.AddCommand(serveCmd)
}

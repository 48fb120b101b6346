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
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/nllbd/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the model runner is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := engine.NewRunner(viper.GetString("runner-url"))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		health, err := runner.Ping(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("status: %s\nmodel:  %s\ndevice: %s\n", health.Status, health.Model, health.Device)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

/*
Copyright 2020 Google LLC

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
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/youtube"
)

var checkKeyCmd = &cobra.Command{
	Use:   "check-key",
	Short: "Checks that the YouTube API key works",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := checkKey(cmd.Context(), os.Stdout, viper.GetString("api_key"))
		if err != nil {
			fmt.Println(explain(err))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkKeyCmd)
}

// newValidator is replaced in tests.
var newValidator = func(key string) (validator, error) {
	client, err := youtube.NewClient(key)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type validator interface {
	Validate(ctx context.Context) error
}

func checkKey(ctx context.Context, out io.Writer, key string) error {
	v, err := newValidator(key)
	if err != nil {
		return err
	}
	if err := v.Validate(ctx); err != nil {
		return fmt.Errorf("checking key: %w", err)
	}
	fmt.Fprintln(out, "API key is valid")
	return nil
}

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
	"html"
	"io"
	"os"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrishiwastaken/YTMusicWrapped/internal/analysis"
	"github.com/hrishiwastaken/YTMusicWrapped/internal/pipeline"
)

type SendEmailConfig struct {
	From        string
	To          string
	Args        []string
	DryRun      bool
	SendgridKey string
}

var emailCmd = &cobra.Command{
	Use:   "email <address> [period]",
	Short: "Emails a listening summary",
	Long: `Emails the summary for a period to <address>.
  [period] takes the same forms as for summary. If it is omitted, the latest
  month with any plays is used.`,
	Args: cobra.RangeArgs(1, 2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("from") == "" {
			return fmt.Errorf("required flag(s) \"from\" not set")
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		config := SendEmailConfig{
			From:        viper.GetString("from"),
			To:          args[0],
			Args:        args[1:],
			DryRun:      viper.GetBool("dryRun"),
			SendgridKey: viper.GetString("sendgrid_api_key"),
		}
		err := sendEmail(cmd.Context(), os.Stdout, config)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(emailCmd)

	var dryRun bool
	emailCmd.Flags().BoolVarP(&dryRun, "dry_run", "n", false, "When true, just print instead of emailing")
	viper.BindPFlag("dryRun", emailCmd.Flags().Lookup("dry_run"))

	var from string
	emailCmd.Flags().StringVar(&from, "from", "", "From email address")
	viper.BindPFlag("from", emailCmd.Flags().Lookup("from"))

	var sendgridKey string
	emailCmd.Flags().StringVar(&sendgridKey, "sendgrid_api_key", "", "SendGrid API key (or set SENDGRID_API_KEY)")
	viper.BindPFlag("sendgrid_api_key", emailCmd.Flags().Lookup("sendgrid_api_key"))
	viper.BindEnv("sendgrid_api_key", "SENDGRID_API_KEY")
}

func sendEmail(ctx context.Context, out io.Writer, config SendEmailConfig) error {
	// Validate the period before the expensive part.
	if _, _, err := parsePeriodFromArgs(config.Args); err != nil {
		return err
	}

	ds, err := loadDataset(ctx)
	if err != nil {
		return err
	}

	subject, plain, body, err := generateEmailContent(ds, config.Args)
	if err != nil {
		return err
	}

	if config.DryRun {
		fmt.Fprintf(out, "Would have sent email: \nsubject: %s\n%s\n", subject, body)
		return nil
	}
	if config.SendgridKey == "" {
		return fmt.Errorf("sendgrid_api_key must be set in order to send emails")
	}

	from := mail.NewEmail("YouTube Music Wrapped", config.From)
	to := mail.NewEmail(config.To, config.To)
	message := mail.NewSingleEmail(from, subject, to, plain, body)
	client := sendgrid.NewSendClient(config.SendgridKey)
	resp, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendEmail: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendEmail: status %d: %s", resp.StatusCode, resp.Body)
	}
	fmt.Fprintf(out, "Sent %q to %s\n", subject, config.To)
	return nil
}

// generateEmailContent returns the subject and the plain text and HTML
// bodies for the period selected by args.
func generateEmailContent(ds *pipeline.Dataset, args []string) (subject, plain, body string, err error) {
	g, period, err := parsePeriodFromArgs(args)
	if err != nil {
		return
	}
	if len(args) == 0 {
		months := analysis.AvailablePeriods(ds.Enriched, analysis.Month)
		if len(months) == 0 {
			err = analysis.ErrEmptyResult
			return
		}
		g, period = analysis.Month, months[0]
	}

	summary, err := summarize(ds, g, period)
	if err != nil {
		return
	}
	subject = "YouTube Music Wrapped: " + summary.Period

	lines := headline(summary)
	tables := summaryAnalyses(summary)

	var text strings.Builder
	text.WriteString(strings.Join(lines, "\n"))
	text.WriteString("\n\n")

	var b strings.Builder
	b.WriteString("<html><body>\n")
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(subject))
	for _, line := range lines {
		fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
	}
	for _, a := range tables {
		text.WriteString(a.String())
		text.WriteString("\n")
		b.WriteString(a.HTML())
	}
	b.WriteString("</body></html>\n")

	return subject, text.String(), b.String(), nil
}

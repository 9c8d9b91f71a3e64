package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/certchain-backend/internal/app"
	"github.com/yungbote/certchain-backend/internal/modules/certification"
)

func renderCommand() *cobra.Command {
	var name, topic, date string
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the certificate markup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			issuedAt := time.Now()
			if d := strings.TrimSpace(date); d != "" {
				t, err := time.Parse(time.DateOnly, d)
				if err != nil {
					return fmt.Errorf("invalid --date %q: want YYYY-MM-DD", d)
				}
				issuedAt = t
			}
			return renderRun(cmd.OutOrStdout(), name, topic, issuedAt)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "recipient display name")
	cmd.Flags().StringVar(&topic, "topic", "", "topic display name")
	cmd.Flags().StringVar(&date, "date", "", "issue date as YYYY-MM-DD (defaults to today)")
	return cmd
}

// renderRun needs only the certificate copy, so it works without a database,
// a content store or a chain.
func renderRun(w io.Writer, name, topic string, issuedAt time.Time) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	certs := certification.New(certification.UsecasesDeps{
		Log:      log,
		Renderer: app.NewRenderer(cfg, log),
		Now:      func() time.Time { return issuedAt },
	})
	_, err = io.WriteString(w, certs.RenderHTML(name, topic))
	return err
}

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yungbote/certchain-backend/internal/app"
)

func mintCommand() *cobra.Command {
	var name, topic, to string
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Issue a standalone certificate token and print the result as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var out any
			if strings.TrimSpace(to) == "" {
				out, err = a.Certs.MintCertificateNftDefault(cmd.Context(), name, topic)
			} else {
				out, err = a.Certs.MintCertificateNft(cmd.Context(), to, name, topic)
			}
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "recipient display name")
	cmd.Flags().StringVar(&topic, "topic", "", "topic display name")
	cmd.Flags().StringVar(&to, "to", "", "recipient wallet address (defaults to DEFAULT_MINT_TO)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

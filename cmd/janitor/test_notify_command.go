package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"janitor/internal/notifications"
)

const testNotificationMessage = "Janitor test notification: delivery is working"

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to every configured transport",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			senders := notifications.NewSenders(cfg)
			if len(senders) == 0 {
				return errors.New("no notification transport configured")
			}

			out := cmd.OutOrStdout()
			var failures []error
			for _, sender := range senders {
				if err := sender.Send(cmd.Context(), testNotificationMessage); err != nil {
					fmt.Fprintf(out, "%s: not sent (%v)\n", sender.Name(), err)
					failures = append(failures, fmt.Errorf("%s: %w", sender.Name(), err))
					continue
				}
				fmt.Fprintf(out, "%s: test notification sent\n", sender.Name())
			}
			return errors.Join(failures...)
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var errExchangeFailed = errors.New("exchange failed")

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text>",
		Short: "Send one message and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			svc := a.newService()

			done, ok := svc.Submit(cmd.Context(), text)
			if !ok {
				return errors.New("nothing to send")
			}
			<-done

			last, _ := svc.Snapshot().Last()
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), last.Content); err != nil {
				return err
			}
			if last.Failed {
				return errExchangeFailed
			}
			return nil
		},
	}
}

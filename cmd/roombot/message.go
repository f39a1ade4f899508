package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/baldhumanity/roombots/protocol"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Build and read protocol messages",
}

var messageGetCmd = &cobra.Command{
	Use:   "get <message> <key>",
	Short: "Print the value of a key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := protocol.GetString(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var messageNewCmd = &cobra.Command{
	Use:     "new <TAG> [KEY=VALUE...]",
	Short:   "Print a message with the given tag and fields",
	Example: `  roombot message new GENOME_SPREAD_MESSAGE ID=7 FITNESS=3.5`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tag := args[0]
		if !strings.HasPrefix(tag, "[") {
			tag = "[" + tag + "]"
		}
		msg := protocol.New(tag)
		for _, field := range args[1:] {
			k, v, ok := strings.Cut(field, "=")
			if !ok || k == "" {
				return fmt.Errorf("field %q is not KEY=VALUE", field)
			}
			if strings.Contains(v, protocol.Delimiter) {
				return fmt.Errorf("value of %s contains the delimiter %q", k, protocol.Delimiter)
			}
			msg = protocol.Add(msg, k, v)
		}
		fmt.Fprintln(cmd.OutOrStdout(), msg)
		return nil
	},
}

func init() {
	messageCmd.AddCommand(messageGetCmd, messageNewCmd)
}

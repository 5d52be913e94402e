package main

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"

	"github.com/bri1545/SkillChain/pkg/code/skillchain"
)

func addressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address <registry|mint|validator|profile|escrow> [key]",
		Short: "Derive a program account address",
		Long: "Derive a program account address. Validator and profile addresses are keyed\n" +
			"by wallet, escrow addresses by test id.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) > 1 {
				key = args[1]
			}

			address, bump, err := skillchain.DeriveAddress(strings.ToLower(args[0]), key)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (bump %d)\n", base58.Encode(address), bump)
			return nil
		},
	}
}

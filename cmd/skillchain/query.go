package main

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func queryPath(kind string, args []string) (string, error) {
	requireKey := func() (string, error) {
		if len(args) == 0 {
			return "", errors.Errorf("%s requires a key", kind)
		}
		return url.PathEscape(args[0]), nil
	}

	switch strings.ToLower(kind) {
	case "registry":
		return "/v1/registry", nil
	case "stats":
		return "/v1/dao/stats", nil
	case "profile":
		key, err := requireKey()
		return "/v1/profile/" + key, err
	case "validator":
		key, err := requireKey()
		return "/v1/validator/" + key, err
	case "escrow":
		key, err := requireKey()
		return "/v1/escrow/" + key, err
	default:
		return "", errors.Errorf("unknown query kind: %s", kind)
	}
}

func queryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <registry|stats|profile|validator|escrow> [key]",
		Short: "Read program state from a node",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := queryPath(args[0], args[1:])
			if err != nil {
				return err
			}

			res, err := newApiClient(clientFlags.serverURL).get(cmd.Context(), path)
			if err != nil {
				return err
			}
			return printResponse(cmd, res)
		},
	}
	cmd.PersistentFlags().StringVarP(&clientFlags.serverURL, "url", "u", defaultServerURL, "node HTTP API url")

	cmd.AddCommand(verifySkillCommand())
	return cmd
}

func verifySkillCommand() *cobra.Command {
	var minScore int

	cmd := &cobra.Command{
		Use:   "verify-skill <wallet> <skill-id>",
		Short: "Check whether a wallet holds a skill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{
				"wallet_address": args[0],
				"skill_id":       args[1],
			}
			if minScore >= 0 {
				body["min_score"] = minScore
			}

			res, err := newApiClient(clientFlags.serverURL).post(cmd.Context(), "/v1/verify-skill", body)
			if err != nil {
				return err
			}
			return printResponse(cmd, res)
		},
	}
	cmd.Flags().IntVar(&minScore, "min-score", -1, "minimum score, ignored when negative")
	return cmd
}

func airdropCommand() *cobra.Command {
	var lamports uint64

	cmd := &cobra.Command{
		Use:   "airdrop <address>",
		Short: "Credit lamports to a system account on a development node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newApiClient(clientFlags.serverURL).post(cmd.Context(), "/v1/airdrop", map[string]interface{}{
				"address":  args[0],
				"lamports": lamports,
			})
			if err != nil {
				return err
			}
			return printResponse(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&clientFlags.serverURL, "url", "u", defaultServerURL, "node HTTP API url")
	cmd.Flags().Uint64Var(&lamports, "lamports", 1_000_000_000, "lamports to credit")
	return cmd
}

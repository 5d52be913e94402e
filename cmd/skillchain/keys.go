package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// Keypair files use the Solana CLI layout: a JSON array of the 64 private key
// bytes, where the last 32 bytes are the public key.
func loadKeypair(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read keypair %s", path)
	}

	var keyBytes []byte
	var ints []int
	if err := json.Unmarshal(raw, &ints); err != nil {
		return nil, errors.Wrapf(err, "keypair %s is not a json byte array", path)
	}
	for _, v := range ints {
		if v < 0 || v > 255 {
			return nil, errors.Errorf("keypair %s contains a value outside of byte range", path)
		}
		keyBytes = append(keyBytes, byte(v))
	}

	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, errors.Errorf("keypair %s has length %d, expected %d", path, len(keyBytes), ed25519.PrivateKeySize)
	}

	key := ed25519.PrivateKey(keyBytes)
	derived := ed25519.NewKeyFromSeed(key.Seed())
	if !derived.Equal(key) {
		return nil, errors.Errorf("keypair %s public key does not match its seed", path)
	}
	return key, nil
}

func writeKeypair(path string, key ed25519.PrivateKey, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.Errorf("%s already exists", path)
		}
	}

	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}

	encoded, err := json.Marshal(ints)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o600)
}

func keygenCommand() *cobra.Command {
	var outFile string
	var force bool

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an ed25519 keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pub, key, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return err
			}

			if len(outFile) > 0 {
				if err := writeKeypair(outFile, key, force); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "private key: %s\n", base58.Encode(key))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "public key: %s\n", base58.Encode(pub))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "outfile", "o", "", "write the keypair to a file instead of printing the private key")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing keypair file")
	return cmd
}

package main

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/csera5/BlockchainTech/internal/config"
	"github.com/csera5/BlockchainTech/internal/infra/chain/cardano"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "certifyctl",
		Short:         "Operator utilities for the image certification service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newAddressCommand())
	cmd.AddCommand(newUTXOsCommand())
	cmd.AddCommand(newKeymatchCommand())
	return cmd
}

func loadKey(cfg config.Config) (ed25519.PrivateKey, error) {
	key, err := cardano.LoadSigningKey(cfg.SigningKeyBech32, cfg.SigningKeyFile)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	return key, nil
}

func newAddressCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "address",
		Short: "Print the payment address derived from the configured signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			key, err := loadKey(cfg)
			if err != nil {
				return err
			}
			address, err := cardano.EnterpriseAddress(key.Public().(ed25519.PublicKey), cfg.CardanoNetwork == "mainnet")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), address)
			return nil
		},
	}
}

func newUTXOsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "utxos <address>",
		Short: "List the UTxOs of an address via Blockfrost",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg := config.FromEnv()
			client, err := cardano.NewClient(cfg.BlockfrostBaseURL, cfg.BlockfrostAPIKey, nil)
			if err != nil {
				return err
			}
			utxos, err := client.UTxOs(ctx, args[0])
			if err != nil {
				return err
			}
			var total int64
			for _, utxo := range utxos {
				note := ""
				if !utxo.OnlyLovelace() {
					note = " (+native assets)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s#%d  %d lovelace%s\n", utxo.TxHash, utxo.OutputIndex, utxo.Lovelace(), note)
				total += utxo.Lovelace()
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total: %d lovelace across %d utxos\n", total, len(utxos))
			return nil
		},
	}
}

func newKeymatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keymatch <address>",
		Short: "Check whether the configured signing key controls an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromEnv()
			key, err := loadKey(cfg)
			if err != nil {
				return err
			}
			derived, err := cardano.EnterpriseAddress(key.Public().(ed25519.PublicKey), cfg.CardanoNetwork == "mainnet")
			if err != nil {
				return err
			}
			if derived == args[0] {
				fmt.Fprintln(cmd.OutOrStdout(), "match")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "no match (key derives %s)\n", derived)
			return fmt.Errorf("address not controlled by configured key")
		},
	}
}

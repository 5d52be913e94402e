package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bri1545/SkillChain/pkg/code/skillchain"
	"github.com/bri1545/SkillChain/pkg/solana"
	skillchain_program "github.com/bri1545/SkillChain/pkg/solana/skillchain"
)

var (
	clientFlags = struct {
		serverURL   string
		keypairFile string
	}{}
)

func addClientFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&clientFlags.serverURL, "url", "u", defaultServerURL, "node HTTP API url")
	cmd.PersistentFlags().StringVarP(&clientFlags.keypairFile, "keypair", "k", "id.json", "signer keypair file")
}

func parsePublicKey(name, value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("--%s is not a base58 public key", name)
	}
	return decoded, nil
}

// newEscrowTestId generates a test id that fits within a single address seed
func newEscrowTestId() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func printResponse(cmd *cobra.Command, res apiResponse) error {
	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}

// instructionBuilder builds an instruction signed by the loaded keypair, plus
// any additional signers it requires
type instructionBuilder func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error)

func newSubmitSubcommand(use, short string, args cobra.PositionalArgs, build func(args []string) instructionBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			signer, err := loadKeypair(clientFlags.keypairFile)
			if err != nil {
				return err
			}

			ix, extraSigners, err := build(args)(signer)
			if err != nil {
				return err
			}

			res, err := newApiClient(clientFlags.serverURL).submit(cmd.Context(), ix, append([]ed25519.PrivateKey{signer}, extraSigners...)...)
			if err != nil {
				return err
			}
			return printResponse(cmd, res)
		},
	}
}

func submitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Sign and submit a SkillChain instruction",
	}
	addClientFlags(cmd)

	registry, _, err := skillchain_program.GetSkillRegistryAddress()
	if err != nil {
		panic(err)
	}

	cmd.AddCommand(
		newSubmitSubcommand("initialize-registry", "Create the registry with the signer as authority", cobra.NoArgs, func(_ []string) instructionBuilder {
			return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
				return skillchain_program.NewInitializeRegistryInstruction(&skillchain_program.InitializeRegistryInstructionAccounts{
					Registry:  registry,
					Authority: signer.Public().(ed25519.PublicKey),
				}), nil, nil
			}
		}),

		newSubmitSubcommand("initialize-skill-token", "Create the skill token mint", cobra.NoArgs, func(_ []string) instructionBuilder {
			return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
				mint, _, err := skillchain_program.GetSkillTokenMintAddress()
				if err != nil {
					return solana.Instruction{}, nil, err
				}

				return skillchain_program.NewInitializeSkillTokenInstruction(&skillchain_program.InitializeSkillTokenInstructionAccounts{
					SkillTokenMint: mint,
					Registry:       registry,
					Authority:      signer.Public().(ed25519.PublicKey),
				}), nil, nil
			}
		}),

		newSubmitSubcommand("add-validator <wallet>", "Register a validator", cobra.ExactArgs(1), func(args []string) instructionBuilder {
			return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
				wallet, err := parsePublicKey("wallet", args[0])
				if err != nil {
					return solana.Instruction{}, nil, err
				}

				validator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: wallet})
				if err != nil {
					return solana.Instruction{}, nil, err
				}

				return skillchain_program.NewAddValidatorInstruction(
					&skillchain_program.AddValidatorInstructionAccounts{
						Validator:        validator,
						ValidatorAddress: wallet,
						Authority:        signer.Public().(ed25519.PublicKey),
						Registry:         registry,
					},
					&skillchain_program.AddValidatorInstructionArgs{ValidatorAddress: wallet},
				), nil, nil
			}
		}),

		setValidatorStatusCommand(registry),

		newSubmitSubcommand("create-profile", "Create the signer's user profile", cobra.NoArgs, func(_ []string) instructionBuilder {
			return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
				owner := signer.Public().(ed25519.PublicKey)
				profile, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: owner})
				if err != nil {
					return solana.Instruction{}, nil, err
				}

				return skillchain_program.NewCreateUserProfileInstruction(&skillchain_program.CreateUserProfileInstructionAccounts{
					UserProfile: profile,
					User:        owner,
					Registry:    registry,
				}), nil, nil
			}
		}),

		mintCertificateCommand(registry),
		updateScoreCommand(),
		createEscrowCommand(),
		distributeRewardsCommand(registry),
	)

	return cmd
}

func setValidatorStatusCommand(registry ed25519.PublicKey) *cobra.Command {
	var active bool

	cmd := newSubmitSubcommand("set-validator-status <wallet>", "Activate or deactivate a validator", cobra.ExactArgs(1), func(args []string) instructionBuilder {
		return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
			wallet, err := parsePublicKey("wallet", args[0])
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			validator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: wallet})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			return skillchain_program.NewSetValidatorStatusInstruction(
				&skillchain_program.SetValidatorStatusInstructionAccounts{
					Validator: validator,
					Authority: signer.Public().(ed25519.PublicKey),
					Registry:  registry,
				},
				&skillchain_program.SetValidatorStatusInstructionArgs{IsActive: active},
			), nil, nil
		}
	})
	cmd.Flags().BoolVar(&active, "active", true, "validator status")
	return cmd
}

func mintCertificateCommand(registry ed25519.PublicKey) *cobra.Command {
	var validatorWallet string
	var score uint8

	cmd := newSubmitSubcommand("mint-certificate <skill-id>", "Record a validated skill on the signer's profile", cobra.ExactArgs(1), func(args []string) instructionBuilder {
		return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
			wallet, err := parsePublicKey("validator", validatorWallet)
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			owner := signer.Public().(ed25519.PublicKey)
			profile, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: owner})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			validator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: wallet})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			nftMintPub, nftMint, err := ed25519.GenerateKey(rand.Reader)
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			return skillchain_program.NewMintCertificateInstruction(
				&skillchain_program.MintCertificateInstructionAccounts{
					UserProfile: profile,
					User:        owner,
					Validator:   validator,
					Registry:    registry,
					NftMint:     nftMintPub,
				},
				&skillchain_program.MintCertificateInstructionArgs{
					SkillId: args[0],
					Score:   score,
				},
			), []ed25519.PrivateKey{nftMint}, nil
		}
	})
	cmd.Flags().StringVar(&validatorWallet, "validator", "", "validator wallet attesting the skill")
	cmd.Flags().Uint8Var(&score, "score", 0, "skill score between 0 and 100")
	_ = cmd.MarkFlagRequired("validator")
	_ = cmd.MarkFlagRequired("score")
	return cmd
}

func updateScoreCommand() *cobra.Command {
	var validatorWallet string
	var delta int16

	cmd := newSubmitSubcommand("update-score", "Adjust the signer's aggregate skill score", cobra.NoArgs, func(_ []string) instructionBuilder {
		return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
			wallet, err := parsePublicKey("validator", validatorWallet)
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			owner := signer.Public().(ed25519.PublicKey)
			profile, _, err := skillchain_program.GetUserProfileAddress(&skillchain_program.GetUserProfileAddressArgs{Owner: owner})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			validator, _, err := skillchain_program.GetValidatorAddress(&skillchain_program.GetValidatorAddressArgs{Validator: wallet})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			return skillchain_program.NewUpdateSkillScoreInstruction(
				&skillchain_program.UpdateSkillScoreInstructionAccounts{
					UserProfile: profile,
					User:        owner,
					Validator:   validator,
				},
				&skillchain_program.UpdateSkillScoreInstructionArgs{ScoreDelta: delta},
			), nil, nil
		}
	})
	cmd.Flags().StringVar(&validatorWallet, "validator", "", "validator wallet")
	cmd.Flags().Int16Var(&delta, "delta", 0, "signed score delta")
	_ = cmd.MarkFlagRequired("validator")
	return cmd
}

func createEscrowCommand() *cobra.Command {
	var testId string
	var amount uint64
	var daoBps, projectBps, rewardPoolBps uint64

	cmd := newSubmitSubcommand("create-escrow", "Fund a test escrow from the signer", cobra.NoArgs, func(_ []string) instructionBuilder {
		return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
			if len(testId) == 0 {
				testId = newEscrowTestId()
				logrus.StandardLogger().WithField("test_id", testId).Info("generated escrow test id")
			}

			shares, err := skillchain.ComputeShares(amount, &skillchain.ShareSplit{
				DaoBasisPoints:        daoBps,
				ProjectBasisPoints:    projectBps,
				RewardPoolBasisPoints: rewardPoolBps,
			})
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			escrow, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{TestId: testId})
			if err != nil {
				return solana.Instruction{}, nil, errors.Wrapf(err, "test id %q", testId)
			}

			return skillchain_program.NewCreateEscrowInstruction(
				&skillchain_program.CreateEscrowInstructionAccounts{
					Escrow: escrow,
					Payer:  signer.Public().(ed25519.PublicKey),
				},
				&skillchain_program.CreateEscrowInstructionArgs{
					TestId:          testId,
					Amount:          amount,
					DaoShare:        shares.Dao,
					ProjectShare:    shares.Project,
					RewardPoolShare: shares.RewardPool,
				},
			), nil, nil
		}
	})
	cmd.Flags().StringVar(&testId, "test-id", "", "escrow test id, generated when empty")
	cmd.Flags().Uint64Var(&amount, "amount", 0, "escrowed lamports")
	cmd.Flags().Uint64Var(&daoBps, "dao-bps", 4500, "DAO share in basis points")
	cmd.Flags().Uint64Var(&projectBps, "project-bps", 3000, "project share in basis points")
	cmd.Flags().Uint64Var(&rewardPoolBps, "reward-pool-bps", 2500, "reward pool share in basis points")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func distributeRewardsCommand(registry ed25519.PublicKey) *cobra.Command {
	var daoTreasury, projectTreasury, rewardPool string

	cmd := newSubmitSubcommand("distribute-rewards <test-id>", "Pay out a test escrow", cobra.ExactArgs(1), func(args []string) instructionBuilder {
		return func(signer ed25519.PrivateKey) (solana.Instruction, []ed25519.PrivateKey, error) {
			dao, err := parsePublicKey("dao-treasury", daoTreasury)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			project, err := parsePublicKey("project-treasury", projectTreasury)
			if err != nil {
				return solana.Instruction{}, nil, err
			}
			pool, err := parsePublicKey("reward-pool", rewardPool)
			if err != nil {
				return solana.Instruction{}, nil, err
			}

			escrow, _, err := skillchain_program.GetEscrowAddress(&skillchain_program.GetEscrowAddressArgs{TestId: args[0]})
			if err != nil {
				return solana.Instruction{}, nil, errors.Wrapf(err, "test id %q", args[0])
			}

			return skillchain_program.NewDistributeRewardsInstruction(
				&skillchain_program.DistributeRewardsInstructionAccounts{
					Escrow:          escrow,
					DaoTreasury:     dao,
					ProjectTreasury: project,
					RewardPool:      pool,
					Authority:       signer.Public().(ed25519.PublicKey),
					Registry:        registry,
				},
				&skillchain_program.DistributeRewardsInstructionArgs{TestId: args[0]},
			), nil, nil
		}
	})
	cmd.Flags().StringVar(&daoTreasury, "dao-treasury", "", "DAO treasury wallet")
	cmd.Flags().StringVar(&projectTreasury, "project-treasury", "", "project treasury wallet")
	cmd.Flags().StringVar(&rewardPool, "reward-pool", "", "reward pool wallet")
	_ = cmd.MarkFlagRequired("dao-treasury")
	_ = cmd.MarkFlagRequired("project-treasury")
	_ = cmd.MarkFlagRequired("reward-pool")
	return cmd
}

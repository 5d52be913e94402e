package runtime

import (
	"context"
	"crypto/ed25519"
	"math"
	"math/bits"
	"time"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	code_data "github.com/bri1545/SkillChain/pkg/code/data"
	"github.com/bri1545/SkillChain/pkg/code/data/ledger"
	"github.com/bri1545/SkillChain/pkg/metrics"
	"github.com/bri1545/SkillChain/pkg/solana"
	"github.com/bri1545/SkillChain/pkg/sync"
)

// Program processes instructions addressed to its program ID
type Program interface {
	ProgramID() ed25519.PublicKey

	// InstructionName returns a human readable name for the instruction data,
	// used for logging and metrics
	InstructionName(data []byte) string

	Process(ctx context.Context, ixCtx *InstructionContext) error
}

// Option configures a Runtime
type Option func(*Runtime)

// WithClock overrides the clock used to timestamp instructions
func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		r.now = now
	}
}

// Runtime executes signed instructions against the ledger. Each instruction
// runs in a single ledger transaction and either fully commits or leaves no
// trace.
type Runtime struct {
	log  *logrus.Entry
	conf *conf
	data code_data.Provider

	programs map[string]Program

	accountLocks *sync.StripedLock

	now func() time.Time
}

func New(data code_data.Provider, configProvider ConfigProvider, opts ...Option) *Runtime {
	conf := configProvider()

	stripes := conf.stripedLockParallelization.Get(context.Background())
	if stripes == 0 {
		stripes = defaultStripedLockParallelization
	}

	r := &Runtime{
		log:          logrus.StandardLogger().WithField("type", "code/runtime"),
		conf:         conf,
		data:         data,
		programs:     make(map[string]Program),
		accountLocks: sync.NewStripedLock(uint(stripes)),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RegisterProgram makes a program available for execution. It is not safe to
// call concurrently with Execute.
func (r *Runtime) RegisterProgram(program Program) {
	r.programs[string(program.ProgramID())] = program
}

// ExecuteSigned signs the instruction with the provided keys and executes it
func (r *Runtime) ExecuteSigned(ctx context.Context, ix solana.Instruction, keys ...ed25519.PrivateKey) error {
	signatures := make(map[string]solana.Signature)
	for _, key := range keys {
		pub := key.Public().(ed25519.PublicKey)
		signatures[base58.Encode(pub)] = solana.SignInstruction(key, ix)
	}
	return r.Execute(ctx, ix, signatures)
}

// Execute verifies and executes an instruction. Signatures are keyed by the
// base58 encoded public key of the signer, and must cover ix.Message().
func (r *Runtime) Execute(ctx context.Context, ix solana.Instruction, signatures map[string]solana.Signature) (err error) {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Execute")
	defer tracer.End()

	if err := ix.Validate(); err != nil {
		tracer.OnError(err)
		return err
	}

	programName := base58.Encode(ix.Program)
	instructionName := "unknown"

	log := r.log.WithFields(logrus.Fields{
		"method":  "Execute",
		"program": programName,
	})

	defer func() {
		recordInstructionResult(programName, instructionName, err)
		tracer.OnError(err)
	}()

	program, ok := r.programs[string(ix.Program)]
	if !ok {
		return ErrUnknownProgram
	}

	instructionName = program.InstructionName(ix.Data)
	log = log.WithField("instruction", instructionName)
	tracer.AddAttribute("instruction", instructionName)

	if err := VerifySignatures(ix, signatures); err != nil {
		return err
	}

	var writable [][]byte
	for _, account := range ix.Accounts {
		if account.IsWritable {
			writable = append(writable, account.PublicKey)
		}
	}
	unlock := r.accountLocks.LockAll(writable...)
	defer unlock()

	start := time.Now()
	err = r.data.ExecuteInTx(ctx, func(ctx context.Context) error {
		ixCtx, err := r.loadInstructionContext(ctx, program.ProgramID(), ix)
		if err != nil {
			return err
		}

		if err := program.Process(ctx, ixCtx); err != nil {
			return err
		}

		return r.commit(ctx, ixCtx)
	})
	metrics.RecordDuration(ctx, instructionTxMetricName, time.Since(start))
	if err != nil {
		log.WithError(err).Debug("instruction failed")
		return err
	}

	metrics.RecordEvent(ctx, instructionExecutedEventName, map[string]interface{}{
		"program":     programName,
		"instruction": instructionName,
	})
	log.Trace("instruction executed")

	return nil
}

// VerifySignatures checks that every signer of ix has a valid signature over
// ix.Message() in signatures.
func VerifySignatures(ix solana.Instruction, signatures map[string]solana.Signature) error {
	for _, signer := range ix.Signers() {
		sig, ok := signatures[base58.Encode(signer)]
		if !ok {
			return errors.Wrapf(ErrMissingRequiredSignature, "account %s", base58.Encode(signer))
		}

		if err := solana.VerifyInstruction(signer, ix, sig); err != nil {
			return errors.Wrapf(err, "account %s", base58.Encode(signer))
		}
	}
	return nil
}

// GetAccount returns the committed state of an account
func (r *Runtime) GetAccount(ctx context.Context, key ed25519.PublicKey) (*AccountInfo, error) {
	record, err := r.data.GetAccount(ctx, base58.Encode(key))
	if err != nil {
		return nil, err
	}
	return newAccountInfo(key, false, false, record)
}

// Airdrop credits lamports to a system account, creating it if it doesn't
// exist. It is only available when enabled through config.
func (r *Runtime) Airdrop(ctx context.Context, key ed25519.PublicKey, lamports uint64) error {
	tracer := metrics.TraceMethodCall(ctx, metricsStructName, "Airdrop")
	defer tracer.End()

	err := func() error {
		if !r.conf.enableAirdrops.Get(ctx) {
			return ErrAirdropsDisabled
		}

		if lamports > r.conf.maxAirdropLamports.Get(ctx) {
			return ErrAirdropAmountExceedsLimit
		}

		// Balances never exceed math.MaxInt64
		if lamports > math.MaxInt64 {
			return ErrLamportOverflow
		}

		if len(key) != ed25519.PublicKeySize {
			return solana.ErrInvalidPublicKey
		}

		unlock := r.accountLocks.LockAll(key)
		defer unlock()

		return r.data.ExecuteInTx(ctx, func(ctx context.Context) error {
			address := base58.Encode(key)

			record, err := r.data.GetAccount(ctx, address)
			if err == ledger.ErrAccountNotFound {
				return r.data.CreateAccount(ctx, &ledger.Record{
					Address:  address,
					Owner:    base58.Encode(SYSTEM_PROGRAM_ID),
					Lamports: lamports,
				})
			} else if err != nil {
				return err
			}

			if record.Owner != base58.Encode(SYSTEM_PROGRAM_ID) {
				return ErrAirdropToProgramOwnedAccount
			}

			if record.Lamports > math.MaxInt64-lamports {
				return ErrLamportOverflow
			}

			record.Lamports += lamports
			return r.data.UpdateAccount(ctx, record)
		})
	}()
	if err != nil {
		tracer.OnError(err)
		return err
	}

	lamportsAirdropped.Add(float64(lamports))
	metrics.RecordCount(ctx, airdropCountMetricName, 1)

	r.log.WithFields(logrus.Fields{
		"method":    "Airdrop",
		"recipient": base58.Encode(key),
		"lamports":  lamports,
	}).Info("lamports airdropped")
	return nil
}

func (r *Runtime) loadInstructionContext(ctx context.Context, programID ed25519.PublicKey, ix solana.Instruction) (*InstructionContext, error) {
	ixCtx := newInstructionContext(programID, ix, r.now())

	for _, meta := range ix.Accounts {
		if existing, ok := ixCtx.byKey[string(meta.PublicKey)]; ok {
			existing.IsSigner = existing.IsSigner || meta.IsSigner
			existing.IsWritable = existing.IsWritable || meta.IsWritable
			continue
		}

		record, err := r.data.GetAccount(ctx, base58.Encode(meta.PublicKey))
		if err == ledger.ErrAccountNotFound {
			record = nil
		} else if err != nil {
			return nil, errors.Wrap(err, "error loading account")
		}

		info, err := newAccountInfo(meta.PublicKey, meta.IsSigner, meta.IsWritable, record)
		if err != nil {
			return nil, errors.Wrap(err, "error decoding account")
		}
		ixCtx.addAccount(info)
	}

	return ixCtx, nil
}

func (r *Runtime) commit(ctx context.Context, ixCtx *InstructionContext) error {
	var before, after, carry uint64
	for _, account := range ixCtx.accounts {
		if account.record != nil {
			before, carry = bits.Add64(before, account.record.Lamports, 0)
			if carry != 0 {
				return ErrLamportOverflow
			}
		}

		after, carry = bits.Add64(after, account.Lamports, 0)
		if carry != 0 {
			return ErrLamportOverflow
		}
	}
	if before != after {
		return ErrUnbalancedInstruction
	}

	for _, account := range ixCtx.accounts {
		if !account.isModified() {
			continue
		}

		if !account.IsWritable {
			return errors.Wrapf(ErrReadonlyAccountModified, "account %s", base58.Encode(account.Key))
		}

		record := account.toRecord()
		if account.record == nil {
			if err := r.data.CreateAccount(ctx, record); err != nil {
				return errors.Wrapf(err, "error creating account %s", record.Address)
			}
			continue
		}

		if err := r.data.UpdateAccount(ctx, record); err != nil {
			return errors.Wrapf(err, "error updating account %s", record.Address)
		}
	}

	return nil
}

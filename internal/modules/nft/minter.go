package nft

import (
	"context"
	"errors"
	"math/big"
	"net"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/certchain-backend/internal/domain/faults"
	"github.com/yungbote/certchain-backend/internal/observability"
	"github.com/yungbote/certchain-backend/internal/platform/evm"
	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// Contract is the subset of an ERC-721 deployment the minter drives.
type Contract interface {
	ContractAddress() string
	SignMint(ctx context.Context, to, tokenURI string) (evm.Tx, error)
	Send(ctx context.Context, tx evm.Tx) error
	WaitMined(ctx context.Context, tx evm.Tx) (evm.Receipt, error)
	NextTokenID(ctx context.Context) (*big.Int, error)
}

type Result struct {
	TransactionHash   string `json:"transactionHash"`
	TransactionStatus uint64 `json:"transactionStatus"`
	TokenID           string `json:"tokenId"`
}

type MinterDeps struct {
	Contract       Contract
	Log            *logger.Logger
	Metrics        *observability.Metrics
	SubmitTimeout  time.Duration
	ConfirmTimeout time.Duration
}

// Minter mints certificate tokens. Mints are serialized process-wide: the
// token id is recovered from the contract counter right after confirmation,
// which only holds while this signer has one mint in flight.
type Minter struct {
	sem      chan struct{}
	contract Contract
	log      *logger.Logger
	metrics  *observability.Metrics
	submit   time.Duration
	confirm  time.Duration
}

func NewMinter(deps MinterDeps) *Minter {
	submit := deps.SubmitTimeout
	if submit <= 0 {
		submit = 30 * time.Second
	}
	confirm := deps.ConfirmTimeout
	if confirm <= 0 {
		confirm = 2 * time.Minute
	}
	return &Minter{
		sem:      make(chan struct{}, 1),
		contract: deps.Contract,
		log:      deps.Log.Named("minter"),
		metrics:  deps.Metrics,
		submit:   submit,
		confirm:  confirm,
	}
}

func (m *Minter) ContractAddress() string {
	return m.contract.ContractAddress()
}

func (m *Minter) Mint(ctx context.Context, to, tokenURI string) (res Result, err error) {
	to = strings.TrimSpace(to)
	tokenURI = strings.TrimSpace(tokenURI)
	if !evm.IsAddress(to) {
		return Result{}, faults.Validation("minter.validate", "malformed recipient address")
	}
	if tokenURI == "" {
		return Result{}, faults.Validation("minter.validate", "tokenURI is required")
	}

	ctx, span := otel.Tracer("certchain/nft").Start(ctx, "minter.mint")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(faults.CodeOf(err)))
			m.metrics.Mint("error")
		} else {
			span.SetAttributes(attribute.String("tx_hash", res.TransactionHash), attribute.String("token_id", res.TokenID))
			m.metrics.Mint("ok")
		}
		span.End()
	}()

	select {
	case m.sem <- struct{}{}:
	case <-ctx.Done():
		m.log.Warn("gave up waiting for an earlier mint", "error", ctx.Err())
		return Result{}, faults.Classify(faults.CodeChainUnavailable, faults.OpMinterQueue, ctx.Err())
	}
	defer func() { <-m.sem }()

	submitCtx, cancel := context.WithTimeout(ctx, m.submit)
	defer cancel()

	tx, err := m.contract.SignMint(submitCtx, to, tokenURI)
	if err != nil {
		m.log.Warn("mint signing failed", "error", err)
		return Result{}, classifyChain(faults.OpMinterSign, err)
	}
	log := m.log.With("tx_hash", tx.Hash)

	if err := m.contract.Send(submitCtx, tx); err != nil {
		log.Warn("mint submission failed", "error", err)
		return Result{}, classifyChain(faults.OpMinterSubmit, err)
	}
	log.Info("mint submitted")

	confirmCtx, cancel := context.WithTimeout(ctx, m.confirm)
	rcpt, err := m.contract.WaitMined(confirmCtx, tx)
	cancel()
	if err != nil {
		log.Warn("mint confirmation failed", "error", err)
		return Result{}, classifyChain(faults.OpMinterConfirm, err)
	}
	if rcpt.Status != evm.ReceiptSuccessful {
		log.Warn("mint reverted", "status", rcpt.Status, "block", rcpt.BlockNumber)
		return Result{}, faults.New(faults.CodeChainRejected, faults.OpMinterReverted, "transaction mined with failed status", nil)
	}

	counter, err := m.contract.NextTokenID(ctx)
	if err != nil {
		return Result{}, classifyChain(faults.OpMinterCounter, err)
	}
	tokenID, err := TokenIDFromCounter(counter)
	if err != nil {
		return Result{}, err
	}

	hash := rcpt.TxHash
	if hash == "" {
		hash = tx.Hash
	}
	log.Info("mint confirmed", "token_id", tokenID, "block", rcpt.BlockNumber)
	return Result{TransactionHash: hash, TransactionStatus: rcpt.Status, TokenID: tokenID}, nil
}

// TokenIDFromCounter recovers the id of the token just minted from the
// contract's post-mint counter.
func TokenIDFromCounter(counter *big.Int) (string, error) {
	if counter == nil || counter.Sign() <= 0 {
		return "", faults.New(faults.CodeValidation, faults.OpMinterCounter, "token counter is zero after mint", nil)
	}
	return new(big.Int).Sub(counter, big.NewInt(1)).String(), nil
}

func classifyChain(op string, err error) error {
	var fe *faults.Error
	if errors.As(err, &fe) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !errors.Is(err, context.DeadlineExceeded) {
		return faults.New(faults.CodeChainUnavailable, op, "rpc unreachable", err)
	}
	return faults.Classify(faults.CodeChainUnavailable, op, err)
}

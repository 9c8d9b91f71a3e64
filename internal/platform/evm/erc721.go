package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/yungbote/certchain-backend/internal/platform/logger"
)

// Only the two methods the minter calls.
const erc721ABI = `[
  {"type":"function","name":"safeMint","stateMutability":"nonpayable",
   "inputs":[{"name":"to","type":"address"},{"name":"uri","type":"string"}],"outputs":[]},
  {"type":"function","name":"nextTokenId","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

type Config struct {
	RPCURL          string
	PrivateKey      string
	ContractAddress string
}

// Tx is a signed, not yet broadcast mint transaction.
type Tx struct {
	Hash string
	raw  *types.Transaction
}

type Receipt struct {
	TxHash      string
	Status      uint64
	BlockNumber uint64
}

// ERC721 drives a deployed ERC-721 contract exposing safeMint and nextTokenId.
type ERC721 struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	address  common.Address
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	log      *logger.Logger
}

func Dial(ctx context.Context, cfg Config, log *logger.Logger) (*ERC721, error) {
	rpc := strings.TrimSpace(cfg.RPCURL)
	addr := strings.TrimSpace(cfg.ContractAddress)
	if rpc == "" || strings.TrimSpace(cfg.PrivateKey) == "" || addr == "" {
		return nil, errors.New("RPC_URL, PRIVATE_KEY and CONTRACT_ADDRESS must be set")
	}
	if !common.IsHexAddress(addr) {
		return nil, fmt.Errorf("invalid CONTRACT_ADDRESS %q: expected a 20-byte hex address", addr)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
	if err != nil {
		return nil, errors.New("invalid PRIVATE_KEY")
	}
	parsed, err := abi.JSON(strings.NewReader(erc721ABI))
	if err != nil {
		return nil, fmt.Errorf("parse erc721 abi: %w", err)
	}
	client, err := ethclient.DialContext(ctx, rpc)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("read chain id: %w", err)
	}
	address := common.HexToAddress(addr)
	serviceLog := log.Named("evm").With("contract", address.Hex(), "chain_id", chainID.String())
	serviceLog.Info("connected to chain", "signer", crypto.PubkeyToAddress(key.PublicKey).Hex())
	return &ERC721{
		client:   client,
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		address:  address,
		key:      key,
		chainID:  chainID,
		log:      serviceLog,
	}, nil
}

func (c *ERC721) Close() { c.client.Close() }

func (c *ERC721) ContractAddress() string { return c.address.Hex() }

// SignMint builds and signs safeMint(to, tokenURI) without broadcasting it.
// Nonce and gas are filled from the node.
func (c *ERC721) SignMint(ctx context.Context, to, tokenURI string) (Tx, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return Tx{}, err
	}
	auth.Context = ctx
	auth.NoSend = true
	tx, err := c.contract.Transact(auth, "safeMint", common.HexToAddress(to), tokenURI)
	if err != nil {
		return Tx{}, err
	}
	return Tx{Hash: tx.Hash().Hex(), raw: tx}, nil
}

func (c *ERC721) Send(ctx context.Context, tx Tx) error {
	if tx.raw == nil {
		return errors.New("transaction was not signed by this client")
	}
	return c.client.SendTransaction(ctx, tx.raw)
}

// WaitMined blocks until the transaction is included or ctx ends.
func (c *ERC721) WaitMined(ctx context.Context, tx Tx) (Receipt, error) {
	if tx.raw == nil {
		return Receipt{}, errors.New("transaction was not signed by this client")
	}
	rcpt, err := bind.WaitMined(ctx, c.client, tx.raw)
	if err != nil {
		return Receipt{}, err
	}
	out := Receipt{TxHash: rcpt.TxHash.Hex(), Status: rcpt.Status}
	if rcpt.BlockNumber != nil {
		out.BlockNumber = rcpt.BlockNumber.Uint64()
	}
	return out, nil
}

func (c *ERC721) NextTokenID(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "nextTokenId"); err != nil {
		return nil, err
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("nextTokenId returned %d values", len(out))
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("nextTokenId returned %T", out[0])
	}
	return n, nil
}

// IsAddress reports whether s is a 0x-prefixed or bare 20-byte hex address.
func IsAddress(s string) bool {
	return common.IsHexAddress(strings.TrimSpace(s))
}

// ReceiptSuccessful mirrors types.ReceiptStatusSuccessful.
const ReceiptSuccessful = types.ReceiptStatusSuccessful

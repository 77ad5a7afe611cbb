package pipeline

import (
	"context"
	"fmt"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"

	"github.com/ipfs-force-community/cosmos-gateway/metrics"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

var log = logging.Logger("pipeline")

// ProtoEncoder turns transaction parts into ledger bytes and back.
type ProtoEncoder interface {
	TxProto(ctx context.Context, req *types.TxProtoRequest) (*types.TxProto, error)
	TxProtoBytes(ctx context.Context, req *types.TxProtoBytesRequest) (string, error)
}

// pipeline steps, used as metric tags
const (
	stepAccount   = "account"
	stepProto     = "proto"
	stepSign      = "sign"
	stepAssemble  = "assemble"
	stepBroadcast = "broadcast"
)

// Pipeline drives the wallet of one session through signing and
// broadcasting. It holds no lock, concurrent pipelines on the same session
// are the caller's business.
type Pipeline struct {
	sess    *session.Session
	encoder ProtoEncoder
}

func New(sess *session.Session, encoder ProtoEncoder) *Pipeline {
	return &Pipeline{sess: sess, encoder: encoder}
}

func (p *Pipeline) wallet() wallet.Wallet {
	return p.sess.Wallet()
}

func (p *Pipeline) chainID() string {
	return p.sess.ChainID()
}

func (p *Pipeline) tagged(ctx context.Context) context.Context {
	ctx, _ = tag.New(ctx,
		tag.Upsert(metrics.ChainIDKey, p.chainID()),
		tag.Upsert(metrics.WalletNameKey, p.sess.Entry().Name),
	)
	return ctx
}

func recordStep(ctx context.Context, step string, start time.Time) {
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.StepKey, step)},
		metrics.PipelineStep.M(metrics.SinceInMilliseconds(start)))
}

func recordResult(ctx context.Context, err error) {
	result := "confirmed"
	if err != nil {
		result = types.ErrorKind(err)
		if result == types.KindUnknown {
			result = "error"
		}
	}
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(metrics.ResultKey, result)}, metrics.PipelineResult.M(1))
}

// account returns the current account, refusing ledger accounts when
// direct signing is needed.
func (p *Pipeline) account(direct bool) (*types.Account, error) {
	account, err := p.sess.RequireAccount()
	if err != nil {
		return nil, err
	}
	if direct && account.IsLedger {
		return nil, types.ErrLedgerUnsupported
	}
	return account, nil
}

// SignAndSendTransaction builds the transaction with the encoding service,
// has the wallet sign it, assembles and broadcasts it and returns the hash.
func (p *Pipeline) SignAndSendTransaction(ctx context.Context, props *types.TransactionProps, opts *types.SignOptions) (txHash string, err error) {
	ctx = p.tagged(ctx)
	defer func() { recordResult(ctx, err) }()
	pipeLog := log.With("chain", p.chainID(), "wallet", p.sess.Entry().Name)

	start := time.Now()
	account, err := p.account(true)
	recordStep(ctx, stepAccount, start)
	if err != nil {
		return "", err
	}

	if props == nil {
		props = &types.TransactionProps{}
	}
	start = time.Now()
	proto, err := p.encoder.TxProto(ctx, &types.TxProtoRequest{
		ChainID: p.chainID(),
		Signer:  account.Address,
		PublicKey: types.ProtoPublicKey{
			TypeURL: types.PublicKeyTypeURL(account.PublicKey.Type),
			Key:     account.PublicKey.Value,
		},
		Messages: props.Messages,
		Fee:      props.Fee,
		Memo:     props.Memo,
		Sequence: props.Sequence,
	})
	recordStep(ctx, stepProto, start)
	if err != nil {
		pipeLog.Warnf("build proto failed: %v", err)
		return "", err
	}
	pipeLog.Debugf("proto built, account number %s", proto.AccountNumber)

	start = time.Now()
	signed, err := p.wallet().SignDirect(ctx, p.chainID(), &types.SignDirectDoc{
		ChainID:       p.chainID(),
		AccountNumber: proto.AccountNumber,
		AuthInfoBytes: proto.AuthInfoBytes,
		BodyBytes:     proto.BodyBytes,
	}, opts)
	recordStep(ctx, stepSign, start)
	if err != nil {
		pipeLog.Warnf("sign direct failed: %v", err)
		return "", err
	}
	if signed == nil {
		pipeLog.Warnf("sign direct returned no response")
		return "", fmt.Errorf("%s returned no signature: %s", p.sess.Entry().Name, types.UnknownErrorMessage)
	}

	start = time.Now()
	tx, err := p.encoder.TxProtoBytes(ctx, &types.TxProtoBytesRequest{
		Signature:     signed.Signature,
		AuthInfoBytes: signed.SignedDoc.AuthInfoBytes,
		BodyBytes:     signed.SignedDoc.BodyBytes,
	})
	recordStep(ctx, stepAssemble, start)
	if err != nil {
		pipeLog.Warnf("assemble tx failed: %v", err)
		return "", err
	}

	start = time.Now()
	txHash, err = p.broadcast(ctx, tx, types.DefaultBroadcastMode)
	recordStep(ctx, stepBroadcast, start)
	if err != nil {
		pipeLog.Warnf("broadcast failed: %v", err)
		return "", err
	}
	pipeLog.Infof("transaction %s confirmed", txHash)
	return txHash, nil
}

func (p *Pipeline) broadcast(ctx context.Context, tx string, mode types.BroadcastMode) (string, error) {
	if mode == types.BroadcastModeUnspecified {
		mode = types.DefaultBroadcastMode
	}
	resp, err := p.wallet().SendTransaction(ctx, p.chainID(), tx, mode)
	if err != nil {
		return "", err
	}
	return resp.Result()
}

// SignAmino signs doc with the session's chain id.
func (p *Pipeline) SignAmino(ctx context.Context, doc *types.SignAminoDoc, opts *types.SignOptions) (*types.SignAminoResponse, error) {
	if _, err := p.account(false); err != nil {
		return nil, err
	}
	withChain := types.SignAminoDoc{}
	if doc != nil {
		withChain = *doc
	}
	withChain.ChainID = p.chainID()
	return p.wallet().SignAmino(ctx, p.chainID(), &withChain, opts)
}

// SignDirect signs doc with the session's chain id. Ledger accounts cannot
// sign direct documents.
func (p *Pipeline) SignDirect(ctx context.Context, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	if _, err := p.account(true); err != nil {
		return nil, err
	}
	withChain := types.SignDirectDoc{}
	if doc != nil {
		withChain = *doc
	}
	withChain.ChainID = p.chainID()
	return p.wallet().SignDirect(ctx, p.chainID(), &withChain, opts)
}

// SendTransaction broadcasts an already assembled transaction. Mode 0 means
// the default sync mode.
func (p *Pipeline) SendTransaction(ctx context.Context, tx string, mode types.BroadcastMode) (txHash string, err error) {
	ctx = p.tagged(ctx)
	defer func() { recordResult(ctx, err) }()
	if _, err := p.account(false); err != nil {
		return "", err
	}
	start := time.Now()
	txHash, err = p.broadcast(ctx, tx, mode)
	recordStep(ctx, stepBroadcast, start)
	return txHash, err
}

func (p *Pipeline) SignMessage(ctx context.Context, message string) (*types.SignMessageResponse, error) {
	account, err := p.account(false)
	if err != nil {
		return nil, err
	}
	signer, err := wallet.AsMessageSigner(p.wallet())
	if err != nil {
		return nil, err
	}
	return signer.SignMessage(ctx, p.chainID(), account.Address, message)
}

func (p *Pipeline) VerifyMessage(ctx context.Context, message, signature string) (bool, error) {
	account, err := p.account(false)
	if err != nil {
		return false, err
	}
	verifier, err := wallet.AsMessageVerifier(p.wallet())
	if err != nil {
		return false, err
	}
	return verifier.VerifyMessage(ctx, p.chainID(), account.Address, message, signature, account.PublicKey.Value)
}

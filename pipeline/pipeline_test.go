package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/cosmos-gateway/protoservice"
	"github.com/ipfs-force-community/cosmos-gateway/registry"
	"github.com/ipfs-force-community/cosmos-gateway/session"
	"github.com/ipfs-force-community/cosmos-gateway/testhelper"
	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

type env struct {
	wallet   *testhelper.MemWallet
	service  *testhelper.EncodingService
	session  *session.Session
	pipeline *Pipeline
}

func setupPipeline(t *testing.T, caps wallet.Capability, account *types.Account) *env {
	w := testhelper.NewMemWallet(caps)
	w.SetAccount(testhelper.TestChainID, account)
	entry, ok := registry.New().Register(w.Descriptor("keplr"))
	require.True(t, ok)

	svc := testhelper.NewEncodingService()
	t.Cleanup(svc.Close)

	sess := session.New(entry, testhelper.TestChainID)
	t.Cleanup(sess.Close)
	_, err := sess.Resolve(context.Background())
	require.NoError(t, err)

	return &env{
		wallet:   w,
		service:  svc,
		session:  sess,
		pipeline: New(sess, protoservice.NewClient(svc.URL, time.Second)),
	}
}

func sendProps() *types.TransactionProps {
	return &types.TransactionProps{
		Messages: []json.RawMessage{json.RawMessage(`{"type_url":"/cosmos.bank.v1beta1.MsgSend","value":{"amount":"1"}}`)},
		Fee:      json.RawMessage(`{"amount":[{"denom":"uatom","amount":"500"}],"gas":"200000"}`),
		Memo:     "test",
	}
}

func TestSignAndSendTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("confirmed", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())

		hash, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.NoError(t, err)
		require.Equal(t, "ABCDEF", hash)

		protoReq := e.service.LastProtoRequest()
		require.Equal(t, testhelper.TestChainID, protoReq.ChainID)
		require.Equal(t, testhelper.TestAddress, protoReq.Signer)
		require.Equal(t, types.ProtoPublicKey{TypeURL: "/cosmos.crypto.secp256k1.PubKey", Key: testhelper.TestPubKey}, protoReq.PublicKey)
		require.Equal(t, "test", protoReq.Memo)

		doc := e.wallet.LastSignDirect
		require.Equal(t, testhelper.TestChainID, doc.ChainID)
		require.Equal(t, "7", doc.AccountNumber)
		require.Equal(t, []byte{0x0a, 0x0b}, []byte(doc.AuthInfoBytes))
		require.Equal(t, []byte{0x0c, 0x0d}, []byte(doc.BodyBytes))

		require.JSONEq(t, `{"signature":"sig123","auth_info_bytes":"0a0b","body_bytes":"0c0d"}`, string(e.service.LastBytesRequest()))
		require.Equal(t, "deadbeef", e.wallet.LastTx)
		require.Equal(t, types.BroadcastModeSync, e.wallet.LastMode)
	})

	t.Run("rejected by network", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.wallet.SetSendResponse(&types.SendTransactionResponse{TxResponse: types.TxResponse{
			Code:   5,
			RawLog: json.RawMessage(`"insufficient funds"`),
		}})

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrBroadcastRejected)
		require.EqualError(t, err, "insufficient funds")
	})

	t.Run("rejected without string log", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.wallet.SetSendResponse(&types.SendTransactionResponse{TxResponse: types.TxResponse{
			Code:   5,
			RawLog: json.RawMessage(`{"nested":true}`),
		}})

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrBroadcastRejected)
		require.EqualError(t, err, types.UnknownErrorMessage)
	})

	t.Run("caller identity is ignored", func(t *testing.T) {
		account := testhelper.TestAccount()
		account.PublicKey.Type = types.PublicKeyEthSecp256k1
		e := setupPipeline(t, 0, account)

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.NoError(t, err)
		require.Equal(t, "/ethermint.crypto.v1.ethsecp256k1.PubKey", e.service.LastProtoRequest().PublicKey.TypeURL)
	})

	t.Run("signed doc wins over submitted doc", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.wallet.SetSignedDoc(&types.SignedDirectDoc{AuthInfoBytes: []byte{0xff}, BodyBytes: []byte{0x0c, 0x0d}})

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.NoError(t, err)
		require.JSONEq(t, `{"signature":"sig123","auth_info_bytes":"ff","body_bytes":"0c0d"}`, string(e.service.LastBytesRequest()))
	})

	t.Run("ledger account never reaches the encoding service", func(t *testing.T) {
		account := testhelper.TestAccount()
		account.IsLedger = true
		e := setupPipeline(t, 0, account)

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrLedgerUnsupported)
		protoCalls, bytesCalls := e.service.Calls()
		require.Equal(t, 0, protoCalls)
		require.Equal(t, 0, bytesCalls)
		require.Equal(t, 0, e.wallet.CallCount("SignDirect"))
	})

	t.Run("no account", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.session.Close()

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrAccountRequired)
		protoCalls, _ := e.service.Calls()
		require.Equal(t, 0, protoCalls)
	})

	t.Run("encoding service failure", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.service.Fail(http.StatusBadRequest, `{"message":["invalid fee","invalid memo"]}`)

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrEncodingService)
		require.EqualError(t, err, "invalid fee\ninvalid memo")
		require.Equal(t, 0, e.wallet.CallCount("SignDirect"))
	})

	t.Run("user rejects signing", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		e.wallet.SetFail(types.ErrUserRejected)

		_, err := e.pipeline.SignAndSendTransaction(ctx, sendProps(), nil)
		require.ErrorIs(t, err, types.ErrUserRejected)
		_, bytesCalls := e.service.Calls()
		require.Equal(t, 0, bytesCalls)
	})
}

func TestSharedFlows(t *testing.T) {
	ctx := context.Background()

	t.Run("sign amino injects chain id", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		opts := &types.SignOptions{EditMode: &types.EditMode{Fee: true}}
		resp, err := e.pipeline.SignAmino(ctx, &types.SignAminoDoc{ChainID: "other", Sequence: "1", Memo: "m"}, opts)
		require.NoError(t, err)
		require.Equal(t, "sig123", resp.Signature)
		require.Equal(t, testhelper.TestChainID, e.wallet.LastSignAmino.ChainID)
		require.Equal(t, "m", e.wallet.LastSignAmino.Memo)
		require.Equal(t, opts, e.wallet.LastSignOpts)
	})

	t.Run("sign amino allowed for ledger", func(t *testing.T) {
		account := testhelper.TestAccount()
		account.IsLedger = true
		e := setupPipeline(t, 0, account)
		_, err := e.pipeline.SignAmino(ctx, &types.SignAminoDoc{}, nil)
		require.NoError(t, err)
	})

	t.Run("sign direct", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		resp, err := e.pipeline.SignDirect(ctx, &types.SignDirectDoc{AccountNumber: "7", BodyBytes: []byte{1}}, nil)
		require.NoError(t, err)
		require.Equal(t, []byte{1}, []byte(resp.SignedDoc.BodyBytes))
		require.Equal(t, testhelper.TestChainID, e.wallet.LastSignDirect.ChainID)

		account := testhelper.TestAccount()
		account.IsLedger = true
		e = setupPipeline(t, 0, account)
		_, err = e.pipeline.SignDirect(ctx, &types.SignDirectDoc{}, nil)
		require.ErrorIs(t, err, types.ErrLedgerUnsupported)
		require.Equal(t, 0, e.wallet.CallCount("SignDirect"))
	})

	t.Run("send transaction", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		hash, err := e.pipeline.SendTransaction(ctx, "deadbeef", types.BroadcastModeUnspecified)
		require.NoError(t, err)
		require.Equal(t, "ABCDEF", hash)
		require.Equal(t, types.BroadcastModeSync, e.wallet.LastMode)

		_, err = e.pipeline.SendTransaction(ctx, "deadbeef", types.BroadcastModeAsync)
		require.NoError(t, err)
		require.Equal(t, types.BroadcastModeAsync, e.wallet.LastMode)
	})

	t.Run("message signing without capability", func(t *testing.T) {
		e := setupPipeline(t, 0, testhelper.TestAccount())
		_, err := e.pipeline.SignMessage(ctx, "hello")
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
		_, err = e.pipeline.VerifyMessage(ctx, "hello", "sig123")
		require.ErrorIs(t, err, types.ErrUnsupportedOperation)
		require.Equal(t, 0, e.wallet.CallCount("SignMessage"))
	})

	t.Run("message signing with capability", func(t *testing.T) {
		e := setupPipeline(t, wallet.CapSignMessage|wallet.CapVerifyMessage, testhelper.TestAccount())
		resp, err := e.pipeline.SignMessage(ctx, "hello")
		require.NoError(t, err)
		require.Equal(t, "sig123", resp.Signature)

		ok, err := e.pipeline.VerifyMessage(ctx, "hello", "sig123")
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = e.pipeline.VerifyMessage(ctx, "hello", "forged")
		require.NoError(t, err)
		require.False(t, ok)
	})
}

func TestAddChain(t *testing.T) {
	ctx := context.Background()
	chain := &types.ChainDescriptor{ChainID: "mychain-1", ChainName: "mychain", AddressPrefix: "my"}

	w := testhelper.NewMemWallet(0)
	require.ErrorIs(t, AddChain(ctx, w, chain), types.ErrUnsupportedOperation)
	require.Empty(t, w.AddedChains())

	w = testhelper.NewMemWallet(wallet.CapAddChain)
	require.NoError(t, AddChain(ctx, w, chain))
	require.Equal(t, []*types.ChainDescriptor{chain}, w.AddedChains())

	require.EqualError(t, AddChain(ctx, w, nil), "add chain: chain descriptor is empty")
	require.Len(t, w.AddedChains(), 1)
}

// silentWallet answers SignDirect without a response or an error.
type silentWallet struct {
	*testhelper.MemWallet
}

func (s *silentWallet) SignDirect(ctx context.Context, chainID string, doc *types.SignDirectDoc, opts *types.SignOptions) (*types.SignDirectResponse, error) {
	return nil, nil
}

func TestSignAndSendWithoutSignature(t *testing.T) {
	w := testhelper.NewMemWallet(0)
	w.SetAccount(testhelper.TestChainID, testhelper.TestAccount())
	desc := w.Descriptor("keplr")
	desc.Wallet = &silentWallet{MemWallet: w}
	entry, ok := registry.New().Register(desc)
	require.True(t, ok)

	svc := testhelper.NewEncodingService()
	defer svc.Close()
	sess := session.New(entry, testhelper.TestChainID)
	defer sess.Close()
	_, err := sess.Resolve(context.Background())
	require.NoError(t, err)

	p := New(sess, protoservice.NewClient(svc.URL, time.Second))
	_, err = p.SignAndSendTransaction(context.Background(), sendProps(), nil)
	require.EqualError(t, err, "keplr returned no signature: "+types.UnknownErrorMessage)
	_, bytesCalls := svc.Calls()
	require.Equal(t, 0, bytesCalls)
	require.Equal(t, 0, w.CallCount("SendTransaction"))
}

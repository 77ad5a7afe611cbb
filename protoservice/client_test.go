package protoservice

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/cosmos-gateway/testhelper"
	"github.com/ipfs-force-community/cosmos-gateway/types"
)

func TestTxProto(t *testing.T) {
	ctx := context.Background()
	svc := testhelper.NewEncodingService()
	defer svc.Close()
	client := NewClient(svc.URL+"/", time.Second)

	req := &types.TxProtoRequest{
		ChainID:   testhelper.TestChainID,
		Signer:    testhelper.TestAddress,
		PublicKey: types.ProtoPublicKey{TypeURL: "/cosmos.crypto.secp256k1.PubKey", Key: testhelper.TestPubKey},
		Messages:  []json.RawMessage{json.RawMessage(`{"type_url":"/cosmos.bank.v1beta1.MsgSend"}`)},
		Memo:      "hi",
	}
	proto, err := client.TxProto(ctx, req)
	require.NoError(t, err)
	require.Equal(t, []byte{0x0a, 0x0b}, []byte(proto.AuthInfoBytes))
	require.Equal(t, []byte{0x0c, 0x0d}, []byte(proto.BodyBytes))
	require.Equal(t, "7", proto.AccountNumber)
	require.Equal(t, req, svc.LastProtoRequest())

	tx, err := client.TxProtoBytes(ctx, &types.TxProtoBytesRequest{
		Signature:     "sig123",
		AuthInfoBytes: proto.AuthInfoBytes,
		BodyBytes:     proto.BodyBytes,
	})
	require.NoError(t, err)
	require.Equal(t, "deadbeef", tx)
	require.JSONEq(t, `{"signature":"sig123","auth_info_bytes":"0a0b","body_bytes":"0c0d"}`, string(svc.LastBytesRequest()))
}

func TestEncodingServiceError(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name   string
		body   string
		expect string
	}{
		{"single message", `{"message":"invalid fee"}`, "invalid fee"},
		{"message list", `{"message":["invalid fee","invalid memo"]}`, "invalid fee\ninvalid memo"},
		{"plain text", "bad gateway", "bad gateway"},
		{"empty body", "", types.UnknownErrorMessage},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			svc := testhelper.NewEncodingService()
			defer svc.Close()
			svc.Fail(http.StatusBadRequest, c.body)
			client := NewClient(svc.URL, time.Second)

			_, err := client.TxProto(ctx, &types.TxProtoRequest{})
			require.ErrorIs(t, err, types.ErrEncodingService)
			require.EqualError(t, err, c.expect)

			_, err = client.TxProtoBytes(ctx, &types.TxProtoBytesRequest{})
			var serr *types.EncodingServiceError
			require.ErrorAs(t, err, &serr)
			require.Equal(t, http.StatusBadRequest, serr.StatusCode)
		})
	}
}

func TestUnreachable(t *testing.T) {
	svc := testhelper.NewEncodingService()
	url := svc.URL
	svc.Close()

	_, err := NewClient(url, time.Second).TxProto(context.Background(), &types.TxProtoRequest{})
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrEncodingService)
}

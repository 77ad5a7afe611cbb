package types

import (
	"encoding/json"

	"github.com/ipfs-force-community/cosmos-gateway/codec"
)

// EditMode tells the wallet whether the user may edit fee or memo before
// signing.
type EditMode struct {
	Fee  bool `json:"fee"`
	Memo bool `json:"memo"`
}

// SignOptions is optional for every sign call. A nil EditMode leaves the
// decision to the wallet.
type SignOptions struct {
	Signer   string    `json:"signer,omitempty"`
	EditMode *EditMode `json:"edit_mode,omitempty"`
}

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

type Fee struct {
	Amount []Coin `json:"amount,omitempty"`
	Gas    string `json:"gas"`
}

type AminoMsg struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

type SignAminoDoc struct {
	ChainID       string     `json:"chain_id"`
	Sequence      string     `json:"sequence"`
	AccountNumber string     `json:"account_number"`
	Fee           Fee        `json:"fee"`
	Memo          string     `json:"memo"`
	Msgs          []AminoMsg `json:"msgs"`
}

type SignAminoResponse struct {
	PublicKey *PublicKey      `json:"public_key,omitempty"`
	Signature string          `json:"signature"`
	SignedDoc json.RawMessage `json:"signed_doc"`
}

type SignDirectDoc struct {
	ChainID       string         `json:"chain_id"`
	AccountNumber string         `json:"account_number"`
	AuthInfoBytes codec.HexBytes `json:"auth_info_bytes"`
	BodyBytes     codec.HexBytes `json:"body_bytes"`
}

// SignedDirectDoc holds the bytes the wallet actually signed. They can differ
// from the submitted document when the user edited fee or memo.
type SignedDirectDoc struct {
	AuthInfoBytes codec.HexBytes `json:"auth_info_bytes"`
	BodyBytes     codec.HexBytes `json:"body_bytes"`
}

type SignDirectResponse struct {
	PublicKey *PublicKey      `json:"public_key,omitempty"`
	Signature string          `json:"signature"`
	SignedDoc SignedDirectDoc `json:"signed_doc"`
}

type SignMessageResponse struct {
	PublicKey *PublicKey `json:"public_key,omitempty"`
	Signature string     `json:"signature"`
}

type BroadcastMode int

const (
	BroadcastModeUnspecified BroadcastMode = 0
	BroadcastModeBlock       BroadcastMode = 1
	BroadcastModeSync        BroadcastMode = 2
	BroadcastModeAsync       BroadcastMode = 3

	DefaultBroadcastMode = BroadcastModeSync
)

type TxResponse struct {
	Code      int64           `json:"code"`
	TxHash    string          `json:"txhash"`
	RawLog    json.RawMessage `json:"raw_log,omitempty"`
	Codespace json.RawMessage `json:"codespace,omitempty"`
	Height    json.RawMessage `json:"height,omitempty"`
	GasWanted json.RawMessage `json:"gas_wanted,omitempty"`
	GasUsed   json.RawMessage `json:"gas_used,omitempty"`
	Log       json.RawMessage `json:"log,omitempty"`
	Info      json.RawMessage `json:"info,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Events    json.RawMessage `json:"events,omitempty"`
	Tx        json.RawMessage `json:"tx,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

type SendTransactionResponse struct {
	TxResponse TxResponse `json:"tx_response"`
}

// Result interprets the broadcast status. Code 0 yields the tx hash, any other
// code a BroadcastRejectedError carrying raw_log when it is a string.
func (r *SendTransactionResponse) Result() (string, error) {
	if r == nil {
		return "", &BroadcastRejectedError{Log: UnknownErrorMessage}
	}
	if r.TxResponse.Code == 0 {
		return r.TxResponse.TxHash, nil
	}

	var rawLog string
	if len(r.TxResponse.RawLog) > 0 {
		if err := json.Unmarshal(r.TxResponse.RawLog, &rawLog); err != nil {
			rawLog = ""
		}
	}
	if rawLog == "" {
		rawLog = UnknownErrorMessage
	}
	return "", &BroadcastRejectedError{Code: r.TxResponse.Code, Log: rawLog}
}

// ProtoPublicKey is the public key shape of the encoding service.
type ProtoPublicKey struct {
	TypeURL string `json:"type_url"`
	Key     string `json:"key"`
}

// TxProtoRequest is the body of POST /proto.
type TxProtoRequest struct {
	ChainID   string            `json:"chain_id"`
	Signer    string            `json:"signer"`
	PublicKey ProtoPublicKey    `json:"public_key"`
	Messages  []json.RawMessage `json:"messages"`
	Fee       json.RawMessage   `json:"fee,omitempty"`
	Memo      string            `json:"memo,omitempty"`
	Sequence  string            `json:"sequence,omitempty"`
}

// TxProto is the unsigned transaction returned by POST /proto.
type TxProto struct {
	AuthInfoBytes codec.HexBytes `json:"auth_info_bytes"`
	BodyBytes     codec.HexBytes `json:"body_bytes"`
	AccountNumber string         `json:"account_number"`
	ChainID       string         `json:"chain_id"`
}

// TxProtoBytesRequest is the body of POST /proto/bytes.
type TxProtoBytesRequest struct {
	Signature     string         `json:"signature"`
	AuthInfoBytes codec.HexBytes `json:"auth_info_bytes"`
	BodyBytes     codec.HexBytes `json:"body_bytes"`
}

// TransactionProps are the caller supplied parts of a transaction. Identity
// fields (chain id, signer, public key) are always derived from the account.
type TransactionProps struct {
	Messages []json.RawMessage `json:"messages"`
	Fee      json.RawMessage   `json:"fee,omitempty"`
	Memo     string            `json:"memo,omitempty"`
	Sequence string            `json:"sequence,omitempty"`
}

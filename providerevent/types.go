package providerevent

import (
	"time"

	"github.com/google/uuid"

	"github.com/ipfs-force-community/cosmos-gateway/types"
	"github.com/ipfs-force-community/cosmos-gateway/wallet"
)

// request methods sent down a provider connection
const (
	MethodInitConnect       = "InitConnect"
	MethodSupportedChainIDs = "SupportedChainIDs"
	MethodRequestAccount    = "RequestAccount"
	MethodSignAmino         = "SignAmino"
	MethodSignDirect        = "SignDirect"
	MethodSendTransaction   = "SendTransaction"
	MethodSignMessage       = "SignMessage"
	MethodVerifyMessage     = "VerifyMessage"
	MethodDisconnect        = "Disconnect"
	MethodAddChain          = "AddChain"
)

// ProviderRegisterPolicy is sent by a provider when it connects.
type ProviderRegisterPolicy struct {
	Name         string
	Logo         string
	Capabilities wallet.Capability
}

type ConnectedCompleted struct {
	ChannelID uuid.UUID
	WalletID  uuid.UUID
}

type ProviderDetail struct {
	Name         string
	Logo         string
	WalletID     uuid.UUID
	Capabilities []string
	Connected    bool
	ChannelID    uuid.UUID
	IP           string
	RequestCount int
	CreateTime   time.Time
}

type ChainRequest struct {
	ChainID string
}

type SignAminoRequest struct {
	ChainID string
	Doc     *types.SignAminoDoc
	Options *types.SignOptions
}

type SignDirectRequest struct {
	ChainID string
	Doc     *types.SignDirectDoc
	Options *types.SignOptions
}

type SendTransactionRequest struct {
	ChainID string
	Tx      string
	Mode    types.BroadcastMode
}

type SignMessageRequest struct {
	ChainID string
	Signer  string
	Message string
}

type VerifyMessageRequest struct {
	ChainID   string
	Signer    string
	Message   string
	Signature string
	PublicKey string
}

type AddChainRequest struct {
	Chain *types.ChainDescriptor
}

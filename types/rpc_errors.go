package types

import (
	"encoding/json"

	"github.com/filecoin-project/go-jsonrpc"
)

// RPCError carries a taxonomy error across json rpc. errors.Is and errors.As
// see the rebuilt taxonomy error through Unwrap.
type RPCError struct {
	Kind    string
	Message string
}

func (e *RPCError) Error() string {
	return e.Message
}

func (e *RPCError) Unwrap() error {
	return ErrorFromKind(e.Kind, e.Message)
}

type rpcErrorJSON struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *RPCError) MarshalJSON() ([]byte, error) {
	return json.Marshal(rpcErrorJSON{Kind: e.Kind, Message: e.Message})
}

func (e *RPCError) UnmarshalJSON(data []byte) error {
	var v rpcErrorJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	e.Kind, e.Message = v.Kind, v.Message
	return nil
}

const ECosmosWallet = jsonrpc.FirstUserCode

// RPCErrors is passed to both the rpc server and its clients.
var RPCErrors = jsonrpc.NewErrors()

func init() {
	RPCErrors.Register(ECosmosWallet, new(*RPCError))
}

// WrapRPCError turns taxonomy errors into an RPCError, other errors are
// returned unchanged.
func WrapRPCError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*RPCError); ok {
		return err
	}
	kind := ErrorKind(err)
	if kind == KindUnknown {
		return err
	}
	return &RPCError{Kind: kind, Message: err.Error()}
}

package testhelper

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ipfs-force-community/cosmos-gateway/types"
)

// EncodingService is a stand-in for the proto encoding service.
type EncodingService struct {
	*httptest.Server

	lk         sync.Mutex
	proto      *types.TxProto
	txBytes    string
	failStatus int
	failBody   string

	ProtoCalls      int
	BytesCalls      int
	LastProtoReq    *types.TxProtoRequest
	LastBytesReqRaw []byte
}

func NewEncodingService() *EncodingService {
	s := &EncodingService{
		proto: &types.TxProto{
			AuthInfoBytes: []byte{0x0a, 0x0b},
			BodyBytes:     []byte{0x0c, 0x0d},
			AccountNumber: "7",
			ChainID:       TestChainID,
		},
		txBytes: "deadbeef",
	}

	router := mux.NewRouter()
	router.HandleFunc("/proto", s.handleProto).Methods(http.MethodPost)
	router.HandleFunc("/proto/bytes", s.handleBytes).Methods(http.MethodPost)
	s.Server = httptest.NewServer(router)
	return s
}

func (s *EncodingService) SetProto(proto *types.TxProto) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.proto = proto
}

func (s *EncodingService) SetTxBytes(tx string) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.txBytes = tx
}

// Fail makes every endpoint answer status with body.
func (s *EncodingService) Fail(status int, body string) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.failStatus = status
	s.failBody = body
}

func (s *EncodingService) Calls() (proto int, bytes int) {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.ProtoCalls, s.BytesCalls
}

func (s *EncodingService) LastBytesRequest() []byte {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.LastBytesReqRaw
}

func (s *EncodingService) LastProtoRequest() *types.TxProtoRequest {
	s.lk.Lock()
	defer s.lk.Unlock()
	return s.LastProtoReq
}

func (s *EncodingService) failed(w http.ResponseWriter) bool {
	if s.failStatus == 0 {
		return false
	}
	w.WriteHeader(s.failStatus)
	_, _ = w.Write([]byte(s.failBody))
	return true
}

func (s *EncodingService) handleProto(w http.ResponseWriter, r *http.Request) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.ProtoCalls++

	var req types.TxProtoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": err.Error()})
		return
	}
	s.LastProtoReq = &req
	if s.failed(w) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.proto)
}

func (s *EncodingService) handleBytes(w http.ResponseWriter, r *http.Request) {
	s.lk.Lock()
	defer s.lk.Unlock()
	s.BytesCalls++

	body, _ := io.ReadAll(r.Body)
	s.LastBytesReqRaw = body
	if s.failed(w) {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(s.txBytes))
}

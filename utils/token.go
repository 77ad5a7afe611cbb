package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"strings"
)

const TokenFile = "token"

// LocalToken is the shared secret non local callers present as a bearer
// token. It is written to the repo so local tools can pick it up.
type LocalToken struct {
	repo  string
	Token string
}

// NewLocalToken uses token when it is set, otherwise it generates a random one.
func NewLocalToken(repo, token string) (*LocalToken, error) {
	if token == "" {
		buf, err := ioutil.ReadAll(io.LimitReader(rand.Reader, 32))
		if err != nil {
			return nil, err
		}
		token = hex.EncodeToString(buf)
	}
	return &LocalToken{repo: repo, Token: token}, nil
}

func (l *LocalToken) SaveToken() error {
	if err := os.MkdirAll(l.repo, 0755); err != nil {
		return err
	}
	return ioutil.WriteFile(path.Join(l.repo, TokenFile), []byte(l.Token), 0600)
}

// ReadToken reads the token saved in repo.
func ReadToken(repo string) (string, error) {
	data, err := ioutil.ReadFile(path.Join(repo, TokenFile))
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

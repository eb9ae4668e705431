// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package auth

import (
	"net/url"
)

// Query parameters a flow trigger URL may already carry its access key in.
const (
	ParamCode      = "code"
	ParamSignature = "sig"
)

// KeySigner appends the flow access key to trigger URLs as a query parameter.
type KeySigner struct {
	Key   string
	Param string
}

// NewKeySigner constructs a signer for key, placing it under param
// (ParamSignature when empty).
func NewKeySigner(key, param string) *KeySigner {
	if param == "" {
		param = ParamSignature
	}
	return &KeySigner{
		Key:   key,
		Param: param,
	}
}

// Sign adds the key to u unless no key is configured or u already carries
// a recognized key parameter. It reports whether u was modified.
func (s *KeySigner) Sign(u *url.URL) bool {
	if s == nil || s.Key == "" || u == nil {
		return false
	}

	query := u.Query()
	if query.Has(ParamCode) || query.Has(ParamSignature) || query.Has(s.Param) {
		return false
	}

	query.Set(s.Param, s.Key)
	u.RawQuery = query.Encode()
	return true
}

//go:build !wolfcrypt_dylib

package main

import (
	"errors"
	"os"
	"strings"

	"github.com/dashpay/creditbridge/crypto"
)

func loadCryptoProvider() (crypto.CryptoProvider, func(), error) {
	v := os.Getenv("CREDITBRIDGE_WOLFCRYPT_STRICT")
	if v == "1" || strings.EqualFold(v, "true") {
		return nil, func() {}, errors.New("CREDITBRIDGE_WOLFCRYPT_STRICT=1 requires a wolfcrypt_dylib build")
	}
	return crypto.NativeCryptoProvider{}, func() {}, nil
}


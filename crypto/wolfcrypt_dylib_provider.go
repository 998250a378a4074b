//go:build wolfcrypt_dylib

package crypto

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>

typedef int32_t (*creditbridge_sha3_256_fn)(const uint8_t*, size_t, uint8_t*);
typedef int32_t (*creditbridge_verify_fn)(const uint8_t*, size_t, const uint8_t*, size_t, const uint8_t*);

typedef struct {
	void* handle;
	creditbridge_sha3_256_fn sha3_256;
	creditbridge_verify_fn verify_bls12381;
	creditbridge_verify_fn verify_ed25519;
} creditbridge_wc_provider_t;

static int creditbridge_wc_load(creditbridge_wc_provider_t* p, const char* path) {
	p->handle = dlopen(path, RTLD_LAZY);
	if (!p->handle) return -1;

	p->sha3_256 = (creditbridge_sha3_256_fn)dlsym(p->handle, "creditbridge_wc_sha3_256");
	p->verify_bls12381 = (creditbridge_verify_fn)dlsym(p->handle, "creditbridge_wc_verify_bls12381");
	p->verify_ed25519 = (creditbridge_verify_fn)dlsym(p->handle, "creditbridge_wc_verify_ed25519");

	if (!p->sha3_256 || !p->verify_bls12381 || !p->verify_ed25519) {
		dlclose(p->handle);
		p->handle = NULL;
		return -2;
	}
	return 0;
}

static int32_t creditbridge_wc_sha3_256_call(creditbridge_wc_provider_t* p, const uint8_t* input, size_t len, uint8_t* out) {
	if (!p || !p->sha3_256) {
		return -1;
	}
	return p->sha3_256(input, len, out);
}

static int32_t creditbridge_wc_verify_bls12381_call(
	creditbridge_wc_provider_t* p,
	const uint8_t* pk,
	size_t pk_len,
	const uint8_t* sig,
	size_t sig_len,
	const uint8_t* digest
) {
	if (!p || !p->verify_bls12381) {
		return -1;
	}
	return p->verify_bls12381(pk, pk_len, sig, sig_len, digest);
}

static int32_t creditbridge_wc_verify_ed25519_call(
	creditbridge_wc_provider_t* p,
	const uint8_t* pk,
	size_t pk_len,
	const uint8_t* sig,
	size_t sig_len,
	const uint8_t* digest
) {
	if (!p || !p->verify_ed25519) {
		return -1;
	}
	return p->verify_ed25519(pk, pk_len, sig, sig_len, digest);
}

static void creditbridge_wc_close(creditbridge_wc_provider_t* p) {
	if (p->handle) {
		dlclose(p->handle);
		p->handle = NULL;
	}
}
*/
import "C"

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"unsafe"

	"golang.org/x/crypto/sha3"
)

// WolfcryptDylibProvider loads a local shim dylib exposing the stable
// creditbridge wolfCrypt ABI. The shim is expected to be provided by the
// compliance build pipeline and linked to wolfCrypt.
type WolfcryptDylibProvider struct {
	p C.creditbridge_wc_provider_t
}

// LoadWolfcryptDylibProviderFromEnv loads the shim from CREDITBRIDGE_WOLFCRYPT_SHIM_PATH.
func LoadWolfcryptDylibProviderFromEnv() (*WolfcryptDylibProvider, error) {
	path, ok := os.LookupEnv("CREDITBRIDGE_WOLFCRYPT_SHIM_PATH")
	if !ok || path == "" {
		return nil, errors.New("CREDITBRIDGE_WOLFCRYPT_SHIM_PATH is not set")
	}
	strict := func() bool {
		v := os.Getenv("CREDITBRIDGE_WOLFCRYPT_STRICT")
		return v == "1" || strings.EqualFold(v, "true")
	}()

	if expected := os.Getenv("CREDITBRIDGE_WOLFCRYPT_SHIM_SHA3_256"); expected != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		h := sha3.New256()
		if _, err := io.Copy(h, f); err != nil {
			return nil, err
		}
		sum := h.Sum(nil)
		actual := hex.EncodeToString(sum)
		if actual != strings.ToLower(expected) {
			return nil, errors.New("wolfcrypt shim hash mismatch (CREDITBRIDGE_WOLFCRYPT_SHIM_SHA3_256)")
		}
	} else if strict {
		return nil, errors.New("CREDITBRIDGE_WOLFCRYPT_SHIM_SHA3_256 required when CREDITBRIDGE_WOLFCRYPT_STRICT=1")
	}
	return LoadWolfcryptDylibProvider(path)
}

func LoadWolfcryptDylibProvider(path string) (*WolfcryptDylibProvider, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	var p C.creditbridge_wc_provider_t
	rc := C.creditbridge_wc_load(&p, cpath)
	if rc != 0 {
		return nil, errors.New("failed to load wolfcrypt shim dylib")
	}

	prov := &WolfcryptDylibProvider{p: p}
	runtime.SetFinalizer(prov, func(x *WolfcryptDylibProvider) { C.creditbridge_wc_close(&x.p) })
	return prov, nil
}

func (w *WolfcryptDylibProvider) SHA3_256(input []byte) ([32]byte, error) {
	var out [32]byte
	if len(input) == 0 {
		rc := C.int32_t(C.creditbridge_wc_sha3_256_call(&w.p, nil, 0, (*C.uint8_t)(unsafe.Pointer(&out[0]))))
		if rc != 1 {
			return out, fmt.Errorf("wolfcrypt shim error: creditbridge_wc_sha3_256 rc=%d", rc)
		}
		return out, nil
	}
	rc := C.int32_t(C.creditbridge_wc_sha3_256_call(&w.p, (*C.uint8_t)(unsafe.Pointer(&input[0])), C.size_t(len(input)), (*C.uint8_t)(unsafe.Pointer(&out[0]))))
	if rc != 1 {
		return out, fmt.Errorf("wolfcrypt shim error: creditbridge_wc_sha3_256 rc=%d", rc)
	}
	return out, nil
}

func (w *WolfcryptDylibProvider) VerifyBLS12381(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	if len(pubkey) == 0 || len(sig) == 0 {
		return false
	}
	rc := C.int32_t(C.creditbridge_wc_verify_bls12381_call(
		&w.p,
		(*C.uint8_t)(unsafe.Pointer(&pubkey[0])), C.size_t(len(pubkey)),
		(*C.uint8_t)(unsafe.Pointer(&sig[0])), C.size_t(len(sig)),
		(*C.uint8_t)(unsafe.Pointer(&digest32[0])),
	))
	return rc == 1
}

func (w *WolfcryptDylibProvider) VerifyEd25519(pubkey []byte, sig []byte, digest32 [32]byte) bool {
	if len(pubkey) == 0 || len(sig) == 0 {
		return false
	}
	rc := C.int32_t(C.creditbridge_wc_verify_ed25519_call(
		&w.p,
		(*C.uint8_t)(unsafe.Pointer(&pubkey[0])), C.size_t(len(pubkey)),
		(*C.uint8_t)(unsafe.Pointer(&sig[0])), C.size_t(len(sig)),
		(*C.uint8_t)(unsafe.Pointer(&digest32[0])),
	))
	return rc == 1
}

package consensus

import (
	"errors"
	"testing"
)

func mustTxErrCode(t *testing.T, err error) ErrorCode {
	t.Helper()
	var txErr *TxError
	if !errors.As(err, &txErr) {
		t.Fatalf("expected *TxError, got %T (%v)", err, err)
	}
	return txErr.Code
}

func TestTxError_ErrorFormatsCodeAndMessage(t *testing.T) {
	err := txerr(ErrAssetLockType, "tx kind is not AssetLock")
	if err.Error() != "bad-assetlocktx-type: tx kind is not AssetLock" {
		t.Fatalf("unexpected Error() output: %q", err.Error())
	}
}

func TestTxError_ErrorOmitsColonWhenMessageEmpty(t *testing.T) {
	err := &TxError{Code: ErrAssetLockType}
	if err.Error() != "bad-assetlocktx-type" {
		t.Fatalf("unexpected Error() output: %q", err.Error())
	}
}

func TestTxError_SeverityClassification(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want Severity
	}{
		{ErrAssetLockType, SeverityStructural},
		{ErrCreditPoolUnlockTooMuch, SeverityAccounting},
		{ErrAssetUnlockNotVerified, SeverityConsensus},
		{ErrProcAssetLocksInBlock, SeverityFatal},
	}
	for _, c := range cases {
		err := &TxError{Code: c.code}
		if got := err.Severity(); got != c.want {
			t.Fatalf("Severity(%s) = %s, want %s", c.code, got, c.want)
		}
	}
}

func TestTxError_SeverityDefaultsToStructuralForUnregisteredCode(t *testing.T) {
	err := &TxError{Code: TxErrParse}
	if err.Severity() != SeverityStructural {
		t.Fatalf("expected default SeverityStructural, got %s", err.Severity())
	}
}

func TestWrapFatal_MapsToProcAssetLocksInBlock(t *testing.T) {
	cause := errors.New("boom")
	err := wrapFatal(cause)
	if mustTxErrCode(t, err) != ErrProcAssetLocksInBlock {
		t.Fatalf("expected ErrProcAssetLocksInBlock")
	}
	if wrapFatal(nil) != nil {
		t.Fatalf("wrapFatal(nil) must return nil")
	}
}

func TestErrorsAs_MatchesThroughStandardLibrary(t *testing.T) {
	err := txerr(ErrAssetUnlockTooLate, "expired")
	if mustTxErrCode(t, err) != ErrAssetUnlockTooLate {
		t.Fatalf("expected ErrAssetUnlockTooLate")
	}
}

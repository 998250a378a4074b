package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dashpay/creditbridge/consensus"
	"github.com/dashpay/creditbridge/crypto"
	"github.com/dashpay/creditbridge/node/store"
	"github.com/dashpay/creditbridge/quorum"
)

const chainIDDomainTag = "CREDITBRIDGE-GENESIS-v1"

func hexDecodeStrict(s string) ([]byte, error) {
	cleaned := strings.Join(strings.Fields(s), "")
	return hex.DecodeString(cleaned)
}

func parseChainIDHex(chainIDHex string) ([32]byte, error) {
	raw, err := hexDecodeStrict(chainIDHex)
	if err != nil {
		return [32]byte{}, fmt.Errorf("chain-id-hex: %w", err)
	}
	if len(raw) != 32 {
		return [32]byte{}, fmt.Errorf("chain-id-hex must decode to 32 bytes (got %d)", len(raw))
	}
	var out [32]byte
	copy(out[:], raw)
	return out, nil
}

// deriveChainID hashes the domain tag over the genesis block's full wire
// encoding, so two networks with distinct genesis blocks never collide even
// if their header bytes happen to match.
func deriveChainID(p crypto.CryptoProvider, genesisBlockBytes []byte) ([32]byte, error) {
	preimage := make([]byte, 0, len(chainIDDomainTag)+len(genesisBlockBytes))
	preimage = append(preimage, []byte(chainIDDomainTag)...)
	preimage = append(preimage, genesisBlockBytes...)
	return p.SHA3_256(preimage)
}

func readHexFlag(name string, hexStr string, hexFile string) (string, error) {
	if hexStr != "" && hexFile != "" {
		return "", fmt.Errorf("use exactly one of --%s or --%s-file", name, name)
	}
	if hexFile != "" {
		b, err := os.ReadFile(hexFile) // #nosec G304 -- path is a user-supplied CLI argument; operator controls the process.
		if err != nil {
			return "", fmt.Errorf("read --%s-file: %w", name, err)
		}
		s := strings.TrimSpace(string(b))
		if s == "" {
			return "", fmt.Errorf("--%s-file is empty", name)
		}
		return s, nil
	}
	if hexStr == "" {
		return "", fmt.Errorf("missing required flag: --%s (or --%s-file)", name, name)
	}
	return hexStr, nil
}

func cmdChainID(genesisHex string) error {
	p, cleanup, err := loadCryptoProvider()
	if err != nil {
		return err
	}
	defer cleanup()

	genesisBytes, err := hexDecodeStrict(genesisHex)
	if err != nil {
		return fmt.Errorf("genesis-hex: %w", err)
	}
	if _, err := consensus.ParseBlockBytes(genesisBytes); err != nil {
		return fmt.Errorf("genesis block: %w", err)
	}
	chainID, err := deriveChainID(p, genesisBytes)
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", chainID)
	return nil
}

func cmdTxID(txHex string) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	tx, err := consensus.ParseTxBytes(txBytes)
	if err != nil {
		return err
	}
	txid, err := consensus.TxID(&tx)
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", txid)
	return nil
}

func cmdParse(txHex string) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	if _, err := consensus.ParseTxBytes(txBytes); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdCompactSize(encodedHex string) error {
	encoded, err := hexDecodeStrict(encodedHex)
	if err != nil {
		return fmt.Errorf("encoded-hex: %w", err)
	}
	value, _, err := consensus.DecodeCompactSize(encoded)
	if err != nil {
		return err
	}
	fmt.Printf("%d\n", value)
	return nil
}

func cmdSighash(chainID [32]byte, txHex string, inputIndex uint32, inputValue uint64) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	tx, err := consensus.ParseTxBytes(txBytes)
	if err != nil {
		return err
	}
	digest, err := consensus.SighashV1Digest(&tx, inputIndex, inputValue, chainID)
	if err != nil {
		return err
	}
	fmt.Printf("%x\n", digest)
	return nil
}

func cmdVerifySpend(
	p crypto.CryptoProvider,
	chainID [32]byte,
	txHex string,
	inputIndex uint32,
	prevoutValue uint64,
	prevoutScriptHex string,
	prevoutCreationHeight uint64,
	prevoutCreatedByCoinbase bool,
	chainHeight uint64,
) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	tx, err := consensus.ParseTxBytes(txBytes)
	if err != nil {
		return err
	}
	script, err := hexDecodeStrict(prevoutScriptHex)
	if err != nil {
		return fmt.Errorf("prevout-script-hex: %w", err)
	}
	prevout := consensus.UtxoEntry{
		Output:            consensus.TxOutput{Value: prevoutValue, Script: script},
		CreationHeight:    prevoutCreationHeight,
		CreatedByCoinbase: prevoutCreatedByCoinbase,
	}
	verifier := crypto.Ed25519Adapter{Provider: p}
	if err := consensus.ValidateP2PKHSpend(&tx, inputIndex, prevout, chainHeight, chainID, verifier); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdValidateLock(txHex string) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	tx, err := consensus.ParseTxBytes(txBytes)
	if err != nil {
		return err
	}
	if _, err := consensus.ValidateAssetLockTx(&tx); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdValidateUnlockStructure(txHex string) error {
	txBytes, err := hexDecodeStrict(txHex)
	if err != nil {
		return fmt.Errorf("tx hex: %w", err)
	}
	tx, err := consensus.ParseTxBytes(txBytes)
	if err != nil {
		return err
	}
	if _, err := consensus.ValidateAssetUnlockTxStructure(&tx); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

// openQuorumManager opens the chain's dedicated quorum store, creating it
// on first use alongside the block-index bbolt file. Call sites share the
// DevnetParams() ChainParams profile until a network-selection flag exists.
func openQuorumManager(datadir string, chainIDHex string) (*quorum.BoltManager, error) {
	chainDir := store.ChainDir(datadir, chainIDHex)
	path := filepath.Join(chainDir, "db", "quorums.db")
	return quorum.OpenBoltManager(path)
}

func cmdInitDatadir(datadir string, chainIDHex string, genesisHex string) error {
	p, cleanup, err := loadCryptoProvider()
	if err != nil {
		return err
	}
	defer cleanup()

	genesisBytes, err := hexDecodeStrict(genesisHex)
	if err != nil {
		return fmt.Errorf("genesis-hex: %w", err)
	}
	chainID, err := parseChainIDHex(chainIDHex)
	if err != nil {
		return err
	}

	db, err := store.Open(datadir, chainIDHex)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if db.Manifest() != nil {
		fmt.Println("OK")
		return nil
	}

	quorums, err := openQuorumManager(datadir, chainIDHex)
	if err != nil {
		return err
	}
	defer func() { _ = quorums.Close() }()

	ctx := &consensus.Context{
		Index:     db.Index(),
		Store:     db.Store(),
		Quorums:   quorums,
		Params:    quorum.DevnetParams(),
		Snapshots: consensus.NewSnapshotCache(consensus.SnapshotCacheCapacity),
	}
	verifier := crypto.Ed25519Adapter{Provider: p}
	if err := db.InitGenesis(ctx, verifier, chainID, genesisBytes); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func cmdImportBlock(datadir string, chainIDHex string, blockHex string, localTime uint64, localTimeSet bool) (string, error) {
	p, cleanup, err := loadCryptoProvider()
	if err != nil {
		return "", err
	}
	defer cleanup()

	chainID, err := parseChainIDHex(chainIDHex)
	if err != nil {
		return "", err
	}

	db, err := store.Open(datadir, chainIDHex)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()

	blockBytes, err := hexDecodeStrict(blockHex)
	if err != nil {
		return "", fmt.Errorf("block hex: %w", err)
	}

	quorums, err := openQuorumManager(datadir, chainIDHex)
	if err != nil {
		return "", err
	}
	defer func() { _ = quorums.Close() }()

	ctx := &consensus.Context{
		Index:       db.Index(),
		Store:       db.Store(),
		Quorums:     quorums,
		Params:      quorum.DevnetParams(),
		Snapshots:   consensus.NewSnapshotCache(consensus.SnapshotCacheCapacity),
		BLSVerifier: crypto.BLSAdapter{Provider: p},
	}
	verifier := crypto.Ed25519Adapter{Provider: p}
	decision, err := db.ApplyBlockIfBestTip(ctx, verifier, chainID, blockBytes, store.ApplyOptions{
		LocalTime:    localTime,
		LocalTimeSet: localTimeSet,
	})
	if err != nil {
		return "", err
	}
	return string(decision), nil
}

func hasFlagArg(argv []string, name string) bool {
	want := "--" + name
	wantEq := want + "="
	for _, a := range argv {
		if a == want || strings.HasPrefix(a, wantEq) {
			return true
		}
	}
	return false
}

const usageCommands = "commands: version | init --datadir <path> --chain-id-hex <hex64> (--genesis-hex <hex> | --genesis-hex-file <path>) | import-block --datadir <path> --chain-id-hex <hex64> [--local-time <u64>] (--block-hex <hex> | --block-hex-file <path>) | chain-id (--genesis-hex <hex> | --genesis-hex-file <path>) | compactsize --encoded-hex <hex> | parse (--tx-hex <hex> | --tx-hex-file <path>) | txid (--tx-hex <hex> | --tx-hex-file <path>) | sighash (--tx-hex <hex> | --tx-hex-file <path>) --input-index <u32> --input-value <u64> --chain-id-hex <hex64> | verify-spend (--tx-hex <hex> | --tx-hex-file <path>) --input-index <u32> --chain-id-hex <hex64> --prevout-value <u64> --prevout-script-hex <hex> [--prevout-creation-height <u64> --prevout-created-by-coinbase --chain-height <u64>] | validate-lock (--tx-hex <hex> | --tx-hex-file <path>) | validate-unlock-structure (--tx-hex <hex> | --tx-hex-file <path>)"

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: creditbridge-node <command> [args]")
	fmt.Fprintln(os.Stderr, usageCommands)
}

func cmdVersionMain() int {
	fmt.Println("creditbridge-node (go): scaffold v1")
	return 0
}

func cmdChainIDMain(argv []string) int {
	fs := flag.NewFlagSet("chain-id", flag.ExitOnError)
	genesisHex := fs.String("genesis-hex", "", "genesis block hex bytes (BlockBytes)")
	genesisHexFile := fs.String("genesis-hex-file", "", "path to file containing genesis block hex bytes")
	_ = fs.Parse(argv)
	resolved, err := readHexFlag("genesis-hex", *genesisHex, *genesisHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdChainID(resolved); err != nil {
		fmt.Fprintln(os.Stderr, "chain-id error:", err)
		return 1
	}
	return 0
}

func cmdInitMain(argv []string) int {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	datadir := fs.String("datadir", "", "data directory root")
	chainIDHex := fs.String("chain-id-hex", "", "chain id (64 hex chars)")
	genesisHex := fs.String("genesis-hex", "", "genesis block hex bytes (BlockBytes)")
	genesisHexFile := fs.String("genesis-hex-file", "", "path to file containing genesis block hex bytes")
	_ = fs.Parse(argv)
	if *datadir == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --datadir")
		return 2
	}
	if *chainIDHex == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --chain-id-hex")
		return 2
	}
	resolved, err := readHexFlag("genesis-hex", *genesisHex, *genesisHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdInitDatadir(*datadir, *chainIDHex, resolved); err != nil {
		fmt.Fprintln(os.Stderr, "init error:", err)
		return 1
	}
	return 0
}

func cmdImportBlockMain(argv []string) int {
	fs := flag.NewFlagSet("import-block", flag.ExitOnError)
	datadir := fs.String("datadir", "", "data directory root")
	chainIDHex := fs.String("chain-id-hex", "", "chain id (64 hex chars)")
	blockHex := fs.String("block-hex", "", "block hex bytes (BlockBytes)")
	blockHexFile := fs.String("block-hex-file", "", "path to file containing block hex bytes")
	localTime := fs.Uint64("local-time", 0, "local time (seconds since UNIX epoch)")
	_ = fs.Parse(argv)
	if *datadir == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --datadir")
		return 2
	}
	if *chainIDHex == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --chain-id-hex")
		return 2
	}
	resolved, err := readHexFlag("block-hex", *blockHex, *blockHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	out, err := cmdImportBlock(*datadir, *chainIDHex, resolved, *localTime, hasFlagArg(argv, "local-time"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "import-block error:", err)
		return 1
	}
	fmt.Println(out)
	return 0
}

func readTxHexFlag(txHex, txHexFile string) (string, error) {
	return readHexFlag("tx-hex", txHex, txHexFile)
}

func cmdTxIDMain(argv []string) int {
	fs := flag.NewFlagSet("txid", flag.ExitOnError)
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	_ = fs.Parse(argv)
	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdTxID(resolved); err != nil {
		fmt.Fprintln(os.Stderr, "txid error:", err)
		return 1
	}
	return 0
}

func cmdParseMain(argv []string) int {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	_ = fs.Parse(argv)
	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdParse(resolved); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdCompactSizeMain(argv []string) int {
	fs := flag.NewFlagSet("compactsize", flag.ExitOnError)
	encodedHex := fs.String("encoded-hex", "", "CompactSize payload in hex")
	_ = fs.Parse(argv)
	if *encodedHex == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --encoded-hex")
		return 2
	}
	if err := cmdCompactSize(*encodedHex); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func cmdSighashMain(argv []string) int {
	fs := flag.NewFlagSet("sighash", flag.ExitOnError)
	chainIDHex := fs.String("chain-id-hex", "", "chain id (64 hex chars)")
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	inputIndex := fs.Uint("input-index", 0, "0-based input index")
	inputValue := fs.Uint64("input-value", 0, "input UTXO value (u64)")
	_ = fs.Parse(argv)
	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *chainIDHex == "" {
		fmt.Fprintln(os.Stderr, "missing required flag: --chain-id-hex")
		return 2
	}
	if uint64(*inputIndex) > uint64(^uint32(0)) {
		fmt.Fprintln(os.Stderr, "input-index exceeds 32-bit bound")
		return 2
	}
	chainID, err := parseChainIDHex(*chainIDHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	// #nosec G115 -- inputIndex is bounded above by uint32 max.
	if err := cmdSighash(chainID, resolved, uint32(*inputIndex), *inputValue); err != nil {
		fmt.Fprintln(os.Stderr, "sighash error:", err)
		return 1
	}
	return 0
}

func cmdVerifySpendMain(argv []string) int {
	fs := flag.NewFlagSet("verify-spend", flag.ExitOnError)
	chainIDHex := fs.String("chain-id-hex", "", "chain id (64 hex chars)")
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	inputIndex := fs.Uint("input-index", 0, "0-based input index")
	prevoutValue := fs.Uint64("prevout-value", 0, "prevout value (u64)")
	prevoutScriptHex := fs.String("prevout-script-hex", "", "hex-encoded prevout script")
	prevoutCreationHeight := fs.Uint64("prevout-creation-height", 0, "prevout creation height")
	prevoutCreatedByCoinbase := fs.Bool("prevout-created-by-coinbase", false, "prevout was created by a coinbase tx")
	chainHeight := fs.Uint64("chain-height", 0, "chain height context")
	_ = fs.Parse(argv)

	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *chainIDHex == "" || *prevoutScriptHex == "" {
		fmt.Fprintln(os.Stderr, "missing required flags: --chain-id-hex and --prevout-script-hex")
		return 2
	}
	if uint64(*inputIndex) > uint64(^uint32(0)) {
		fmt.Fprintln(os.Stderr, "input-index exceeds 32-bit bound")
		return 2
	}
	chainID, err := parseChainIDHex(*chainIDHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	p, cleanup, err := loadCryptoProvider()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer cleanup()

	if err := cmdVerifySpend(
		p,
		chainID,
		resolved,
		uint32(*inputIndex), // #nosec G115 -- inputIndex is bounded above by uint32 max.
		*prevoutValue,
		*prevoutScriptHex,
		*prevoutCreationHeight,
		*prevoutCreatedByCoinbase,
		*chainHeight,
	); err != nil {
		fmt.Fprintln(os.Stderr, "verify-spend error:", err)
		return 1
	}
	return 0
}

func cmdValidateLockMain(argv []string) int {
	fs := flag.NewFlagSet("validate-lock", flag.ExitOnError)
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	_ = fs.Parse(argv)
	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdValidateLock(resolved); err != nil {
		fmt.Fprintln(os.Stderr, "validate-lock error:", err)
		return 1
	}
	return 0
}

func cmdValidateUnlockStructureMain(argv []string) int {
	fs := flag.NewFlagSet("validate-unlock-structure", flag.ExitOnError)
	txHex := fs.String("tx-hex", "", "transaction hex bytes (TxBytes)")
	txHexFile := fs.String("tx-hex-file", "", "path to file containing transaction hex bytes")
	_ = fs.Parse(argv)
	resolved, err := readTxHexFlag(*txHex, *txHexFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if err := cmdValidateUnlockStructure(resolved); err != nil {
		fmt.Fprintln(os.Stderr, "validate-unlock-structure error:", err)
		return 1
	}
	return 0
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	command := os.Args[1]
	argv := os.Args[2:]
	exitCode := 0
	switch command {
	case "version":
		exitCode = cmdVersionMain()
	case "init":
		exitCode = cmdInitMain(argv)
	case "import-block":
		exitCode = cmdImportBlockMain(argv)
	case "compactsize":
		exitCode = cmdCompactSizeMain(argv)
	case "parse":
		exitCode = cmdParseMain(argv)
	case "chain-id":
		exitCode = cmdChainIDMain(argv)
	case "txid":
		exitCode = cmdTxIDMain(argv)
	case "sighash":
		exitCode = cmdSighashMain(argv)
	case "verify-spend":
		exitCode = cmdVerifySpendMain(argv)
	case "validate-lock":
		exitCode = cmdValidateLockMain(argv)
	case "validate-unlock-structure":
		exitCode = cmdValidateUnlockStructureMain(argv)
	default:
		fmt.Fprintln(os.Stderr, "unknown command")
		printUsage()
		exitCode = 2
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

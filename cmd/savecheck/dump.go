package main

import (
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/arloliu/factosave/bundle"
)

// dumpMode encodes with Core Deterministic Encoding so the same bundle
// always dumps to the same bytes.
var dumpMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("savecheck: CBOR encoder initialization failed: " + err.Error())
	}

	return mode
}()

func marshalDump(d *bundle.Decoded) ([]byte, error) {
	return dumpMode.Marshal(d)
}

func writeDump(path string, d *bundle.Decoded) error {
	data, err := marshalDump(d)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644) //nolint:gosec
}

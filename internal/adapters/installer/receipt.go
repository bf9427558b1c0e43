package installer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
	"go.trai.ch/tandem/internal/core/domain"
	"go.trai.ch/zerr"
)

// encMode uses Core Deterministic Encoding so the same package set always yields the
// same receipt bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("installer: CBOR encoder initialization failed: " + err.Error())
	}
}

func writeReceipt(dir string, receipt domain.Receipt) error {
	data, err := encMode.Marshal(receipt)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrReceiptWriteFailed, err.Error()), "path", dir)
	}
	path := filepath.Join(dir, domain.ReceiptFileName)
	if err := os.WriteFile(path, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrReceiptWriteFailed, "cannot write receipt"),
			"path", path), "reason", err.Error())
	}
	return nil
}

func readReceipt(dir string) (domain.Receipt, error) {
	path := filepath.Join(dir, domain.ReceiptFileName)
	//nolint:gosec // Path is inside an image directory
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Receipt{}, zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "dependency environment has no receipt"),
			"path", path)
	}
	if err != nil {
		return domain.Receipt{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, domain.ErrReceiptReadFailed.Error()),
			"path", path), "reason", err.Error())
	}

	var receipt domain.Receipt
	if err := cbor.Unmarshal(data, &receipt); err != nil {
		return domain.Receipt{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrMissingArtifact, "dependency environment receipt is corrupt"),
			"path", path), "reason", err.Error())
	}
	return receipt, nil
}

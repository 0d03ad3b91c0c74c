package modelfile

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxHeaderSize bounds the safetensors header we are willing to parse.
// Headers run from a few KB to tens of MB when training metadata carries
// large tag tables; anything past 100 MB is a damaged or hostile file.
const maxHeaderSize = 100 * 1024 * 1024

// ReadMetadata returns the __metadata__ string map from a safetensors
// file header. Files that are not safetensors containers, or containers
// without a metadata block, yield nil with no error; only an unreadable
// file is an error.
func ReadMetadata(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat model file: %w", err)
	}
	if info.Size() < 8 {
		return nil, nil
	}

	var lenBuf [8]byte
	if _, err := io.ReadFull(file, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("failed to read header length: %w", err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBuf[:])
	if headerLen == 0 || headerLen > maxHeaderSize || int64(headerLen) > info.Size()-8 {
		return nil, nil
	}

	headerData := make([]byte, headerLen)
	if _, err := io.ReadFull(file, headerData); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var header map[string]json.RawMessage
	if err := json.Unmarshal(headerData, &header); err != nil {
		// Not a safetensors container after all.
		return nil, nil
	}

	raw, ok := header["__metadata__"]
	if !ok {
		return nil, nil
	}

	var metadata map[string]string
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return nil, nil
	}
	return metadata, nil
}

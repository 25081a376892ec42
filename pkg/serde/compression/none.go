package compression

// NameNone identifies the identity algorithm.
const NameNone = "NONE"

type noneCompressor struct{}

func (noneCompressor) Name() string { return NameNone }

func (noneCompressor) Code() byte { return CodeNone }

func (noneCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

func (noneCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

package codec

// valueField is the record wrapper key holding the user value.
const valueField = Symbol("value")

// ViewState reports the outcome of a ValueView projection.
type ViewState int

const (
	// ViewOK: the record's value field is a byte blob and view points at it.
	ViewOK ViewState = iota
	// ViewNotRecord: the bytes do not hold a wrapped {meta, value} record.
	ViewNotRecord
	// ViewNotBytes: the record's value field is not a byte blob.
	ViewNotBytes
)

// ValueView locates the value field of a wrapped record and, when it is a
// byte blob, returns a zero-copy view of the blob. The view aliases the input
// and shares its lifetime: for LMDB-backed input it dies with the read
// transaction.
func ValueView(reg *Registry, data []byte) ([]byte, ViewState, error) {
	d := NewDecoder(reg, data)
	tag, err := d.readByte()
	if err != nil {
		return nil, ViewNotRecord, err
	}
	if tag != TagMap {
		return nil, ViewNotRecord, nil
	}
	n, err := d.readCount()
	if err != nil {
		return nil, ViewNotRecord, err
	}
	sawMeta := false
	for i := 0; i < n; i++ {
		k, err := d.Decode()
		if err != nil {
			return nil, ViewNotRecord, err
		}
		switch k {
		case metaField:
			sawMeta = true
			if err := d.skip(); err != nil {
				return nil, ViewNotRecord, err
			}
		case valueField:
			if !sawMeta {
				return nil, ViewNotRecord, nil
			}
			vtag, err := d.readByte()
			if err != nil {
				return nil, ViewNotRecord, err
			}
			if vtag != TagBytes {
				return nil, ViewNotBytes, nil
			}
			view, err := d.readBlob()
			if err != nil {
				return nil, ViewNotBytes, err
			}
			return view, ViewOK, nil
		default:
			if err := d.skip(); err != nil {
				return nil, ViewNotRecord, err
			}
		}
	}
	return nil, ViewNotRecord, nil
}

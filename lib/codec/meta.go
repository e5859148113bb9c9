package codec

// metaField is the record wrapper key whose value the projection extracts.
const metaField = Symbol("meta")

// DecodeMeta extracts the meta field of a wrapped record without
// materializing the value field. Given a buffer positioned at a record it
// consumes the outer mapping tag, reads the entry count and walks the
// entries; the value of the first key equal to the symbol "meta" is decoded
// and returned, all other entry values are skipped in place.
//
// Wrapped records put meta first by construction, so the common path decodes
// exactly two codec items and stops.
//
// Return shape:
//   - (meta, true, nil) for a mapping with a meta entry
//   - (nil, true, nil) for an empty mapping (valid, if unusual, state)
//   - (nil, false, nil) when the top-level value is not a mapping or is a
//     non-empty mapping without a meta entry; the caller treats this as a
//     record produced by the raw API
func DecodeMeta(reg *Registry, data []byte) (Map, bool, error) {
	d := NewDecoder(reg, data)
	tag, err := d.readByte()
	if err != nil {
		return nil, false, err
	}
	if tag != TagMap {
		return nil, false, nil
	}
	n, err := d.readCount()
	if err != nil {
		return nil, false, err
	}
	if n == 0 {
		return nil, true, nil
	}
	for i := 0; i < n; i++ {
		k, err := d.Decode()
		if err != nil {
			return nil, false, err
		}
		if k == metaField {
			v, err := d.Decode()
			if err != nil {
				return nil, false, err
			}
			if v == nil {
				return nil, true, nil
			}
			m, ok := v.(Map)
			if !ok {
				return nil, false, nil
			}
			return m, true, nil
		}
		if err := d.skip(); err != nil {
			return nil, false, err
		}
	}
	return nil, false, nil
}

// skip advances past one encoded value without materializing it. Blobs and
// primitive arrays are skipped by length arithmetic; user-extension values
// have handler-defined bodies and fall back to a decode whose result is
// discarded.
func (d *Decoder) skip() error {
	tag, err := d.readByte()
	if err != nil {
		return err
	}
	switch tag {
	case TagNil, TagFalse, TagTrue:
		return nil
	case TagInt8:
		_, err = d.readN(1)
	case TagInt16, TagChar:
		_, err = d.readN(2)
	case TagInt32, TagFloat32:
		_, err = d.readN(4)
	case TagInt64, TagFloat64, TagInstant:
		_, err = d.readN(8)
	case TagUUID:
		_, err = d.readN(16)
	case TagString, TagKeyword, TagSymbol, TagBytes, TagBigInt:
		_, err = d.readBlob()
	case TagBigDec:
		if _, err = d.readUint32(); err != nil {
			return err
		}
		_, err = d.readBlob()
	case TagRatio:
		if _, err = d.readBlob(); err != nil {
			return err
		}
		_, err = d.readBlob()
	case TagList, TagSet:
		n, cerr := d.readCount()
		if cerr != nil {
			return cerr
		}
		for i := 0; i < n; i++ {
			if err := d.skip(); err != nil {
				return err
			}
		}
	case TagMap:
		n, cerr := d.readCount()
		if cerr != nil {
			return cerr
		}
		for i := 0; i < 2*n; i++ {
			if err := d.skip(); err != nil {
				return err
			}
		}
	case TagInt16Array, TagCharArray:
		err = d.skipArray(2)
	case TagInt32Array, TagFloat32Array:
		err = d.skipArray(4)
	case TagInt64Array, TagFloat64Array:
		err = d.skipArray(8)
	case TagBoolArray:
		err = d.skipArray(1)
	default:
		if tag >= TagUserMin && d.reg != nil {
			if h, ok := d.reg.byTag[tag]; ok {
				_, err = h.Decode(d)
				return err
			}
		}
		return &UnknownTagError{Tag: tag}
	}
	return err
}

func (d *Decoder) skipArray(elemSize int) error {
	n, err := d.readCount()
	if err != nil {
		return err
	}
	_, err = d.readN(n * elemSize)
	return err
}

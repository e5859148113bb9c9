package codec

// Tag is the one-byte type discriminator at the start of every encoded value.
// The assignment below is part of the on-disk contract and must never change.
type Tag = byte

const (
	TagNil     Tag = 0x00
	TagFalse   Tag = 0x01
	TagTrue    Tag = 0x02
	TagInt64   Tag = 0x03
	TagFloat64 Tag = 0x04
	TagString  Tag = 0x05
	TagKeyword Tag = 0x06
	TagSymbol  Tag = 0x07
	TagUUID    Tag = 0x08
	TagInstant Tag = 0x09
	TagBytes   Tag = 0x0A
	TagList    Tag = 0x0B
	TagMap     Tag = 0x0C
	TagSet     Tag = 0x0D
	TagInt16   Tag = 0x0E
	TagInt8    Tag = 0x0F
	TagFloat32 Tag = 0x10
	TagChar    Tag = 0x11
	TagBigInt  Tag = 0x12
	TagBigDec  Tag = 0x13
	TagRatio   Tag = 0x14

	TagInt16Array   Tag = 0x15
	TagInt32Array   Tag = 0x16
	TagInt64Array   Tag = 0x17
	TagFloat32Array Tag = 0x18
	TagFloat64Array Tag = 0x19
	TagBoolArray    Tag = 0x1A
	TagCharArray    Tag = 0x1B

	TagInt32 Tag = 0x1C

	// Tags 0x1D through 0x3F are reserved; decoders reject them.

	// TagUserMin is the first tag available to user-registered handlers.
	TagUserMin Tag = 0x40
)

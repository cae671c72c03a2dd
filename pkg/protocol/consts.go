package protocol

const (
	ProtocolVersion uint8 = 1

	// Message types
	MsgJoin  MessageType = 1
	MsgLeave MessageType = 2
	MsgText  MessageType = 3

	// Separators
	metaStartA     byte = 0x53 // 'S'
	metaStartB     byte = 0x4D // 'M'
	metaSeparator  byte = 0x1F
	metaEndByte    byte = 0x1E
	terminatorByte byte = 0x00

	// Meta header field lengths
	lenMetaStart     int = 2
	lenMetaSeparator int = 1
	lenMetaEnd       int = 2
	lenSectionLen    int = 4

	// Variable fields
	lenVarPrefix     int = 1
	lenVarTerminator int = 1
	minVarFieldLen   int = 1
	maxVarFieldLen   int = 255

	// Fixed fields
	lenVersion  int = 1
	lenMsgType  int = 1
	lenSequence int = 4
	lenNonce    int = 4
	lenBodyLen  int = 4
	lenIVRandom int = 8

	// Calculated
	MetaHeaderLen int = lenMetaStart +
		lenSectionLen + lenMetaSeparator +
		lenSectionLen + lenMetaSeparator +
		lenSectionLen + lenMetaSeparator +
		lenSectionLen +
		lenMetaEnd
	IVSeedLen       int = lenSequence + lenIVRandom
	minVarFieldSize int = lenVarPrefix + minVarFieldLen + lenVarTerminator
	minHeaderLen    int = lenVersion + minVarFieldSize + lenMsgType
	minAttributeLen int = attributeFieldCount * minVarFieldSize
	minPlainLen     int = minVarFieldSize + lenSequence + lenNonce + lenBodyLen
	MinDatagramLen  int = MetaHeaderLen + minHeaderLen + minAttributeLen + IVSeedLen + minPlainLen + 1

	attributeFieldCount int = 7
)

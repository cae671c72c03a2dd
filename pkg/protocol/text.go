package protocol

import "fmt"

func (msgType MessageType) String() (name string) {
	switch msgType {
	case MsgJoin:
		name = "JOIN"
	case MsgLeave:
		name = "LEAVE"
	case MsgText:
		name = "TEXT"
	default:
		name = fmt.Sprintf("UNKNOWN(%d)", uint8(msgType))
	}
	return
}

func (msgType MessageType) valid() (ok bool) {
	ok = msgType == MsgJoin || msgType == MsgLeave || msgType == MsgText
	return
}

// Ordered list of attribute values as they appear on the wire
func (attrs Attributes) fields() (values []string) {
	values = []string{
		attrs.SessionID,
		attrs.SessionName,
		attrs.SymmetricAlgorithm,
		attrs.Mode,
		attrs.Padding,
		attrs.HashAlgorithm,
		attrs.MACAlgorithm,
	}
	return
}

var attributeNames = [attributeFieldCount]string{
	"SessionID",
	"SessionName",
	"SymmetricAlgorithm",
	"Mode",
	"Padding",
	"HashAlgorithm",
	"MACAlgorithm",
}

package protocol

// EncodeAck returns the payload for an ack frame: the acknowledged
// patch sequence as a varint.
func EncodeAck(seq uint64) []byte {
	e := NewEncoder()
	e.WriteUvarint(seq)
	return e.Bytes()
}

// DecodeAck parses an ack payload.
func DecodeAck(data []byte) (uint64, error) {
	return NewDecoder(data).ReadUvarint()
}

package chat

// InboundFrame is one client-to-server chat frame.
type InboundFrame struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text,omitempty"`
	File      string `json:"file,omitempty"`
}

// Valid reports whether the frame carries enough to become a message: a
// recipient and at least one of text/file. Invalid frames are discarded
// without a reply; the protocol has no acknowledgment channel.
func (f InboundFrame) Valid() bool {
	return f.Recipient != "" && (f.Text != "" || f.File != "")
}

// DeliveryFrame is the server-to-client frame carrying one persisted
// message. The field names are fixed wire format.
type DeliveryFrame struct {
	ID        string `json:"_id"`
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Text      string `json:"text,omitempty"`
	File      string `json:"file,omitempty"`
}

package probe

import "fmt"

// Protocol identifies the HTTP protocol variant a request was issued over,
// or actually served over when negotiation diverges from the request.
type Protocol int

const (
	ProtocolUnknown Protocol = iota
	ProtocolHTTP11
	ProtocolHTTP2
	// ProtocolHTTP2Fallback marks a request that asked for HTTP/2 but was
	// served over HTTP/1.1 after ALPN negotiation. Callers must never
	// conflate it with ProtocolHTTP2.
	ProtocolHTTP2Fallback
	ProtocolHTTP3
)

// Requestable protocols in the order the multi-protocol runner visits them.
var allProtocols = [...]Protocol{ProtocolHTTP11, ProtocolHTTP2, ProtocolHTTP3}

func (p Protocol) String() string {
	switch p {
	case ProtocolHTTP11:
		return "HTTP/1.1"
	case ProtocolHTTP2:
		return "HTTP/2"
	case ProtocolHTTP2Fallback:
		return "HTTP/2-fallback"
	case ProtocolHTTP3:
		return "HTTP/3"
	case ProtocolUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

// MarshalText lets Outcome records serialize the protocol tag as its name.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseProtocol maps a protocol name back to its tag. Unrecognized names
// yield ProtocolUnknown rather than an error so old exports stay readable.
func ParseProtocol(s string) Protocol {
	switch s {
	case "HTTP/1.1":
		return ProtocolHTTP11
	case "HTTP/2":
		return ProtocolHTTP2
	case "HTTP/2-fallback":
		return ProtocolHTTP2Fallback
	case "HTTP/3":
		return ProtocolHTTP3
	default:
		return ProtocolUnknown
	}
}

func (p *Protocol) UnmarshalText(text []byte) error {
	*p = ParseProtocol(string(text))
	return nil
}

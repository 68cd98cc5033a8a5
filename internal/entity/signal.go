package entity

// Message types of the signaling socket.
const (
	TypeVerify       = "verify"
	TypeJoin         = "join"
	TypePaired       = "paired"
	TypeOffer        = "offer"
	TypeAnswer       = "answer"
	TypeICECandidate = "ice-candidate"
	TypeCandidate    = "candidate"
	TypePartnerLeft  = "partner-left"
	TypeDisconnected = "disconnected"
)

// Envelope - the type tag every socket message carries.
type Envelope struct {
	Type string `json:"type"`
}

type Verify struct {
	Type       string `json:"type"`
	VerifyTime string `json:"verify_time"`
}

type Join struct {
	Signature string  `json:"signature"`
	PubKey    string  `json:"pub_key"`
	Queue     *string `json:"queue,omitempty"`
}

type ICEServers struct {
	URLs       []string `json:"urls"`
	Username   string   `json:"username,omitempty"`
	Credential string   `json:"credential,omitempty"`
}

type Paired struct {
	Type       string     `json:"type"`
	PublicKey  string     `json:"public_key"`
	PartnerKey string     `json:"partner_key"`
	Initiator  bool       `json:"initiator"`
	Seed       uint32     `json:"seed"`
	Signature  string     `json:"signature"`
	Time       uint64     `json:"time"`
	ICEServers ICEServers `json:"ice_servers"`
}

type PartnerLeft struct {
	Type string `json:"type"`
}

type Disconnected struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
	Name   string `json:"name"`
}

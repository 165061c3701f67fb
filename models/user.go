package models

// User carries the credentials exchanged with the remote service during
// login. The sync core itself does not model accounts; this exists for the
// token handshake only.
type User struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// Token is a signed bearer token returned by the remote service.
type Token struct {
	SignedString string `json:"token"`
	Subject      string `json:"-"`
}

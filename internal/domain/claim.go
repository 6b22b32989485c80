package domain

// Claim is the verified identity bound to a connection or request after
// credential validation. It is derived once, at handshake time, and is
// immutable for the lifetime of the connection.
type Claim struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// Anonymous reports whether the claim carries no verified identity.
func (c Claim) Anonymous() bool {
	return c.UserID == ""
}

package domain

// ActorSystem marks writes made by the unattended dispatch sweep.
const ActorSystem = "system"

// RequestContext carries authenticated user info when available.
type RequestContext struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// Actor returns the audit name for writes made on behalf of this request.
func (r RequestContext) Actor() string {
	if r.UserID == "" {
		return "operator"
	}
	if r.Role == "" {
		return r.UserID
	}
	return r.Role + ":" + r.UserID
}

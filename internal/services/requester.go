package services

// Requester identifies the authenticated caller of an operation.
type Requester struct {
	UserID  string
	IsAdmin bool
	IsHost  bool
}

func (r Requester) CanManage(ownerID string) bool {
	return r.IsAdmin || (r.UserID != "" && r.UserID == ownerID)
}

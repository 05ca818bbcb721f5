package service

import "vidtube/apperr"

// authorize compares an entity's owner with the caller. Callers load the
// entity first so that a missing entity is reported before a foreign one.
func authorize(ownerID, callerID, action string) error {
	if callerID == "" || ownerID != callerID {
		return apperr.Forbidden("You are not authorized to " + action)
	}
	return nil
}

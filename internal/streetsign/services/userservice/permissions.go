package userservice

import (
	"errors"

	"github.com/reemaRaven/streetsign/internal/streetsign/domain/models"
)

type Action int

const (
	ActionList Action = iota
	ActionView
	ActionEdit
	ActionCreate
	ActionDelete
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrDeleteSelf       = errors.New("you cannot delete your own account")
)

// Decide is the whole access policy for user management, kept apart from
// the web layer so it can be tested standalone. caller == nil means an
// anonymous request; targetID is ignored for ActionList and ActionCreate.
func Decide(caller *models.User, targetID int, action Action) error {
	if caller == nil {
		return ErrPermissionDenied
	}

	switch action {
	case ActionList, ActionView:
		return nil
	case ActionEdit:
		if caller.IsAdmin || caller.ID == targetID {
			return nil
		}

		return ErrPermissionDenied
	case ActionCreate:
		if caller.IsAdmin {
			return nil
		}

		return ErrPermissionDenied
	case ActionDelete:
		if !caller.IsAdmin {
			return ErrPermissionDenied
		}

		if caller.ID == targetID {
			return ErrDeleteSelf
		}

		return nil
	default:
		return ErrPermissionDenied
	}
}

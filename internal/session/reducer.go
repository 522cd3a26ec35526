package session

import "notedeck/internal/types"

// State is everything the rest of the client may know about the signed-in
// user. CurrentUser is nil when signed out.
type State struct {
	CurrentUser *types.User
	Token       string
	Loading     bool
	Err         string
}

func (s State) SignedIn() bool {
	return s.CurrentUser != nil
}

func (s State) IsAdmin() bool {
	return s.CurrentUser.IsAdmin()
}

func (s State) UserID() string {
	if s.CurrentUser == nil {
		return ""
	}
	return s.CurrentUser.ID
}

// Reduce is pure: it never mutates prev or the action's user.
func Reduce(prev State, action Action) State {
	next := prev
	switch action.Phase {
	case PhaseStart:
		next.Loading = true
		return next
	case PhaseFailure:
		next.Loading = false
		next.Err = action.Err
		return next
	case PhaseSuccess:
	default:
		return prev
	}

	next.Loading = false
	next.Err = ""
	switch action.Flow {
	case FlowSignIn, FlowSignUp, FlowRestore:
		next.CurrentUser = cloneUser(action.User)
		next.Token = action.Token
	case FlowUpdateUser:
		if action.User != nil {
			next.CurrentUser = cloneUser(action.User)
		}
	case FlowDeleteUser, FlowSignOut:
		next.CurrentUser = nil
		next.Token = ""
	default:
		return prev
	}
	return next
}

func cloneUser(user *types.User) *types.User {
	if user == nil {
		return nil
	}
	out := *user
	return &out
}

package session

import "notedeck/internal/types"

type Flow int

const (
	FlowSignIn Flow = iota + 1
	FlowSignUp
	FlowUpdateUser
	FlowDeleteUser
	FlowSignOut
	FlowRestore
)

func (f Flow) String() string {
	switch f {
	case FlowSignIn:
		return "sign_in"
	case FlowSignUp:
		return "sign_up"
	case FlowUpdateUser:
		return "update_user"
	case FlowDeleteUser:
		return "delete_user"
	case FlowSignOut:
		return "sign_out"
	case FlowRestore:
		return "restore"
	default:
		return "unknown"
	}
}

type Phase int

const (
	PhaseStart Phase = iota + 1
	PhaseSuccess
	PhaseFailure
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseSuccess:
		return "success"
	case PhaseFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Action is one step of an auth flow. Build actions with the constructors
// below; the zero Action is ignored by Reduce.
type Action struct {
	Flow  Flow
	Phase Phase
	User  *types.User
	Token string
	Err   string
}

func SignInStart() Action { return Action{Flow: FlowSignIn, Phase: PhaseStart} }
func SignInSuccess(user *types.User, token string) Action {
	return Action{Flow: FlowSignIn, Phase: PhaseSuccess, User: user, Token: token}
}
func SignInFailure(message string) Action {
	return Action{Flow: FlowSignIn, Phase: PhaseFailure, Err: message}
}

func SignUpStart() Action { return Action{Flow: FlowSignUp, Phase: PhaseStart} }
func SignUpSuccess(user *types.User, token string) Action {
	return Action{Flow: FlowSignUp, Phase: PhaseSuccess, User: user, Token: token}
}
func SignUpFailure(message string) Action {
	return Action{Flow: FlowSignUp, Phase: PhaseFailure, Err: message}
}

func UpdateUserStart() Action { return Action{Flow: FlowUpdateUser, Phase: PhaseStart} }
func UpdateUserSuccess(user *types.User) Action {
	return Action{Flow: FlowUpdateUser, Phase: PhaseSuccess, User: user}
}
func UpdateUserFailure(message string) Action {
	return Action{Flow: FlowUpdateUser, Phase: PhaseFailure, Err: message}
}

func DeleteUserStart() Action   { return Action{Flow: FlowDeleteUser, Phase: PhaseStart} }
func DeleteUserSuccess() Action { return Action{Flow: FlowDeleteUser, Phase: PhaseSuccess} }
func DeleteUserFailure(message string) Action {
	return Action{Flow: FlowDeleteUser, Phase: PhaseFailure, Err: message}
}

func SignOutStart() Action   { return Action{Flow: FlowSignOut, Phase: PhaseStart} }
func SignOutSuccess() Action { return Action{Flow: FlowSignOut, Phase: PhaseSuccess} }
func SignOutFailure(message string) Action {
	return Action{Flow: FlowSignOut, Phase: PhaseFailure, Err: message}
}

// Restore hydrates the state from a persisted snapshot.
func Restore(user *types.User, token string) Action {
	return Action{Flow: FlowRestore, Phase: PhaseSuccess, User: user, Token: token}
}

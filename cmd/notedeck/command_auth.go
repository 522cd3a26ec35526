package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"notedeck/internal/app/sanitizer"
	"notedeck/internal/auth"
	"notedeck/internal/client"
	"notedeck/internal/logging"
	"notedeck/internal/session"
)

const googleSignInTimeout = 5 * time.Minute

type SignInCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewSignInCommand(stdout, stderr io.Writer, newEnv envFactory) *SignInCommand {
	return &SignInCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *SignInCommand) Run(args []string) error {
	fs := flag.NewFlagSet("signin", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	google := fs.Bool("google", false, "sign in with Google using a device code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	if *google {
		return c.signInWithGoogle(ctx, env)
	}
	env.session.Dispatch(ctx, session.SignInStart())
	result, err := env.client.SignIn(ctx, client.SignInRequest{
		Email:    strings.TrimSpace(*email),
		Password: *password,
	})
	return finishSignIn(ctx, c.stdout, env, session.FlowSignIn, result, err)
}

func (c *SignInCommand) signInWithGoogle(ctx context.Context, env *commandEnv) error {
	if env.google == nil {
		return auth.ErrGoogleNotConfigured
	}
	ctx, cancel := context.WithTimeout(ctx, googleSignInTimeout)
	defer cancel()

	env.session.Dispatch(ctx, session.SignInStart())
	device, err := env.google.Start(ctx)
	if err != nil {
		env.session.Dispatch(ctx, session.SignInFailure(failureMessage(err)))
		return err
	}
	fmt.Fprintf(c.stdout, "Open %s and enter code %s\n", sanitizer.Line(device.VerificationURI), sanitizer.Line(device.UserCode))
	profile, err := env.google.Wait(ctx, device)
	if err != nil {
		env.session.Dispatch(ctx, session.SignInFailure(failureMessage(err)))
		return err
	}
	result, err := env.client.SignInWithGoogle(ctx, client.GoogleSignInRequest{
		Name:  profile.Name,
		Email: profile.Email,
		Photo: profile.Picture,
	})
	return finishSignIn(ctx, c.stdout, env, session.FlowSignIn, result, err)
}

type SignUpCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewSignUpCommand(stdout, stderr io.Writer, newEnv envFactory) *SignUpCommand {
	return &SignUpCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *SignUpCommand) Run(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	username := fs.String("username", "", "display name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	env.session.Dispatch(ctx, session.SignUpStart())
	result, err := env.client.SignUp(ctx, client.SignUpRequest{
		Username: strings.TrimSpace(*username),
		Email:    strings.TrimSpace(*email),
		Password: *password,
	})
	return finishSignIn(ctx, c.stdout, env, session.FlowSignUp, result, err)
}

func finishSignIn(ctx context.Context, stdout io.Writer, env *commandEnv, flow session.Flow, result *client.AuthResult, err error) error {
	if err == nil && (result == nil || result.User == nil) {
		err = client.ErrUnexpectedResponse
	}
	if err != nil {
		if flow == session.FlowSignUp {
			env.session.Dispatch(ctx, session.SignUpFailure(failureMessage(err)))
		} else {
			env.session.Dispatch(ctx, session.SignInFailure(failureMessage(err)))
		}
		return errors.New(failureMessage(err))
	}
	if flow == session.FlowSignUp {
		env.session.Dispatch(ctx, session.SignUpSuccess(result.User, result.Token))
	} else {
		env.session.Dispatch(ctx, session.SignInSuccess(result.User, result.Token))
	}
	env.logger.Debug("signed in", logging.F("user_id", result.User.ID))
	fmt.Fprintf(stdout, "Signed in as %s\n", sanitizer.Line(result.User.DisplayName()))
	return nil
}

type SignOutCommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
}

func NewSignOutCommand(stdout, stderr io.Writer, newEnv envFactory) *SignOutCommand {
	return &SignOutCommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
	}
}

func (c *SignOutCommand) Run(args []string) error {
	fs := flag.NewFlagSet("signout", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	if !env.session.State().SignedIn() {
		fmt.Fprintln(c.stdout, "Not signed in")
		return nil
	}
	env.session.Dispatch(ctx, session.SignOutStart())
	if err := env.client.SignOut(ctx); err != nil {
		env.logger.Warn("sign out request failed", logging.Err(err))
		env.session.Dispatch(ctx, session.SignOutFailure(client.Message(err, "sign out failed")))
		return err
	}
	env.session.Dispatch(ctx, session.SignOutSuccess())
	fmt.Fprintln(c.stdout, "Signed out")
	return nil
}

type WhoAmICommand struct {
	stdout io.Writer
	stderr io.Writer
	newEnv envFactory
	now    func() time.Time
}

func NewWhoAmICommand(stdout, stderr io.Writer, newEnv envFactory) *WhoAmICommand {
	return &WhoAmICommand{
		stdout: stdout,
		stderr: stderr,
		newEnv: newEnv,
		now:    time.Now,
	}
}

func (c *WhoAmICommand) Run(args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	asJSON := fs.Bool("json", false, "print the user as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	env, err := c.newEnv(envModeCLI)
	if err != nil {
		return err
	}
	defer env.Close()

	state, err := env.requireSignIn()
	if err != nil {
		return err
	}
	user := state.CurrentUser
	if *asJSON {
		return writeJSON(c.stdout, user)
	}
	fmt.Fprintf(c.stdout, "%s <%s>\n", sanitizer.Line(user.DisplayName()), sanitizer.Line(user.Email))
	if user.IsAdmin() {
		fmt.Fprintln(c.stdout, "role: admin")
	}
	if expiry, ok := auth.TokenExpiry(state.Token); ok {
		verb := "expires"
		if !expiry.After(c.now()) {
			verb = "expired"
		}
		fmt.Fprintf(c.stdout, "session %s %s\n", verb, relativeTime(expiry))
	}
	return nil
}

func failureMessage(err error) string {
	var validation *client.ValidationError
	if errors.As(err, &validation) {
		return validation.Error()
	}
	return client.Message(err, err.Error())
}

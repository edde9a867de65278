package mtproto

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"golang.org/x/term"

	"github.com/reshetovitsme/channel-relay/internal/modules/monitor/domain"
	apperrors "github.com/reshetovitsme/channel-relay/internal/shared/errors"
)

// userAuthenticator feeds the login flow from the configured phone and an AuthPrompter
type userAuthenticator struct {
	phone    string
	prompter domain.AuthPrompter
}

var _ auth.UserAuthenticator = userAuthenticator{}

func (a userAuthenticator) Phone(context.Context) (string, error) {
	return a.phone, nil
}

func (a userAuthenticator) Code(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompter.Code(ctx)
}

func (a userAuthenticator) Password(ctx context.Context) (string, error) {
	return a.prompter.Password(ctx)
}

func (userAuthenticator) SignUp(context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("signing up is not supported, register the account in an official app")
}

func (userAuthenticator) AcceptTermsOfService(_ context.Context, tos tg.HelpTermsOfService) error {
	return &auth.SignUpRequired{TermsOfService: tos}
}

// TerminalPrompter reads login challenges from the terminal
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminalPrompter prompts on stdin/stdout
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stdout}
}

func (p *TerminalPrompter) Code(context.Context) (string, error) {
	fmt.Fprintln(p.Out)
	fmt.Fprintln(p.Out, "A verification code has been sent to your Telegram account.")
	fmt.Fprint(p.Out, "Enter code: ")
	code, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(code), nil
}

func (p *TerminalPrompter) Password(context.Context) (string, error) {
	fmt.Fprint(p.Out, "Enter 2FA password: ")
	if f, ok := p.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pwd, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.Out)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(pwd)), nil
	}
	pwd, err := bufio.NewReader(p.In).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(pwd), nil
}

// NonInteractivePrompter refuses every challenge. The server uses it so that a missing
// session surfaces as ErrLoginRequired instead of blocking on stdin.
type NonInteractivePrompter struct{}

func (NonInteractivePrompter) Code(context.Context) (string, error) {
	return "", apperrors.ErrLoginRequired
}

func (NonInteractivePrompter) Password(context.Context) (string, error) {
	return "", apperrors.ErrLoginRequired
}

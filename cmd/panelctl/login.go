package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"zupos_panel/internal/auth"
	"zupos_panel/internal/session"
	"zupos_panel/internal/webpanel"
)

// backendFlags are shared by the commands that sign in to the web panel.
type backendFlags struct {
	url      string
	username string
	branchNo string
	timeout  time.Duration
}

func (f *backendFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.url, "url", "", "web panel base url (default $WEB_PANEL_URL)")
	cmd.Flags().StringVarP(&f.username, "user", "u", "", "user name (prompted when empty)")
	cmd.Flags().StringVarP(&f.branchNo, "branch", "b", auth.DefaultBranchNo, "branch number")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 20*time.Second, "overall timeout")
}

func (f *backendFlags) client() (*webpanel.Client, error) {
	base := f.url
	if base == "" {
		base = os.Getenv("WEB_PANEL_URL")
	}
	if base == "" {
		return nil, errors.New("web panel url is required: pass --url or set WEB_PANEL_URL")
	}
	return webpanel.NewClient(webpanel.Config{
		WebPanelURL: base,
		APIBaseURL:  os.Getenv("API_BASE_URL"),
		Logger:      cliLogger(),
	})
}

// signIn asks for missing credentials and signs in. The password comes from
// $PANEL_PASSWORD or an echo-free prompt.
func (f *backendFlags) signIn(ctx context.Context, cmd *cobra.Command) (*webpanel.Client, webpanel.Session, error) {
	client, err := f.client()
	if err != nil {
		return nil, webpanel.Session{}, err
	}

	in := bufio.NewReader(cmd.InOrStdin())
	if f.username == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Kullanıcı adı: ")
		f.username, err = readLine(in)
		if err != nil {
			return nil, webpanel.Session{}, err
		}
	}
	password, err := readPassword(cmd, in)
	if err != nil {
		return nil, webpanel.Session{}, err
	}

	form := auth.Form{Username: f.username, Password: password, BranchNo: f.branchNo}
	if errs := auth.ValidateForm(form); errs != nil {
		return nil, webpanel.Session{}, &auth.ValidationError{Fields: errs}
	}

	cookies, err := client.SignIn(ctx, webpanel.Credentials{BranchNo: form.BranchNo, UserName: form.Username, Password: form.Password})
	if err != nil {
		return nil, webpanel.Session{}, fmt.Errorf("%s: %w", auth.GenericLoginError, err)
	}
	s := webpanel.Session{Token: session.SessionMarker, Cookies: cookies}
	ok, err := client.ValidateSession(ctx, s)
	if err != nil {
		return nil, webpanel.Session{}, fmt.Errorf("validate session: %w", err)
	}
	if !ok {
		return nil, webpanel.Session{}, errors.New(auth.GenericLoginError)
	}
	return client, s, nil
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	if p := os.Getenv("PANEL_PASSWORD"); p != "" {
		return p, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Şifre: ")
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	return readLine(in)
}

func newLoginCmd() *cobra.Command {
	var flags backendFlags

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check credentials against the web panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
			defer cancel()

			client, s, err := flags.signIn(ctx, cmd)
			if err != nil {
				return err
			}
			defer client.Logout(context.WithoutCancel(ctx), s)

			user := auth.NewUser(flags.username, flags.branchNo)
			fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s (%s), %d backend cookies\n", user.Username, user.BranchName, len(s.Cookies))
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

// Command strclient signs in to the STR portal from a terminal and keeps the session
// honest: it validates the session with the server and logs out after inactivity.
//
// Every line typed counts as activity. A line starting with "/" is a route change and
// "logout" ends the session.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/client"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
)

var (
	portalURL   string
	userID      string
	passwordEnv string
	storageDir  string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "strclient",
	Short: "Terminal client of the STR portal session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	flags := rootCmd.Flags()
	flags.StringVar(&portalURL, "url", "http://localhost:8000/strweb", "portal url including the base path")
	flags.StringVarP(&userID, "user", "u", "", "user id")
	flags.StringVar(&passwordEnv, "password-env", "STR_PASSWORD", "environment variable holding the password")
	flags.StringVar(&storageDir, "storage", filepath.Join(dir, "strportal"), "directory of the local storage file")
	flags.StringVar(&logLevel, "log-level", "warn", "debug | info | warn | error")
	_ = rootCmd.MarkFlagRequired("user")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c, err := client.New(client.Options{
		BaseURL: portalURL,
		Local:   client.NewFileStorage(afero.NewOsFs(), filepath.Join(storageDir, "local.json")),
		Navigator: client.NavigatorFunc(func(path string) {
			fmt.Fprintf(out, "session ended, returning to %s\n", path)
			cancel()
		}),
		Logger: logger.NewLogger(os.Stderr, "", 0).SetLevel(logger.ParseLevel(logLevel)),
	})
	if err != nil {
		return err
	}

	res, err := c.Login(ctx, userID, os.Getenv(passwordEnv))
	if err != nil {
		return err
	}
	if !res.Success {
		if res.Detail != "" {
			return fmt.Errorf("%s: %s", res.Message, res.Detail)
		}
		return fmt.Errorf("%s", res.Message)
	}
	info := c.GetSession(ctx)
	if info == nil {
		return fmt.Errorf("signed in but no session came back")
	}
	fmt.Fprintf(out, "%s (%s, %s %s)\n", info.UserName, info.ProfileLabel, info.BranchCode, info.BranchName)
	for _, m := range c.Menu() {
		fmt.Fprintf(out, "  %s %s\n", m.Code, m.Title)
	}

	agent, err := c.NewAgent(ctx, nil)
	if err != nil {
		return err
	}
	agent.Start(ctx)
	defer agent.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return c.Logout(context.Background())
			}
			switch {
			case line == "logout":
				if err := c.Logout(ctx); err != nil {
					fmt.Fprintf(out, "logout failed, try again: %v\n", err)
				}
			case strings.HasPrefix(line, "/"):
				agent.Navigate(ctx, line)
			default:
				agent.Touch("keydown")
			}
		}
	}
}

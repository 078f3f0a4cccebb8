// Command zhihu is a small command line client for the Zhihu API.
//
//	zhihu --config zhihu.yaml login --email me@example.com
//	zhihu answer 94150403
//	zhihu voters --limit 50 94150403
//	zhihu api --param include=name GET people/self
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/tozd/go/errors"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
)

const defaultTokenFile = "token.json"

// env is the state shared by every command once the Before hook has run.
type env struct {
	client    *zhihu.Client
	logger    *slog.Logger
	tokenPath string
	out       io.Writer
	in        io.Reader
}

// requireLogin installs the saved token.
func (e *env) requireLogin() error {
	if e.client.IsLogin() {
		return nil
	}
	if err := e.client.LoadToken(e.tokenPath); err != nil {
		return errors.Errorf("no usable token at %s, run login first: %w", e.tokenPath, err)
	}
	return nil
}

func main() {
	ctx := context.Background()

	if err := newApp(os.Stdout, os.Stdin, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "zhihu: %s\n", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer, in io.Reader, logOut io.Writer) *cli.App {
	e := &env{out: out, in: in}

	return &cli.App{
		Name:  "zhihu",
		Usage: "query the Zhihu API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "zhihu.yaml",
				Usage:   "YAML config file",
				EnvVars: []string{"ZHIHU_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"t"},
				Usage:   "token file written by login (default: token_file from config, else " + defaultTokenFile + ")",
				EnvVars: []string{"ZHIHU_TOKEN_FILE"},
			},
			&cli.StringFlag{
				Name:    "client-id",
				Usage:   "application client id",
				EnvVars: []string{"ZHIHU_CLIENT_ID"},
			},
			&cli.StringFlag{
				Name:    "client-secret",
				Usage:   "application client secret",
				EnvVars: []string{"ZHIHU_CLIENT_SECRET"},
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "log every API request",
			},
		},
		Before: func(c *cli.Context) error {
			ctx, logger := setupLogging(c.Context, logOut, c.Bool("debug"))
			c.Context = ctx
			e.logger = logger

			fc, err := loadConfig(c.String("config"))
			if err != nil {
				return err
			}

			e.tokenPath = c.String("token")
			if e.tokenPath == "" {
				e.tokenPath = fc.TokenFile
			}
			if e.tokenPath == "" {
				e.tokenPath = defaultTokenFile
			}

			cfg := fc.clientConfig(c.String("client-id"), c.String("client-secret"))
			cfg.Logger = logger
			client, err := zhihu.NewClient(cfg)
			if err != nil {
				return errors.Errorf("creating client: %w", err)
			}
			e.client = client
			return nil
		},
		Commands: []*cli.Command{
			loginCommand(e),
			meCommand(e),
			answerCommand(e),
			questionCommand(e),
			peopleCommand(e),
			votersCommand(e),
			activitiesCommand(e),
			fieldCommand(e),
			kindsCommand(e),
			apiCommand(e),
		},
	}
}

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	slogctx "github.com/veqryn/slog-context"
	"gitlab.com/tozd/go/errors"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
	"github.com/jamesprial/go-zhihu-oauth/pkg/entity"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

func loginCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and save the token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Required: true, EnvVars: []string{"ZHIHU_EMAIL"}},
			&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{"ZHIHU_PASSWORD"}},
			&cli.StringFlag{Name: "captcha-file", Value: "captcha.gif", Usage: "where to write the captcha image"},
		},
		Action: func(c *cli.Context) error {
			ctx := slogctx.With(c.Context, slog.String("command", "login"))
			email, password := c.String("email"), c.String("password")

			err := e.client.Login(ctx, email, password, "")
			var needCaptcha *pkgerrs.NeedCaptchaError
			if errors.As(err, &needCaptcha) {
				img, cerr := e.client.Captcha(ctx)
				if cerr != nil {
					return errors.Errorf("fetching captcha: %w", cerr)
				}
				path := c.String("captcha-file")
				if werr := os.WriteFile(path, img, 0o600); werr != nil {
					return errors.Errorf("saving captcha: %w", werr)
				}
				slogctx.Info(ctx, "captcha required", slog.String("file", path), slog.String("size", humanize.Bytes(uint64(len(img)))))

				fmt.Fprintf(e.out, "Captcha saved to %s, enter the text: ", path)
				answer, rerr := bufio.NewReader(e.in).ReadString('\n')
				if rerr != nil && answer == "" {
					return errors.Errorf("reading captcha: %w", rerr)
				}
				err = e.client.Login(ctx, email, password, strings.TrimSpace(answer))
			}
			if err != nil {
				return err
			}

			if err := e.client.SaveToken(e.tokenPath); err != nil {
				return err
			}
			slogctx.Info(ctx, "token saved", slog.String("path", e.tokenPath))
			fmt.Fprintf(e.out, "Logged in as user %s\n", e.client.Token().UserID)
			return nil
		},
	}
}

func meCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "me",
		Usage: "show the logged-in user",
		Action: func(c *cli.Context) error {
			if err := e.requireLogin(); err != nil {
				return err
			}
			me, err := e.client.Me()
			if err != nil {
				return err
			}
			rows, err := peopleRows(c, me.People)
			if err != nil {
				return err
			}
			favlists, err := me.FollowingFavlistsCount(c.Context)
			if err != nil {
				return err
			}
			rows = append(rows, row{"following collections", count(favlists)})
			return printRows(e.out, rows)
		},
	}
}

func answerCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "answer",
		Usage:     "show an answer",
		ArgsUsage: "<answer-id>",
		Action: func(c *cli.Context) error {
			id, err := numericArg(c, 0, "answer id")
			if err != nil {
				return err
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			answer, err := e.client.Answer(id)
			if err != nil {
				return err
			}

			ctx := c.Context
			question, err := answer.Question(ctx)
			if err != nil {
				return err
			}
			title, err := question.Title(ctx)
			if err != nil {
				return err
			}
			author, err := answer.Author(ctx)
			if err != nil {
				return err
			}
			name := "anonymous"
			if author != nil {
				if name, err = author.Name(ctx); err != nil {
					return err
				}
			}
			votes, err := answer.VoteupCount(ctx)
			if err != nil {
				return err
			}
			comments, err := answer.CommentCount(ctx)
			if err != nil {
				return err
			}
			created, err := answer.CreatedTime(ctx)
			if err != nil {
				return err
			}
			excerpt, err := answer.Excerpt(ctx)
			if err != nil {
				return err
			}

			return printRows(e.out, []row{
				{"question", title},
				{"author", name},
				{"votes", count(votes)},
				{"comments", count(comments)},
				{"created", when(created)},
				{"excerpt", excerpt},
			})
		},
	}
}

func questionCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "question",
		Usage:     "show a question and its first answers",
		ArgsUsage: "<question-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "answers", Value: 5, Usage: "number of answers to list"},
		},
		Action: func(c *cli.Context) error {
			id, err := numericArg(c, 0, "question id")
			if err != nil {
				return err
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			question, err := e.client.Question(id)
			if err != nil {
				return err
			}

			ctx := c.Context
			title, err := question.Title(ctx)
			if err != nil {
				return err
			}
			answers, err := question.AnswerCount(ctx)
			if err != nil {
				return err
			}
			followers, err := question.FollowerCount(ctx)
			if err != nil {
				return err
			}
			if err := printRows(e.out, []row{
				{"title", title},
				{"answers", count(answers)},
				{"followers", count(followers)},
			}); err != nil {
				return err
			}

			top, err := question.Answers().Iter(ctx).Collect(c.Int("answers"))
			if err != nil {
				return err
			}
			for _, a := range top {
				votes, err := a.VoteupCount(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(e.out, "  %d\t%s votes\n", a.ID(), count(votes))
			}
			return nil
		},
	}
}

func peopleCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "people",
		Usage:     "show a user by url token",
		ArgsUsage: "<url-token>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "followers", Usage: "also list this many followers"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("people: missing url token", 2)
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			people, err := e.client.People(c.Args().First())
			if err != nil {
				return err
			}
			rows, err := peopleRows(c, people)
			if err != nil {
				return err
			}
			if err := printRows(e.out, rows); err != nil {
				return err
			}

			if n := c.Int("followers"); n > 0 {
				return printPeople(c, e, people.Followers(), n)
			}
			return nil
		},
	}
}

func votersCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "voters",
		Usage:     "list the voters of an answer",
		ArgsUsage: "<answer-id>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "maximum voters to list"},
		},
		Action: func(c *cli.Context) error {
			id, err := numericArg(c, 0, "answer id")
			if err != nil {
				return err
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			answer, err := e.client.Answer(id)
			if err != nil {
				return err
			}
			return printPeople(c, e, answer.Voters(), c.Int("limit"))
		},
	}
}

func activitiesCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "activities",
		Usage:     "list a user's recent activities",
		ArgsUsage: "<url-token>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("activities: missing url token", 2)
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			people, err := e.client.People(c.Args().First())
			if err != nil {
				return err
			}

			ctx := slogctx.With(c.Context, slog.String("command", "activities"))
			n := 0
			for act, err := range people.Activities().Iter(ctx).All() {
				if err != nil {
					var badRef *pkgerrs.InvalidReferenceError
					if errors.As(err, &badRef) {
						slogctx.Warn(ctx, "skipping activity", slog.Any("error", err))
						continue
					}
					return err
				}
				target := entity.BaseOf(act.Target)
				fmt.Fprintf(e.out, "%s\t%s %s/%s\n", when(act.CreatedTime), act.Verb, target.Kind(), target.EntityID())
				n++
				if n >= c.Int("limit") {
					break
				}
			}
			return nil
		},
	}
}

func fieldCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "field",
		Usage:     "resolve one field of any entity",
		ArgsUsage: "<kind> <id> <field>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 3 {
				return cli.Exit("field: want <kind> <id> <field>", 2)
			}
			if err := e.requireLogin(); err != nil {
				return err
			}
			ent, err := e.client.Entity(c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}
			v, err := entity.BaseOf(ent).Resolve(c.Context, c.Args().Get(2))
			if err != nil {
				return err
			}
			if ref, ok := v.(entity.Entity); ok && ref != nil {
				b := entity.BaseOf(ref)
				fmt.Fprintf(e.out, "%s/%s\n", b.Kind(), b.EntityID())
				return nil
			}
			data, err := json.Marshal(v)
			if err != nil {
				return errors.Errorf("encoding field: %w", err)
			}
			return printJSON(e.out, data)
		},
	}
}

func kindsCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:  "kinds",
		Usage: "list entity kinds and their fields",
		Action: func(c *cli.Context) error {
			reg := zhihu.Registry()
			for _, name := range reg.Kinds() {
				k, _ := reg.Lookup(name)
				fmt.Fprintf(e.out, "%s\t%s\n", name, strings.Join(k.Fields(), ", "))
			}
			return nil
		},
	}
}

func apiCommand(e *env) *cli.Command {
	return &cli.Command{
		Name:      "api",
		Usage:     "send a raw request and print the JSON response",
		ArgsUsage: "<method> <path>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "query parameter key=value"},
			&cli.StringSliceFlag{Name: "form", Aliases: []string{"f"}, Usage: "form field key=value"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("api: want <method> <path>", 2)
			}
			params, err := keyValues(c.StringSlice("param"))
			if err != nil {
				return err
			}
			form, err := keyValues(c.StringSlice("form"))
			if err != nil {
				return err
			}
			if err := e.requireLogin(); err != nil {
				return err
			}

			raw, err := e.client.TestAPI(c.Context, strings.ToUpper(c.Args().Get(0)), c.Args().Get(1), params, form)
			if err != nil {
				return err
			}
			if raw == nil {
				return nil
			}
			return printJSON(e.out, raw)
		},
	}
}

func peopleRows(c *cli.Context, p *zhihu.People) ([]row, error) {
	ctx := c.Context
	name, err := p.Name(ctx)
	if err != nil {
		return nil, err
	}
	headline, err := p.Headline(ctx)
	if err != nil {
		return nil, err
	}
	followers, err := p.FollowerCount(ctx)
	if err != nil {
		return nil, err
	}
	answers, err := p.AnswerCount(ctx)
	if err != nil {
		return nil, err
	}
	votes, err := p.VoteupCount(ctx)
	if err != nil {
		return nil, err
	}
	return []row{
		{"name", name},
		{"headline", headline},
		{"followers", count(followers)},
		{"answers", count(answers)},
		{"votes received", count(votes)},
	}, nil
}

func printPeople(c *cli.Context, e *env, l *zhihu.Listing[*zhihu.People], limit int) error {
	ctx := c.Context
	list, err := l.Iter(ctx).Collect(limit)
	if err != nil {
		return err
	}
	for _, p := range list {
		name, err := p.Name(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(e.out, "%s\t%s\n", p.ID(), name)
	}
	return nil
}

func numericArg(c *cli.Context, i int, what string) (int64, error) {
	arg := c.Args().Get(i)
	if arg == "" {
		return 0, cli.Exit(c.Command.Name+": missing "+what, 2)
	}
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("%s: %s must be an integer, got %q", c.Command.Name, what, arg), 2)
	}
	return n, nil
}

func keyValues(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	v := url.Values{}
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, errors.Errorf("expected key=value, got %q", p)
		}
		v.Add(key, value)
	}
	return v, nil
}

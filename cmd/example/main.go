package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	zhihu "github.com/jamesprial/go-zhihu-oauth"
	pkgerrs "github.com/jamesprial/go-zhihu-oauth/pkg/errors"
)

func main() {
	// Get credentials from environment variables
	clientID := os.Getenv("ZHIHU_CLIENT_ID")
	clientSecret := os.Getenv("ZHIHU_CLIENT_SECRET")
	email := os.Getenv("ZHIHU_EMAIL")
	password := os.Getenv("ZHIHU_PASSWORD")
	tokenFile := os.Getenv("ZHIHU_TOKEN_FILE")
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	if clientID == "" || clientSecret == "" {
		log.Fatal("ZHIHU_CLIENT_ID and ZHIHU_CLIENT_SECRET environment variables are required")
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	config := &zhihu.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Logger:       logger,
	}

	client, err := zhihu.NewClient(config)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Reuse a saved token, otherwise sign in and save one.
	if err := client.LoadToken(tokenFile); err != nil {
		if email == "" || password == "" {
			log.Fatalf("No token at %s and ZHIHU_EMAIL/ZHIHU_PASSWORD not set: %v", tokenFile, err)
		}
		err := client.Login(ctx, email, password, "")
		var needCaptcha *pkgerrs.NeedCaptchaError
		if errors.As(err, &needCaptcha) {
			log.Fatal("Login needs a captcha; use `zhihu login` to solve it interactively")
		}
		if err != nil {
			log.Fatalf("Failed to log in: %v", err)
		}
		if err := client.SaveToken(tokenFile); err != nil {
			log.Printf("Failed to save token: %v", err)
		}
	}

	me, err := client.Me()
	if err != nil {
		log.Fatalf("Failed to get current user: %v", err)
	}
	name, err := me.Name(ctx)
	if err != nil {
		log.Fatalf("Failed to load profile: %v", err)
	}
	fmt.Printf("Logged in as %s\n", name)

	// Fields are fetched on first access; one detail request serves them all.
	question, err := client.Question(19550225)
	if err != nil {
		log.Fatalf("Bad question id: %v", err)
	}
	title, err := question.Title(ctx)
	if err != nil {
		log.Printf("Failed to get question: %v", err)
	} else {
		fmt.Printf("\nQuestion: %s\n", title)
	}

	// Listings page transparently; Collect stops after the first 5 answers.
	answers, err := question.Answers().Iter(ctx).Collect(5)
	if err != nil {
		log.Printf("Failed to list answers: %v", err)
	}
	for i, answer := range answers {
		votes, err := answer.VoteupCount(ctx)
		if err != nil {
			log.Printf("Failed to read answer %d: %v", answer.ID(), err)
			continue
		}
		author, err := answer.Author(ctx)
		if err != nil || author == nil {
			fmt.Printf("%d. answer %d (votes: %d)\n", i+1, answer.ID(), votes)
			continue
		}
		authorName, _ := author.Name(ctx)
		fmt.Printf("%d. answer %d by %s (votes: %d)\n", i+1, answer.ID(), authorName, votes)
	}

	// Range over a listing with All; errors arrive in the loop.
	fmt.Println("\nRecent followers:")
	n := 0
	for follower, err := range me.Followers().WithPageSize(10).Iter(ctx).All() {
		if err != nil {
			log.Printf("Failed to list followers: %v", err)
			break
		}
		followerName, _ := follower.Name(ctx)
		fmt.Printf("- %s (%s)\n", followerName, follower.ID())
		if n++; n == 10 {
			break
		}
	}
}

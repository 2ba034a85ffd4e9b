package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"

	"nutricoach-backend/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "NutriCoach backend base URL")
	telegramID := flag.Int64("id", 0, "Telegram ID whose profile seeds the conversation (0 = none)")
	style := flag.String("style", "dark", "glamour style for replies")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	api := client.New(*server, &http.Client{Timeout: 90 * time.Second})

	var profileContext string
	if *telegramID != 0 {
		p, err := api.FetchProfile(ctx, *telegramID)
		if err != nil {
			color.New(color.FgRed).Fprintf(os.Stderr, "✗ profile %d: %v\n", *telegramID, err)
			os.Exit(1)
		}
		profileContext = p.ContextString()
		color.New(color.Faint).Fprintf(os.Stderr, "profile: %s\n", profileContext)
	}

	render := func(text string) (string, error) {
		return glamour.Render(text, *style)
	}

	s := newSession(api, profileContext, render)
	if err := s.run(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

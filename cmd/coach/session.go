package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"nutricoach-backend/internal/client"
	"nutricoach-backend/internal/models"
)

type chatter interface {
	Chat(ctx context.Context, turn models.ChatTurnRequest) (string, error)
}

// session holds the conversation on the client side; the server keeps none.
type session struct {
	api     chatter
	context string
	history []models.HistoryTurn
	render  func(string) (string, error)
}

func newSession(api chatter, profileContext string, render func(string) (string, error)) *session {
	return &session{api: api, context: profileContext, render: render}
}

// run reads one message per line until EOF or "/quit".
func (s *session) run(ctx context.Context, in io.Reader, out io.Writer) error {
	prompt := color.New(color.FgGreen, color.Bold)
	scanner := bufio.NewScanner(in)

	for {
		prompt.Fprint(out, "you> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			s.history = nil
			color.New(color.Faint).Fprintln(out, "history cleared")
			continue
		}

		reply, err := s.send(ctx, line)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				color.New(color.FgRed).Fprintf(out, "✗ %s\n", apiErr.Error())
				continue
			}
			return err
		}

		rendered, err := s.render(reply)
		if err != nil {
			rendered = reply + "\n"
		}
		fmt.Fprint(out, rendered)
	}
}

// send posts one turn and, on success, appends both sides to the history.
func (s *session) send(ctx context.Context, message string) (string, error) {
	reply, err := s.api.Chat(ctx, models.ChatTurnRequest{
		Message:     message,
		Context:     s.context,
		ChatHistory: s.history,
	})
	if err != nil {
		return "", err
	}

	s.history = append(s.history,
		models.HistoryTurn{Role: models.RoleUser, Text: message},
		models.HistoryTurn{Role: models.RoleAssistant, Text: reply},
	)
	return reply, nil
}

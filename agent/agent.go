// Package agent implements the assist chat: a facilitator answering the user
// with the help of experts, some of them reading the watchlist.
package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent is the AI assistant that handles the chat session.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
	// Print writes an answer, defaults to writing it verbatim.
	Print func(w io.Writer, markdown string)
}

// New creates a new Agent reading user input from r and writing answers to w.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
		Print:       func(w io.Writer, md string) { fmt.Fprintln(w, md) },
	}
}

// Start creates the chats of all experts and of the facilitator.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return fmt.Errorf("cannot start expert %s: %w", e.Name, err)
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// Run starts the interactive session. prompts are sent first, as if typed by
// the user.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to coinwatch assist. Type 'bye' to exit.")
	for {
		fmt.Fprint(a.w, prompt)
		var input string
		if len(prompts) > 0 {
			input, prompts = strings.TrimSpace(prompts[0]), prompts[1:]
			if input == "" {
				continue
			}
			fmt.Fprintln(a.w, input)
		} else {
			var err error
			input, err = a.r.ReadString('\n')
			if err == io.EOF {
				return nil // Ctrl+D
			}
			if err != nil {
				return err
			}
			input = strings.TrimSpace(input)
		}

		if input == "bye" {
			return nil
		}
		if input == "" {
			continue
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		a.Print(a.w, text(content))
	}
}

// text joins the text parts of c.
func text(c *genai.Content) string {
	var parts []string
	for _, p := range c.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.Join(parts, "\n")
}

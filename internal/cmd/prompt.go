package cmd

import (
	"strings"

	"github.com/chzyer/readline"
)

// promptLoop reads lines interactively and hands each one to handle. The loop
// ends on EOF, interrupt, or the literal "quit".
//
// Handler errors end the loop and propagate; per-prompt service hiccups that
// should not kill the session are the handler's job to absorb.
func promptLoop(prompt string, handle func(line string) error) error {
	rl, err := readline.New(prompt)
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			return nil
		}
		if err := handle(line); err != nil {
			return err
		}
	}
}

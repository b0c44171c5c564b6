package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/teamconnect/teamconnect/internal/protocol/wire"
)

// RunMenu drives the interactive loop: show the session summary, take a
// numbered choice, talk to the server. Returns after quit or EOF.
func (s *Session) RunMenu(ctx context.Context) error {
	rl, err := readline.New("> ")
	if err != nil {
		return fmt.Errorf("client: create readline: %w", err)
	}
	defer rl.Close()

	for {
		s.printMenu()

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				return s.quit(ctx)
			}
			return fmt.Errorf("client: read input: %w", err)
		}

		switch strings.TrimSpace(line) {
		case "1":
			s.chooseStatus(ctx, rl)
		case "2":
			s.chooseTeam(ctx, rl)
		case "3":
			s.showTeamStatus(ctx)
		case "4":
			return s.quit(ctx)
		default:
			fmt.Println("Invalid input.")
		}
	}
}

func (s *Session) printMenu() {
	team := "[none]"
	if s.teamID != wire.TeamWildcard && int(s.teamID) < len(s.teams) {
		team = s.teams[s.teamID]
	}
	status := "[none]"
	if s.status != wire.InactiveStatus && int(s.status) < len(s.statuses) {
		status = s.statuses[s.status]
	}

	fmt.Println()
	fmt.Println("===========================================================")
	fmt.Printf("SERVER: %-20s |\n", s.conn.RemoteAddr())
	fmt.Printf("USER:   %-20s | NET_ID: %-20d\n", s.name, s.netID)
	fmt.Printf("TEAM:   %-20s | STATUS: %-20s\n", team, status)
	fmt.Println()
	fmt.Println("Type a number to choose an option:")
	fmt.Println("  [1] Update my status")
	fmt.Println("  [2] Change my team")
	fmt.Println("  [3] Get team status update")
	fmt.Println("  [4] Quit program")
	fmt.Println()
}

func (s *Session) chooseStatus(ctx context.Context, rl *readline.Instance) {
	fmt.Println("Type a number to choose a status")
	for i, name := range s.statuses {
		fmt.Printf(" %4s %s\n", "["+strconv.Itoa(i+1)+"]", name)
	}
	choice, ok := readChoice(rl, len(s.statuses))
	if !ok {
		return
	}
	if err := s.SetStatus(ctx, byte(choice)); err != nil {
		fmt.Println("Could not update status:", err)
	}
}

func (s *Session) chooseTeam(ctx context.Context, rl *readline.Instance) {
	fmt.Println("Type a number to choose a team")
	for i, name := range s.teams {
		fmt.Printf(" %4s %s\n", "["+strconv.Itoa(i+1)+"]", name)
	}
	choice, ok := readChoice(rl, len(s.teams))
	if !ok {
		return
	}
	if err := s.SetTeam(ctx, byte(choice)); err != nil {
		fmt.Println("Could not change team:", err)
	}
}

func (s *Session) showTeamStatus(ctx context.Context) {
	members, err := s.TeamStatuses(ctx)
	if errors.Is(err, ErrNoTeam) {
		fmt.Println("You are not on a team. To get team status updates, join a team.")
		return
	}
	if err != nil {
		fmt.Println("Could not fetch team status:", err)
		return
	}
	for _, m := range members {
		if m.Name == "" {
			continue
		}
		status := "[none]"
		if int(m.Status) < len(s.statuses) {
			status = s.statuses[m.Status]
		}
		fmt.Printf("  %-16s - %s\n", m.Name, status)
	}
}

func (s *Session) quit(ctx context.Context) error {
	fmt.Println("Shutting down TeamConnect client...")
	if err := s.Leave(ctx); err != nil {
		return err
	}
	fmt.Println("Shutdown complete. Goodbye.")
	return nil
}

// readChoice parses a 1-based selection and returns it 0-based.
func readChoice(rl *readline.Instance, max int) (int, bool) {
	line, err := rl.Readline()
	if err != nil {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 1 || n > max {
		fmt.Println("Invalid selection:", strings.TrimSpace(line))
		return 0, false
	}
	return n - 1, true
}

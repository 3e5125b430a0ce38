// Command portal is an interactive terminal frontend for the student portal
// API. It keeps a local session with the same 30 minute idle timeout the web
// frontend applies, so an idle terminal is logged out just like an idle tab.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sakif/student-portal/internal/client"
	"github.com/sakif/student-portal/internal/session"
)

func main() {
	baseURL := os.Getenv("PORTAL_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	timeout := session.DefaultTimeout
	if raw := os.Getenv("SESSION_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid SESSION_TIMEOUT %q: %v\n", raw, err)
			os.Exit(1)
		}
		timeout = d
	}

	app := &portal{
		api:      client.New(baseURL),
		sessions: session.NewManager(session.NewMemoryStore(), timeout),
		in:       bufio.NewReader(os.Stdin),
	}
	app.sessions.OnExpire = func() {
		fmt.Println("\nYour session expired due to inactivity. Please login again.")
		fmt.Print("> ")
	}

	fmt.Printf("Student portal at %s. Type 'help' for commands.\n", baseURL)
	app.run()
}

type portal struct {
	api      *client.Client
	sessions *session.Manager
	in       *bufio.Reader
}

func (p *portal) run() {
	for {
		fmt.Print("> ")
		line, err := p.readLine()
		if err != nil {
			fmt.Println()
			return
		}
		if line == "" {
			continue
		}

		// Any command counts as activity and pushes the idle deadline out.
		p.sessions.Touch()

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		err = p.dispatch(ctx, cmd, args)
		cancel()

		if errors.Is(err, errQuit) {
			return
		}
		if err != nil {
			printError(err)
		}
	}
}

var errQuit = errors.New("quit")

func (p *portal) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		printHelp()
		return nil
	case "register":
		return p.register(ctx)
	case "login":
		return p.login(ctx, args)
	case "logout":
		p.sessions.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return p.whoami()
	case "submit":
		return p.submit(ctx)
	case "list":
		return p.list(ctx, args)
	case "quit", "exit":
		return errQuit
	default:
		fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
		return nil
	}
}

func (p *portal) register(ctx context.Context) error {
	in := client.RegisterInput{
		Name:       p.prompt("Name"),
		Email:      p.prompt("Email"),
		RollNo:     p.prompt("Roll number"),
		Department: p.prompt("Department"),
		Phone:      p.prompt("Phone"),
		Password:   p.prompt("Password"),
	}

	user, err := p.api.Register(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s (id %d). You can login now.\n", user.Name, user.ID)
	return nil
}

func (p *portal) login(ctx context.Context, args []string) error {
	var email string
	if len(args) > 0 {
		email = args[0]
	} else {
		email = p.prompt("Email")
	}
	password := p.prompt("Password")

	user, err := p.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := p.sessions.Login(user); err != nil {
		return fmt.Errorf("starting session: %w", err)
	}
	fmt.Printf("Welcome back, %s.\n", user.Name)
	return nil
}

func (p *portal) whoami() error {
	user := p.sessions.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("%s <%s>, roll %s, %s\n", user.Name, user.Email, user.RollNo, user.Department)
	return nil
}

// submit and list require a live session, same as the web frontend's
// route guard.
func (p *portal) submit(ctx context.Context) error {
	if err := p.sessions.Guard(); err != nil {
		return err
	}
	user := p.sessions.CurrentUser()
	if user == nil {
		return session.ErrNotAuthenticated
	}

	in := client.SubmitComplaintInput{
		Title:       p.prompt("Title"),
		Category:    p.prompt("Category"),
		Description: p.prompt("Description"),
		StudentID:   user.ID,
	}

	complaint, err := p.api.SubmitComplaint(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("Complaint #%d submitted (%s).\n", complaint.ID, complaint.Status)
	return nil
}

func (p *portal) list(ctx context.Context, args []string) error {
	if err := p.sessions.Guard(); err != nil {
		return err
	}

	var studentID *int64
	if len(args) > 0 && args[0] == "mine" {
		user := p.sessions.CurrentUser()
		if user == nil {
			return session.ErrNotAuthenticated
		}
		studentID = &user.ID
	} else if len(args) > 0 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid student id %q", args[0])
		}
		studentID = &id
	}

	complaints, total, err := p.api.ListComplaints(ctx, studentID)
	if err != nil {
		return err
	}

	fmt.Printf("%d complaint(s)\n", total)
	for _, c := range complaints {
		fmt.Printf("  #%d [%s] %s - %s (%s, %s)\n",
			c.ID, c.Status, c.Title, c.Category, c.StudentName, c.CreatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func (p *portal) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *portal) prompt(label string) string {
	fmt.Printf("%s: ", label)
	line, _ := p.readLine()
	return line
}

func printError(err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		fmt.Println(apiErr.Message)
		for _, v := range apiErr.Errors {
			fmt.Printf("  - %s\n", v)
		}
	case errors.Is(err, session.ErrNotAuthenticated):
		fmt.Println("Please login first.")
	default:
		fmt.Printf("Error: %v\n", err)
	}
}

func printHelp() {
	fmt.Print(`Commands:
  register          create a student account
  login [email]     sign in and start a session
  logout            end the session
  whoami            show the signed-in student
  submit            file a complaint (requires login)
  list [mine|<id>]  list complaints, optionally filtered
  quit              exit
`)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dimitrije/teampulse/internal/config"
	"github.com/dimitrije/teampulse/internal/dashboard"
	"github.com/dimitrije/teampulse/internal/notify"
	"github.com/dimitrije/teampulse/internal/session"
	"github.com/dimitrije/teampulse/internal/store"
	"github.com/dimitrije/teampulse/pkg/dto"
	"github.com/google/uuid"
)

func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tokenStore, err := store.NewSQLite(cfg.TokenStorePath)
	if err != nil {
		log.Fatalf("Failed to open token store: %v", err)
	}
	defer tokenStore.Close()

	sess := session.NewManager(cfg.APIBaseURL, tokenStore)
	sess.OnChange(func(e session.Event) {
		if e.Reason == session.ReasonExpired {
			log.Println(e.Notice)
		}
	})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	if err := sess.Bootstrap(ctx); err != nil {
		// A failed bootstrap just means we start logged out.
		log.Printf("Session not restored: %v", err)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "login":
		runLogin(ctx, sess, args)
	case "logout":
		sess.Logout()
		fmt.Println("Logged out.")
	case "register":
		runRegister(ctx, sess, args)
	case "me":
		runMe(sess)
	case "dashboard":
		runDashboard(ctx, sess)
	case "feedback":
		runFeedback(ctx, sess, args)
	case "give":
		runGive(ctx, sess, args)
	case "team":
		runTeam(ctx, sess, args)
	case "notifications":
		runNotifications(ctx, cfg, sess, args)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: teampulse <command> [flags]

commands:
  login          -email -password
  logout
  register       -role manager|employee -email -name -password [-team-name | -team-id]
  me
  dashboard
  feedback       list | ack -id | comment -id -text | request | export [-out file]
  give           -employee -strengths -improvements -sentiment [-suggest]
  team           add-member -id | employees | list
  notifications  [-watch]`)
}

func requireUser(sess *session.Manager) *dto.User {
	state := sess.Current()
	if !state.Authenticated() {
		log.Fatal("Not logged in. Run `teampulse login` first.")
	}
	return state.User
}

func runLogin(ctx context.Context, sess *session.Manager, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args)

	if err := sess.Login(ctx, *email, *password); err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	fmt.Printf("Logged in as %s (%s).\n", sess.Current().User.FullName, sess.Current().User.Role)
}

func runRegister(ctx context.Context, sess *session.Manager, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	role := fs.String("role", "", "manager or employee")
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	password := fs.String("password", "", "account password")
	teamName := fs.String("team-name", "", "new team name (managers)")
	teamID := fs.String("team-id", "", "existing team id (employees)")
	fs.Parse(args)

	var reg session.Registration
	switch *role {
	case dto.RoleManager:
		reg = session.ManagerRegistration{
			Email:    *email,
			FullName: *name,
			Password: *password,
			TeamName: *teamName,
		}
	case dto.RoleEmployee:
		id, err := uuid.Parse(*teamID)
		if err != nil {
			log.Fatalf("Invalid -team-id: %v", err)
		}
		reg = session.EmployeeRegistration{
			Email:    *email,
			FullName: *name,
			Password: *password,
			TeamID:   id,
		}
	default:
		log.Fatal("-role must be manager or employee")
	}

	user, err := sess.Register(ctx, reg)
	if err != nil {
		log.Fatalf("Registration failed: %v", err)
	}
	fmt.Printf("Registered %s. Please log in.\n", user.Email)
}

func runMe(sess *session.Manager) {
	user := requireUser(sess)
	fmt.Printf("%s <%s> role=%s\n", user.FullName, user.Email, user.Role)
}

func runDashboard(ctx context.Context, sess *session.Manager) {
	user := requireUser(sess)

	if user.IsManager() {
		ctl := dashboard.NewManagerController(sess.Client())
		if err := ctl.Load(ctx); err != nil {
			log.Fatalf("Failed to load dashboard: %v", err)
		}
		snap := ctl.Snapshot()
		fmt.Printf("%s: %d members, %d feedback items given\n",
			snap.Team.Name, len(snap.Team.Members), snap.TotalFeedback())
		for _, stat := range snap.Stats {
			fmt.Printf("  %-8s %d\n", stat.Sentiment, stat.Count)
		}
		for _, member := range snap.Team.Members {
			fmt.Printf("  %s <%s>  id=%s\n", member.FullName, member.Email, member.ID)
		}
		return
	}

	ctl := dashboard.NewEmployeeController(sess.Client())
	if err := ctl.Load(ctx); err != nil {
		log.Fatalf("Failed to load feedback: %v", err)
	}
	printFeedback(ctl.Feedback())
}

func runFeedback(ctx context.Context, sess *session.Manager, args []string) {
	requireUser(sess)
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	ctl := dashboard.NewEmployeeController(sess.Client())

	switch args[0] {
	case "list":
		if err := ctl.Load(ctx); err != nil {
			log.Fatalf("Failed to load feedback: %v", err)
		}
		printFeedback(ctl.Feedback())
	case "ack":
		fs := flag.NewFlagSet("ack", flag.ExitOnError)
		id := fs.String("id", "", "feedback id")
		fs.Parse(args[1:])
		if err := ctl.Load(ctx); err != nil {
			log.Fatalf("Failed to load feedback: %v", err)
		}
		if err := ctl.Acknowledge(ctx, mustUUID(*id)); err != nil {
			log.Fatalf("Failed to acknowledge: %v", err)
		}
		fmt.Println("Acknowledged.")
	case "comment":
		fs := flag.NewFlagSet("comment", flag.ExitOnError)
		id := fs.String("id", "", "feedback id")
		text := fs.String("text", "", "comment text")
		fs.Parse(args[1:])
		if err := ctl.Load(ctx); err != nil {
			log.Fatalf("Failed to load feedback: %v", err)
		}
		if _, err := ctl.AddComment(ctx, mustUUID(*id), *text); err != nil {
			log.Fatalf("Failed to comment: %v", err)
		}
		fmt.Println("Comment added.")
	case "request":
		if err := ctl.RequestFeedback(ctx); err != nil {
			log.Fatalf("Failed to request feedback: %v", err)
		}
		fmt.Println("Your manager has been notified.")
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "feedback_report.pdf", "output file")
		fs.Parse(args[1:])
		data, err := ctl.ExportPDF(ctx)
		if err != nil {
			log.Fatalf("Failed to export report: %v", err)
		}
		if err := os.WriteFile(*out, data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", *out, err)
		}
		fmt.Printf("Report written to %s.\n", *out)
	default:
		usage()
		os.Exit(2)
	}
}

func runGive(ctx context.Context, sess *session.Manager, args []string) {
	user := requireUser(sess)
	if !user.IsManager() {
		log.Fatal("Only managers can give feedback.")
	}

	fs := flag.NewFlagSet("give", flag.ExitOnError)
	employeeID := fs.String("employee", "", "employee id")
	strengths := fs.String("strengths", "", "strengths text")
	improvements := fs.String("improvements", "", "areas for improvement")
	sentiment := fs.String("sentiment", "", "positive|neutral|negative")
	suggest := fs.Bool("suggest", false, "generate strengths with AI assistance")
	fs.Parse(args)

	ctl := dashboard.NewManagerController(sess.Client())
	if err := ctl.Load(ctx); err != nil {
		log.Fatalf("Failed to load team: %v", err)
	}

	id := mustUUID(*employeeID)
	var member *dto.User
	for _, m := range ctl.Snapshot().Team.Members {
		if m.ID == id {
			member = &m
			break
		}
	}
	if member == nil {
		log.Fatal("That employee is not on your team.")
	}

	if err := ctl.BeginFeedback(*member); err != nil {
		log.Fatalf("Cannot start feedback: %v", err)
	}

	if *suggest {
		text, err := sess.Client().SuggestFeedback(ctx,
			fmt.Sprintf("Key points for feedback for %s:", member.FullName))
		if err != nil {
			log.Fatalf("Failed to get AI suggestion: %v", err)
		}
		*strengths = text
	}

	created, err := ctl.SubmitFeedback(ctx, dashboard.FeedbackDraft{
		Strengths:           *strengths,
		AreasForImprovement: *improvements,
		Sentiment:           dto.Sentiment(*sentiment),
	})
	if err != nil {
		log.Fatalf("Failed to submit feedback: %v", err)
	}
	fmt.Printf("Feedback %s submitted for %s.\n", created.ID, member.FullName)
}

func runTeam(ctx context.Context, sess *session.Manager, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		// Public listing, available while logged out (used before registering).
		teams, err := sess.Client().ListTeams(ctx)
		if err != nil {
			log.Fatalf("Failed to list teams: %v", err)
		}
		for _, team := range teams {
			fmt.Printf("%s  %s\n", team.ID, team.Name)
		}
	case "employees":
		requireUser(sess)
		ctl := dashboard.NewManagerController(sess.Client())
		employees, err := ctl.ListEmployees(ctx)
		if err != nil {
			log.Fatalf("Failed to list employees: %v", err)
		}
		for _, e := range employees {
			fmt.Printf("%s  %s <%s>\n", e.ID, e.FullName, e.Email)
		}
	case "add-member":
		requireUser(sess)
		fs := flag.NewFlagSet("add-member", flag.ExitOnError)
		id := fs.String("id", "", "employee id")
		fs.Parse(args[1:])
		ctl := dashboard.NewManagerController(sess.Client())
		if err := ctl.AddMember(ctx, mustUUID(*id)); err != nil {
			log.Fatalf("Failed to add member: %v", err)
		}
		fmt.Println("Member added.")
	default:
		usage()
		os.Exit(2)
	}
}

func runNotifications(ctx context.Context, cfg *config.Config, sess *session.Manager, args []string) {
	requireUser(sess)

	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	watch := fs.Bool("watch", false, "keep polling until interrupted")
	fs.Parse(args)

	poller := notify.NewPoller(sess.Client(), cfg.NotifyPollInterval)
	poller.OnUpdate(func(unread int, notifications []dto.Notification) {
		fmt.Printf("-- %d unread --\n", unread)
		for _, n := range notifications {
			marker := " "
			if !n.IsRead {
				marker = "*"
			}
			fmt.Printf("%s %s  %s\n", marker, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
		}
	})

	if !*watch {
		if err := poller.Refresh(ctx); err != nil {
			log.Fatalf("Failed to fetch notifications: %v", err)
		}
		return
	}

	watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	poller.Run(watchCtx)
}

func printFeedback(items []dto.Feedback) {
	if len(items) == 0 {
		fmt.Println("No feedback yet.")
		return
	}
	for _, f := range items {
		from := "your manager"
		if f.Manager != nil {
			from = f.Manager.FullName
		}
		ack := ""
		if f.Acknowledged {
			ack = " (acknowledged)"
		}
		fmt.Printf("%s  [%s] from %s%s\n", f.ID, f.Sentiment, from, ack)
		fmt.Printf("  Strengths:   %s\n", f.Strengths)
		fmt.Printf("  Improve:     %s\n", f.AreasForImprovement)
		if f.Feedback != "" {
			fmt.Printf("  Generated:   %s\n", f.Feedback)
		}
		for _, comment := range f.Comments {
			fmt.Printf("  > %s: %s\n", comment.User.FullName, comment.Content)
		}
	}
}

func mustUUID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		log.Fatalf("Invalid id %q: %v", s, err)
	}
	return id
}

package cli

import (
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/openshelf/openshelf/internal/auth"
	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
)

// CreateAdminCommand creates a librarian account. Registration through
// the web form only ever produces members, so this is the one way to
// get an admin.
type CreateAdminCommand struct {
	FullName     string
	Username     string
	Email        string
	Password     string
	DatabasePath string
}

// NewCreateAdminCommand creates a new CreateAdminCommand.
func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

// ParseFlags parses command line flags.
func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.FullName, "name", "", "Full name of the administrator")
	fs.StringVar(&cmd.Username, "username", "", "Username (5-15 characters)")
	fs.StringVar(&cmd.Email, "email", "", "Email address")
	fs.StringVar(&cmd.Password, "password", "", "Password (omit to be prompted)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a librarian (admin) account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -name \"Jane Doe\" -username janedoe -email jane@example.org\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the command.
func (cmd *CreateAdminCommand) Run() error {
	if cmd.Username == "" || cmd.Email == "" || cmd.FullName == "" {
		return fmt.Errorf("name, username and email are required")
	}

	password := cmd.Password
	if password == "" {
		fmt.Print("Password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	cfg := config.NewConfig()
	service := auth.NewService(db.DB, cfg.Auth)

	user, err := service.CreateAdmin(cmd.FullName, cmd.Username, cmd.Email, password)
	if err != nil {
		return err
	}

	fmt.Printf("Created admin %q (ID %d)\n", user.Username, user.ID)
	return nil
}

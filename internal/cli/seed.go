package cli

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database"
	"github.com/openshelf/openshelf/internal/database/books"
	"github.com/openshelf/openshelf/internal/entities"
	"github.com/openshelf/openshelf/internal/uploads"
)

// SeedCommand populates the catalog with a set of public domain books
// so a fresh installation has something to browse.
type SeedCommand struct {
	DatabasePath string
}

// NewSeedCommand creates a new SeedCommand.
func NewSeedCommand() *SeedCommand {
	return &SeedCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SeedCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Add sample public domain books to the catalog.\n")
		fmt.Fprintf(os.Stderr, "Books already present (same title and author) are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	return fs.Parse(args)
}

// Run executes the command.
func (cmd *SeedCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	repo := books.NewRepository(db.DB)

	existing, err := repo.ListByTitle()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	present := make(map[string]bool, len(existing))
	for _, b := range existing {
		present[b.Title+"|"+b.Author] = true
	}

	created := 0
	for _, book := range sampleBooks() {
		if present[book.Title+"|"+book.Author] {
			continue
		}
		if err := repo.Create(&book); err != nil {
			log.Printf("Failed to add %q: %v", book.Title, err)
			continue
		}
		log.Printf("Added: %s by %s [%s]", book.Title, book.Author, book.Genre)
		created++
	}

	fmt.Printf("Seeded %d book(s).\n", created)
	return nil
}

func sampleBooks() []entities.Book {
	classics := []struct {
		title  string
		author string
		genre  string
	}{
		{"Meditations", "Marcus Aurelius", "Philosophy"},
		{"Letters from a Stoic", "Seneca", "Philosophy"},
		{"The Republic", "Plato", "Philosophy"},
		{"The Art of War", "Sun Tzu", "Philosophy"},
		{"On the Origin of Species", "Charles Darwin", "Science"},
		{"Pride and Prejudice", "Jane Austen", "Fiction"},
		{"War and Peace", "Leo Tolstoy", "Fiction"},
		{"Crime and Punishment", "Fyodor Dostoevsky", "Fiction"},
		{"Frankenstein", "Mary Shelley", "Fiction"},
		{"The Picture of Dorian Gray", "Oscar Wilde", "Fiction"},
		{"Dracula", "Bram Stoker", "Horror"},
		{"The Time Machine", "H. G. Wells", "Science Fiction"},
	}

	result := make([]entities.Book, 0, len(classics))
	for _, c := range classics {
		result = append(result, entities.Book{
			Title:        c.title,
			Author:       c.author,
			Genre:        c.genre,
			CoverImage:   uploads.DefaultCover,
			Availability: entities.AvailabilityAvailable,
		})
	}
	return result
}

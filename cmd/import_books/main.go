// Command import_books resets the local database and seeds it with a
// starter catalog plus a bootstrap administrator account. Intended for
// development and demos only; it deletes the existing database file.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"bookLendingManagement/internal/auth"
	"bookLendingManagement/internal/config"
	"bookLendingManagement/internal/db"
	"bookLendingManagement/models"
	"bookLendingManagement/repository"
)

type seedBook struct {
	title    string
	author   string
	coverURL string
	total    int
}

var starterCatalog = []seedBook{
	{"1984", "George Orwell", "https://covers.openlibrary.org/b/isbn/9780451524935-M.jpg", 3},
	{"Animal Farm", "George Orwell", "https://covers.openlibrary.org/b/isbn/9780451526342-M.jpg", 2},
	{"The Art of War", "Sun Tzu", "", 1},
	{"The Fellowship of the Ring", "J.R.R. Tolkien", "https://covers.openlibrary.org/b/isbn/9780547928210-M.jpg", 4},
	{"The Two Towers", "J.R.R. Tolkien", "https://covers.openlibrary.org/b/isbn/9780547928203-M.jpg", 4},
	{"The Return of the King", "J.R.R. Tolkien", "https://covers.openlibrary.org/b/isbn/9780547928197-M.jpg", 4},
	{"Romeo and Juliet", "William Shakespeare", "", 2},
	{"The Three Musketeers", "Alexandre Dumas", "", 1},
	{"The Diary of a Young Girl", "Anne Frank", "", 2},
}

func main() {
	cfg, err := config.LoadWithDefaults()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Clean up any existing database files
	fmt.Println("Cleaning up existing database files...")
	for _, suffix := range []string{"", "-shm", "-wal"} {
		file := cfg.Database.Path + suffix
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			fmt.Printf("Warning: Could not remove %s: %v\n", file, err)
		}
	}
	fmt.Println("Database cleanup complete.")

	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating database: %v\n", err)
		os.Exit(1)
	}
	defer d.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// The first registered account becomes the administrator.
	users := repository.NewUserRepository(d)
	adminEmail := getEnv("SEED_ADMIN_EMAIL", "admin@example.com")
	adminPassword := getEnv("SEED_ADMIN_PASSWORD", "admin-change-me")
	hash, err := auth.HashCredential(adminPassword)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing admin password: %v\n", err)
		os.Exit(1)
	}
	admin, err := users.Create(ctx, adminEmail, "Administrator", hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating admin account: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created administrator %s (ID: %s)\n", admin.Email, admin.ID)

	// Seed the catalog
	books := repository.NewBookRepository(d)
	fmt.Println("Seeding starter catalog...")

	successCount := 0
	errorCount := 0
	for _, sb := range starterCatalog {
		fmt.Printf("Importing: %s by %s... ", sb.title, sb.author)

		var cover *string
		if sb.coverURL != "" {
			c := sb.coverURL
			cover = &c
		}
		book, err := books.Create(ctx, &models.Book{
			Title:    sb.title,
			Author:   sb.author,
			CoverURL: cover,
			Total:    sb.total,
		})
		if err != nil {
			fmt.Printf("ERROR - %v\n", err)
			errorCount++
			continue
		}
		fmt.Printf("SUCCESS (ID: %s)\n", book.ID)
		successCount++
	}

	fmt.Printf("\nImport complete!\n")
	fmt.Printf("Successfully imported: %d books\n", successCount)
	fmt.Printf("Errors: %d\n", errorCount)

	if successCount > 0 {
		fmt.Println("\nImported books:")
		all, err := books.List(ctx, 100, 0)
		if err != nil {
			fmt.Printf("Error retrieving books: %v\n", err)
			return
		}
		fmt.Printf("%-40s %-30s %-6s\n", "Title", "Author", "Copies")
		fmt.Println(strings.Repeat("-", 78))
		for _, b := range all {
			fmt.Printf("%-40s %-30s %-6d\n", truncateString(b.Title, 40), truncateString(b.Author, 30), b.Total)
		}
	}
}

func getEnv(key, defaultVal string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultVal
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

// Command createuser creates a staff account or resets its password.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/packline/catalog/config"
	"github.com/packline/catalog/models"
)

func main() {
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	flag.Parse()

	if *username == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := models.OpenDB(models.DBOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.ConnString(),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	user, err := models.NewUsersRepository(db).SaveUser(*username, *password)
	if err != nil {
		log.Fatalf("Failed to save user: %v", err)
	}
	fmt.Printf("User %q saved (id %d)\n", user.Username, user.ID)
}

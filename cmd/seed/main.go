// Command main runs the database seeder for Laurel.
package main

import (
	"flag"
	"log"

	"laurel/internal/config"
	"laurel/internal/database"
	"laurel/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Store plaintext passwords (fast dev seeding)")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, clean=%v", *numUsers, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! The database is populated with demo data.")
	log.Println("All seeded users have the password: Password123!seed")
}

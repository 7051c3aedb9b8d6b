package main

import (
	"log"
	"os"

	"backend/internal/database"
	"backend/internal/model"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Demo accounts for local development: one CREATOR and one APPROVER.
var seedUsers = []struct {
	Email    string
	Name     string
	Password string
	Role     string
}{
	{Email: "creator@workflow.local", Name: "Creator", Password: "creator123", Role: model.RoleCreator},
	{Email: "approver@workflow.local", Name: "Approver", Password: "approver123", Role: model.RoleApprover},
}

func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	db, err := database.NewConnection(databaseDSN())
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}

	for _, u := range seedUsers {
		if err := upsertUser(db, u.Email, u.Name, u.Password, u.Role); err != nil {
			log.Fatalf("Failed to seed %s: %v", u.Email, err)
		}
		log.Printf("Seeded: %s %s", u.Role, u.Email)
	}
}

func upsertUser(db *gorm.DB, email, name, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		Email:    email,
		Name:     name,
		Password: string(hashed),
		Role:     role,
	}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password", "role"}),
	}).Create(&user).Error
}

func databaseDSN() string {
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	return "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
}

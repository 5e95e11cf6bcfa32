package config

import (
	"fmt"
	"log"
	"os"

	"github.com/skku-sw-25f-capstone6/HealthyScanner-backend/models"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Settings holds everything read from the environment. Loaded once in main
// and handed to constructors; nothing reads os.Getenv at request time.
type Settings struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	S3Bucket      string
	S3Region      string
	CloudFrontURL string
}

func Load() Settings {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	s := Settings{
		DBHost:     os.Getenv("DB_HOST"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBPort:     os.Getenv("DB_PORT"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),

		S3Bucket:      os.Getenv("S3_BUCKET"),
		S3Region:      os.Getenv("S3_REGION"),
		CloudFrontURL: os.Getenv("CLOUDFRONT_URL"),
	}

	if s.S3Region == "" {
		s.S3Region = os.Getenv("AWS_REGION") // fallback
	}
	if s.OpenAIBaseURL == "" {
		s.OpenAIBaseURL = "https://api.openai.com"
	}
	if s.OpenAIModel == "" {
		s.OpenAIModel = "gpt-4o-mini"
	}
	return s
}

func ConnectDB(s Settings) *gorm.DB {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Nutrition{},
		&models.Ingredient{},
		&models.ScanRecord{},
		&models.DailyScore{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}
	return db
}

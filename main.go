package main

import (
	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/mkwawa-heritage/marketplace-api/cmd/app"
)

// @contact.name   Mkwawa Heritage
// @contact.email  dev@mkwawa.example
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token issued by /auth/login
func main() {
	if err := app.Start(); err != nil {
		panic(err)
	}
}

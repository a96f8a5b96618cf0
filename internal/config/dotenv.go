package config

import "github.com/joho/godotenv"

// LoadDotEnv reads a .env file and sets environment variables.
// Variables already present in the environment take precedence.
func LoadDotEnv(path string) error {
	return godotenv.Load(path)
}

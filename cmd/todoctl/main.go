package main

import (
	"github.com/dmitrijs2005/todokeeper/internal/admin"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	admin.Execute()
}

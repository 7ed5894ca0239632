package main

import (
	"flag"
	"fmt"
	"os"

	"docentes/internal/auth"
	"docentes/internal/config"
)

// Prints a bearer token accepted by the write routes when WRITE_AUTH is on.
func main() {
	cfg := config.Load()

	subject := flag.String("subject", "admin", "token subject")
	ttl := flag.Duration("ttl", auth.DefaultTokenExpiry, "token lifetime")
	flag.Parse()

	token, err := auth.NewJWTService(cfg.JWTSecret).GenerateToken(*subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

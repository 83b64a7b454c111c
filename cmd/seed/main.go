package main

import (
	"context"
	"fmt"
	"time"

	usersrepo "servicelink/internal/users/repository"
	"servicelink/internal/users/seed"
	"servicelink/pkg/auth"
	"servicelink/pkg/config"
)

const JobName = "seed"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	token, err := seed.EnsureMasterDemo(
		ctx,
		usersrepo.NewMongoUserRepository(cfg),
		auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTokenTTL),
		seed.MasterDemo{
			ID:       cfg.MasterDemoUserID,
			Email:    cfg.MasterDemoEmail,
			FullName: cfg.MasterDemoFullName,
		},
		time.Now(),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Seeding failed", "error", err)
	}

	fmt.Println(token)
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"nightapp-server/internal/config"
	"nightapp-server/internal/domain/model"
	"nightapp-server/internal/domain/ports/repository"
	pg "nightapp-server/internal/infra/db/postgres"
	"nightapp-server/internal/infra/logging"
	"nightapp-server/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	activityRepo := pg.NewActivityRepo(pool)
	rewardRepo := pg.NewRewardRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	qrRepo := pg.NewQRCodeRepo(pool)
	txManager := pg.NewTxManager(pool)

	activityUC := usecase.NewActivityUseCase(activityRepo, logger)
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	qrUC := usecase.NewQRCodeUseCase(qrRepo, userRepo, cfg.QRCode.DefaultTTL, logger)

	// If activities already exist, do nothing.
	existing, err := activityUC.List(ctx, false)
	if err != nil {
		log.Fatalf("list activities: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d activities already present. No changes.\n", len(existing))
		for _, a := range existing {
			fmt.Printf("  - %s (points=%d, active=%t)\n", a.Name, a.Points, a.IsActive)
		}
		return
	}

	activities := []struct {
		Name   string
		Points int64
	}{
		{"entry", 10},
		{"bar_purchase", 5},
		{"event_checkin", 20},
	}
	for _, s := range activities {
		a, err := activityUC.Create(ctx, s.Name, s.Points)
		if err != nil {
			log.Fatalf("create activity %q: %v", s.Name, err)
		}
		fmt.Printf("seeded activity: %s (id=%s, points=%d)\n", a.Name, a.ID, a.Points)
	}

	rewards := []struct {
		Name        string
		Description string
		Cost        int64
	}{
		{"free_drink", "One drink on the house", 50},
		{"free_entry", "Skip the cover charge", 30},
		{"vip_table", "VIP table for one night", 200},
	}
	for _, s := range rewards {
		r, err := model.NewReward("", s.Name, s.Description, s.Cost)
		if err != nil {
			log.Fatalf("build reward %q: %v", s.Name, err)
		}
		if err := rewardRepo.Save(ctx, repository.NoTX, r); err != nil {
			log.Fatalf("save reward %q: %v", s.Name, err)
		}
		fmt.Printf("seeded reward: %s (id=%s, cost=%d)\n", r.Name, r.ID, r.CostPoints)
	}

	// A demo member with a scannable code, for poking the API by hand.
	member, err := userUC.RegisterOrFetch(ctx, "demo", "Demo Member")
	if err != nil {
		log.Fatalf("register demo member: %v", err)
	}
	code, err := qrUC.Issue(ctx, member.ID)
	if err != nil {
		log.Fatalf("issue demo code: %v", err)
	}
	fmt.Printf("seeded member: %s (id=%s) with code %s\n", member.Username, member.ID, code.Code)

	fmt.Println("Seeding complete.")
}

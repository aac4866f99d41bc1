package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
	pg "telegram-event-reminder/internal/infra/db/postgres"
)

var (
	companies = []string{"Folk", "Amber", "Padron", "ENO"}
	roles     = []string{"Гость", "Сотрудник", "Менеджер"}
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	withEvent := flag.Bool("event", false, "also add a sample event for tomorrow (first company, default role)")
	adminID := flag.Int64("admin", 0, "mark this registered telegram user as admin")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	companyRepo := pg.NewCompanyRepo(pool)
	roleRepo := pg.NewRoleRepo(pool)

	// Saves are upserts, so re-running the seed is harmless.
	var first *model.Company
	for _, name := range companies {
		c, err := model.NewCompany(name)
		if err != nil {
			log.Fatalf("company %q: %v", name, err)
		}
		if err := companyRepo.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("save company %q: %v", name, err)
		}
		if first == nil {
			first = c
		}
		fmt.Printf("company: %s (id=%d)\n", c.Name, c.ID)
	}

	var defaultRole *model.Role
	for _, name := range append(roles, cfg.Registration.DefaultRole) {
		r, err := model.NewRole(name)
		if err != nil {
			log.Fatalf("role %q: %v", name, err)
		}
		if err := roleRepo.Save(ctx, repository.NoTX, r); err != nil {
			log.Fatalf("save role %q: %v", name, err)
		}
		if r.Name == cfg.Registration.DefaultRole {
			defaultRole = r
		}
		fmt.Printf("role: %s (id=%d)\n", r.Name, r.ID)
	}

	if *withEvent {
		ev, err := model.NewEvent("Дегустация", "Завтра в 19:00 дегустация новых вин", time.Now().In(cfg.Location()).AddDate(0, 0, 1), first.ID, []int64{defaultRole.ID})
		if err != nil {
			log.Fatalf("event: %v", err)
		}
		if err := pg.NewEventRepo(pool).Save(ctx, repository.NoTX, ev); err != nil {
			log.Fatalf("save event: %v", err)
		}
		fmt.Printf("event: %s on %s (id=%d)\n", ev.Title, ev.Date.Format(time.DateOnly), ev.ID)
	}

	if *adminID != 0 {
		userRepo := pg.NewUserRepo(pool)
		u, err := userRepo.FindByTelegramID(ctx, repository.NoTX, *adminID)
		if err != nil {
			log.Fatalf("find user %d (they must /start the bot first): %v", *adminID, err)
		}
		u.IsAdmin = true
		u.Touch()
		if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("save admin: %v", err)
		}
		fmt.Printf("admin: %s\n", u)
	}

	fmt.Println("✅ Seeding complete.")
}

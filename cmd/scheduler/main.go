package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/lending-registry/internal/config"
	"github.com/segyhp/lending-registry/internal/repository"
	"github.com/segyhp/lending-registry/internal/service"
	"github.com/segyhp/lending-registry/pkg/utils"
)

func main() {
	log.Println("Starting lending scheduler...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetFlags(cfg.Logging.Flags())

	ctx := context.Background()

	store, err := repository.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open snapshot store: %v", err)
	}
	defer store.Close()

	clock := utils.SystemClock{Location: cfg.Location()}
	lendingService := service.NewLendingService(store.Snapshots, cfg.Lending, clock, service.LogNotifier())
	if err := lendingService.Load(ctx); err != nil {
		log.Fatalf("Failed to load registry %s: %v", cfg.Lending.RegistryName, err)
	}

	c := cron.New(cron.WithParser(config.SchedulerParser), cron.WithLocation(cfg.Location()))

	if err := setupCronJobs(c, cfg, lendingService); err != nil {
		log.Fatalf("Error scheduling daily sweep: %v", err)
	}

	c.Start()
	log.Println("Scheduler started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	<-c.Stop().Done()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, lendingService *service.LendingService) error {
	_, err := c.AddFunc(cfg.Scheduler.Spec, func() {
		log.Println("Running daily overdue sweep...")
		report, err := lendingService.RunDailySweep(context.Background())
		if err != nil {
			log.Printf("Daily sweep failed: %v", err)
			return
		}
		log.Printf("Daily sweep for %s: checked=%d newly_overdue=%d escalated=%d",
			report.Day.Format("2006-01-02"), report.Checked, report.NewlyOverdue, report.Escalated)
	})
	if err != nil {
		return err
	}

	log.Printf("Daily sweep scheduled with %q", cfg.Scheduler.Spec)
	return nil
}

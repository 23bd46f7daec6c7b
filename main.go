package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "charter/internal/config"
	"charter/internal/events"
	router "charter/internal/http"
	"charter/internal/lock"
	"charter/internal/repositories"
	"charter/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	env, err := intconfig.LoadEnv()
	if err != nil {
		log.Fatalf("Konfigurasi tidak valid: %v", err)
	}
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	db, err := intconfig.ConnectDB(env)
	if err != nil {
		log.Fatalf("Gagal koneksi database: %v", err)
	}
	defer intconfig.CloseDB()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 15*time.Second)
	settingsRepo := repositories.DispatchSettingsRepo{DB: db}
	historyRepo := repositories.AssignmentHistoryRepo{DB: db}
	if err := settingsRepo.EnsureTable(bootCtx, env.DispatchDefaultBatchSize); err != nil {
		log.Fatalf("Gagal menyiapkan dispatch_settings: %v", err)
	}
	if err := historyRepo.EnsureTable(bootCtx); err != nil {
		log.Fatalf("Gagal menyiapkan driver_assignment_history: %v", err)
	}
	bootCancel()

	locker, closeLocker := newLocker(env)
	defer closeLocker()

	publisher := newPublisher(env)
	defer publisher.Close()

	bookingRepo := repositories.BookingRepo{DB: db}
	driverRepo := repositories.DriverRepo{DB: db}

	executor := services.AssignmentExecutor{
		Bookings:  bookingRepo,
		History:   historyRepo,
		Locker:    locker,
		Publisher: publisher,
	}
	dispatcher := &services.DispatchService{
		Bookings:         bookingRepo,
		Drivers:          driverRepo,
		Settings:         settingsRepo,
		Executor:         executor,
		DefaultBatchSize: env.DispatchDefaultBatchSize,
	}
	assigner := services.AssignmentService{
		Bookings: bookingRepo,
		Drivers:  driverRepo,
		Audit:    historyRepo,
		Executor: executor,
	}
	dutySheets := services.DutySheetService{Bookings: bookingRepo, Drivers: driverRepo}

	r := router.NewRouter(env, router.Deps{
		Dispatch:   dispatcher,
		Assignment: assigner,
		DutySheet:  dutySheets,
	})

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	schedCtx, stopScheduler := context.WithCancel(context.Background())
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		dispatcher.RunScheduler(schedCtx, env.DispatchInterval)
	}()

	go func() {
		log.Printf("Server berjalan di http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Gagal menjalankan server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Mematikan server...")

	stopScheduler()
	<-schedDone

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Shutdown server gagal: %v", err)
	}

	log.Println("Server berhenti dengan aman.")
}

// newLocker prefers Redis so several instances share driver locks; a single
// instance falls back to in-process locks.
func newLocker(env intconfig.Env) (lock.Locker, func()) {
	client, err := intconfig.NewRedis(env)
	if err != nil {
		log.Fatalf("Gagal koneksi redis: %v", err)
	}
	if client == nil {
		log.Printf("[DISPATCH] redis tidak dikonfigurasi, memakai lock lokal")
		return lock.NewLocalLocker(env.DispatchLockWait), func() {}
	}
	return lock.NewRedisLocker(client, env.DispatchLockTTL, env.DispatchLockWait), func() {
		if err := client.Close(); err != nil {
			log.Printf("[DISPATCH] gagal menutup redis: %v", err)
		}
	}
}

func newPublisher(env intconfig.Env) events.Publisher {
	if len(env.KafkaBrokers) == 0 {
		log.Printf("[DISPATCH] kafka tidak dikonfigurasi, event tidak dikirim")
		return events.NopPublisher{}
	}
	return events.NewKafkaPublisher(env.KafkaBrokers, env.KafkaTopic)
}

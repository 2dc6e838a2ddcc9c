package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/config"
	"github.com/seifadel74/getyourtrip/internal/handler"
	"github.com/seifadel74/getyourtrip/internal/repository"
	"github.com/seifadel74/getyourtrip/internal/service"
)

// сессии старше этого срока удаляются при периодической очистке
const sessionRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	log.Printf("API: %s, порт: %s, сессии: %s", cfg.APIBaseURL, cfg.WebPort, cfg.SessionDriver)

	db, err := repository.Connect(cfg.SessionDriver, cfg.SessionDSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе сессий: %v", err)
	}
	defer db.Close()
	sessions := repository.NewSessionRepository(db)
	if err := sessions.Init(context.Background()); err != nil {
		log.Fatalf("Ошибка инициализации базы сессий: %v", err)
	}

	public := apiclient.New(cfg.APIBaseURL, nil)
	catalog := service.NewCatalogService(public.Tours, repository.NewCacheRepository(cfg.MemcachedHost, cfg.CacheTTL))

	h, err := handler.NewHandler(handler.Options{
		APIBaseURL:   cfg.APIBaseURL,
		Sessions:     sessions,
		Catalog:      catalog,
		PaymentDelay: cfg.PaymentDelay,
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		log.Fatalf("Ошибка инициализации обработчиков: %v", err)
	}

	protect := csrf.Protect(csrfKey(cfg.CSRFKey),
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
	)
	server := &http.Server{
		Addr:              ":" + cfg.WebPort,
		Handler:           protect(h.Router()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go purgeSessions(ctx, sessions)

	go func() {
		log.Printf("Веб-сервер запущен на порту %s", cfg.WebPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Ошибка запуска сервера: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Остановка веб-сервера...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Ошибка остановки сервера: %v", err)
	}
	log.Println("Веб-сервер остановлен")
}

// csrfKey возвращает ключ из конфигурации или случайный ключ на время работы процесса.
func csrfKey(configured string) []byte {
	if len(configured) >= 32 {
		return []byte(configured)[:32]
	}
	if configured != "" {
		log.Printf("CSRF_KEY короче 32 байт, используется случайный ключ")
	} else {
		log.Printf("CSRF_KEY не задан, используется случайный ключ: формы перестанут проходить проверку после перезапуска")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("Не удалось сгенерировать CSRF-ключ: %v", err)
	}
	return key
}

// purgeSessions раз в час удаляет давно не обновлявшиеся сессии.
func purgeSessions(ctx context.Context, sessions *repository.SessionRepository) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeOlderThan(ctx, time.Now().Add(-sessionRetention))
			if err != nil {
				log.Printf("Ошибка очистки сессий: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Удалено устаревших значений сессий: %d", n)
			}
		}
	}
}

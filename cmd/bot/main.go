package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/bot"
	"github.com/seifadel74/getyourtrip/internal/config"
	"github.com/seifadel74/getyourtrip/internal/repository"
	"github.com/seifadel74/getyourtrip/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("Не указан токен бота (BOT_TOKEN)")
	}

	db, err := repository.Connect(cfg.SessionDriver, cfg.SessionDSN)
	if err != nil {
		log.Fatalf("Не удалось подключиться к базе сессий: %v", err)
	}
	defer db.Close()
	sessions := repository.NewSessionRepository(db)
	if err := sessions.Init(context.Background()); err != nil {
		log.Fatalf("Ошибка инициализации базы сессий: %v", err)
	}

	api := apiclient.New(cfg.APIBaseURL, nil)
	catalog := service.NewCatalogService(api.Tours, repository.NewCacheRepository(cfg.MemcachedHost, cfg.CacheTTL))

	tg, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatal("Ошибка инициализации бота:", err)
	}
	tg.Debug = cfg.BotDebug
	log.Printf("Запущен бот %s", tg.Self.UserName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := tg.GetUpdatesChan(u)

	b := bot.New(tg, bot.Options{
		API:          api,
		Catalog:      catalog,
		Sessions:     sessions,
		PaymentDelay: cfg.PaymentDelay,
	})
	go func() {
		<-ctx.Done()
		tg.StopReceivingUpdates()
	}()
	b.Run(ctx, updates)
	log.Println("Бот остановлен")
}

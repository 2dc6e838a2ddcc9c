package bot

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/seifadel74/getyourtrip/internal/apiclient"
	"github.com/seifadel74/getyourtrip/internal/service"
	"github.com/seifadel74/getyourtrip/internal/session"
)

// Sender - часть tgbotapi.BotAPI, которой пользуется бот.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// SessionStores выдает хранилище для пространства имен чата.
type SessionStores interface {
	Scope(namespace string) session.Store
}

// Options - зависимости Bot.
type Options struct {
	API          *apiclient.Client
	Catalog      *service.CatalogService
	Sessions     SessionStores
	PaymentDelay time.Duration
}

// Bot ведет диалоги с пользователями Telegram: каталог, бронирование, обратная связь.
type Bot struct {
	sender  Sender
	opts    Options
	contact *service.ContactService

	mu     sync.Mutex
	chats  map[int64]*chat
	queues map[int64]*chatQueue
}

// chat - состояние одного чата. mu сериализует обработку апдейтов этого чата.
type chat struct {
	mu      sync.Mutex
	conv    *conversation
	touched time.Time
}

// chatQueue - апдейты чата, ожидающие своего обработчика. Защищена Bot.mu.
type chatQueue struct {
	pending []tgbotapi.Update
}

// idleConversation - через сколько брошенный диалог забывается.
const idleConversation = 24 * time.Hour

const sweepInterval = time.Hour

// New создает бота.
func New(sender Sender, opts Options) *Bot {
	return &Bot{
		sender:  sender,
		opts:    opts,
		contact: service.NewContactService(opts.API.Contact),
		chats:   make(map[int64]*chat),
		queues:  make(map[int64]*chatQueue),
	}
}

// Run обрабатывает апдейты до отмены ctx или закрытия канала.
// Чаты обрабатываются параллельно, апдейты одного чата - строго в порядке поступления.
// Перед возвратом дожидается обработки уже принятых апдейтов.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			b.sweep(now.Add(-idleConversation))
		case update, ok := <-updates:
			if !ok {
				return
			}
			id, ok := updateChatID(update)
			if !ok {
				continue
			}
			b.enqueue(ctx, &wg, id, update)
		}
	}
}

// enqueue ставит апдейт в очередь чата и запускает обработчик, если он еще не работает.
func (b *Bot) enqueue(ctx context.Context, wg *sync.WaitGroup, id int64, update tgbotapi.Update) {
	b.mu.Lock()
	if q, ok := b.queues[id]; ok {
		q.pending = append(q.pending, update)
		b.mu.Unlock()
		return
	}
	q := &chatQueue{pending: []tgbotapi.Update{update}}
	b.queues[id] = q
	b.mu.Unlock()

	wg.Add(1)
	go func() {
		defer wg.Done()
		b.drain(ctx, id, q)
	}()
}

// drain обрабатывает очередь чата, пока она не опустеет, и снимает ее с учета.
func (b *Bot) drain(ctx context.Context, id int64, q *chatQueue) {
	for {
		b.mu.Lock()
		if len(q.pending) == 0 || ctx.Err() != nil {
			delete(b.queues, id)
			b.mu.Unlock()
			return
		}
		update := q.pending[0]
		q.pending = q.pending[1:]
		b.mu.Unlock()

		b.HandleUpdate(ctx, update)
	}
}

// updateChatID возвращает чат, к которому относится апдейт.
func updateChatID(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message != nil && cq.Message.Chat != nil {
			return cq.Message.Chat.ID, true
		}
		if cq.From != nil {
			return cq.From.ID, true
		}
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	}
	return 0, false
}

func (b *Bot) chat(id int64) *chat {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.chats[id]
	if !ok {
		c = &chat{touched: time.Now()}
		b.chats[id] = c
	}
	return c
}

// release забывает чат без активного диалога. Вызывается под c.mu.
func (b *Bot) release(id int64, c *chat) {
	c.touched = time.Now()
	if c.conv != nil {
		return
	}
	b.mu.Lock()
	if b.chats[id] == c {
		delete(b.chats, id)
	}
	b.mu.Unlock()
}

// sweep забывает диалоги, брошенные до before. Занятые чаты пропускаются.
func (b *Bot) sweep(before time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.chats {
		if !c.mu.TryLock() {
			continue
		}
		if c.touched.Before(before) {
			delete(b.chats, id)
		}
		c.mu.Unlock()
	}
}

// HandleUpdate обрабатывает одно сообщение или нажатие inline-кнопки.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	chatID, ok := updateChatID(update)
	if !ok {
		return
	}
	if cq := update.CallbackQuery; cq != nil {
		if _, err := b.sender.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			log.Printf("bot: не удалось ответить на callback: %v", err)
		}
	}
	c := b.chat(chatID)
	c.mu.Lock()
	defer c.mu.Unlock()
	defer b.release(chatID, c)

	if cq := update.CallbackQuery; cq != nil {
		b.handleCallback(ctx, chatID, c, cq.Data)
		return
	}
	msg := update.Message
	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, c, msg.Command(), msg.CommandArguments())
		return
	}
	b.handleText(ctx, chatID, c, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, c *chat, command, args string) {
	switch command {
	case "start", "help":
		c.conv = nil
		b.send(chatID, helpText)
	case "tours":
		b.listTours(ctx, chatID, ParseTourArgs(args))
	case "featured":
		b.featured(ctx, chatID)
	case "contact":
		c.conv = newContactConversation()
		b.ask(chatID, c.conv)
	case "cancel":
		if c.conv == nil {
			b.send(chatID, "Nothing to cancel.")
			return
		}
		c.conv = nil
		b.send(chatID, "Cancelled. Send /tours to browse again.")
	default:
		b.send(chatID, "Unknown command. Send /help for the list of commands.")
	}
}

func (b *Bot) handleCallback(ctx context.Context, chatID int64, c *chat, data string) {
	action, id := ParseCallback(data)
	switch action {
	case actionTour:
		b.showTour(ctx, chatID, id)
	case actionBook:
		b.startBooking(ctx, chatID, c, id)
	case actionConfirm:
		b.confirmDetails(chatID, c)
	case actionBack:
		b.backToDetails(chatID, c)
	case actionPay:
		b.pay(ctx, chatID, c)
	case actionCancel:
		c.conv = nil
		b.send(chatID, "Cancelled. Send /tours to browse again.")
	default:
		log.Printf("bot: неизвестный callback %q", data)
	}
}

func (b *Bot) handleText(ctx context.Context, chatID int64, c *chat, text string) {
	if c.conv == nil || len(c.conv.pending) == 0 {
		// свободный текст без диалога - поиск по направлению
		if strings.TrimSpace(text) == "" {
			return
		}
		b.listTours(ctx, chatID, service.TourFilter{Destination: strings.TrimSpace(text)})
		return
	}
	if err := c.conv.answer(text); err != nil {
		b.send(chatID, err.Error())
		b.ask(chatID, c.conv)
		return
	}
	if len(c.conv.pending) > 0 {
		b.ask(chatID, c.conv)
		return
	}
	switch c.conv.kind {
	case kindBooking:
		b.showSummary(chatID, c.conv)
	case kindContact:
		b.sendContact(ctx, chatID, c)
	}
}

func (b *Bot) listTours(ctx context.Context, chatID int64, filter service.TourFilter) {
	tours, err := b.opts.Catalog.Search(ctx, filter)
	if err != nil {
		b.send(chatID, apiclient.Message(err))
		return
	}
	if len(tours) == 0 {
		b.send(chatID, "No tours match your filters. Try /tours without arguments.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, tourListText(len(tours)))
	msg.ReplyMarkup = tourKeyboard(tours)
	b.deliver(msg)
}

func (b *Bot) featured(ctx context.Context, chatID int64) {
	tours, err := b.opts.Catalog.Featured(ctx)
	if err != nil {
		b.send(chatID, apiclient.Message(err))
		return
	}
	if len(tours) == 0 {
		b.send(chatID, "No featured tours right now. Send /tours to see everything.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Featured tours:")
	msg.ReplyMarkup = tourKeyboard(tours)
	b.deliver(msg)
}

func (b *Bot) showTour(ctx context.Context, chatID int64, id int) {
	tour, err := b.opts.Catalog.Tour(ctx, id)
	if err != nil {
		log.Printf("bot: тур %d: %v", id, err)
		b.send(chatID, apiclient.Message(err))
		return
	}
	if img := tour.PrimaryImage(); img != "" {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(img))
		photo.Caption = tour.Title
		b.deliver(photo)
	}
	msg := tgbotapi.NewMessage(chatID, tourText(*tour))
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Book now", callbackData(actionBook, tour.ID)),
	))
	b.deliver(msg)
}

func (b *Bot) sendContact(ctx context.Context, chatID int64, c *chat) {
	text, err := b.contact.Send(ctx, c.conv.contact)
	if err != nil {
		if refill(c.conv, err) {
			b.send(chatID, err.Error())
			b.ask(chatID, c.conv)
			return
		}
		c.conv = nil
		b.send(chatID, apiclient.Message(err))
		return
	}
	c.conv = nil
	b.send(chatID, text)
}

func (b *Bot) ask(chatID int64, conv *conversation) {
	b.send(chatID, conv.prompt())
}

func (b *Bot) send(chatID int64, text string) {
	b.deliver(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) deliver(c tgbotapi.Chattable) {
	if _, err := b.sender.Send(c); err != nil {
		log.Printf("bot: ошибка отправки сообщения: %v", err)
	}
}

func (b *Bot) store(chatID int64) session.Store {
	return b.opts.Sessions.Scope("tg:" + strconv.FormatInt(chatID, 10))
}

const helpText = `Welcome to Get Your Trip!

/tours - browse all tours
/tours cairo duration=4-7 max=800 type=cultural - filter tours
/featured - our featured tours
/contact - send us a message
/cancel - cancel the current booking or message`

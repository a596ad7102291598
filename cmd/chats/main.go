package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"signal_bot/internal/modules/config"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Диагностика: показать чаты, которые видит бот, и последние сообщения
// в каждом. Ничего не торгует и не подтверждает апдейты (offset не двигаем),
// чтобы не съесть сообщения у основного процесса.

type chatDump struct {
	ChatID   int64    `yaml:"chat_id"`
	Title    string   `yaml:"title,omitempty"`
	Type     string   `yaml:"type"`
	Username string   `yaml:"username,omitempty"`
	Messages []string `yaml:"messages,omitempty"`
}

func main() {
	limit := flag.Int("n", 10, "сколько последних сообщений показать на чат")
	flag.Parse()

	if err := run(*limit); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(limit int) error {
	// хватает одного токена: полный конфиг (креды брокера) тут не нужен
	token := os.Getenv("TELEGRAM_TOKEN")
	if token == "" {
		cfg, err := config.NewConfig()
		if err != nil {
			return errors.Wrap(err, "load config")
		}
		token = cfg.Telegram.Token
	}

	bot, err := tgbot.NewBotAPI(token)
	if err != nil {
		return errors.Wrap(err, "telegram api")
	}

	u := tgbot.NewUpdate(0)
	u.Limit = 100
	u.AllowedUpdates = []string{"message", "channel_post"}
	updates, err := bot.GetUpdates(u)
	if err != nil {
		return errors.Wrap(err, "get updates")
	}

	chats := make(map[int64]*chatDump)
	for _, upd := range updates {
		msg := upd.Message
		if msg == nil {
			msg = upd.ChannelPost
		}
		if msg == nil || msg.Chat == nil {
			continue
		}
		c, ok := chats[msg.Chat.ID]
		if !ok {
			c = &chatDump{
				ChatID:   msg.Chat.ID,
				Title:    msg.Chat.Title,
				Type:     msg.Chat.Type,
				Username: msg.Chat.UserName,
			}
			chats[msg.Chat.ID] = c
		}
		if msg.Text != "" {
			c.Messages = append(c.Messages, msg.Text)
		}
	}

	dump := make([]chatDump, 0, len(chats))
	for _, c := range chats {
		if len(c.Messages) > limit {
			c.Messages = c.Messages[len(c.Messages)-limit:]
		}
		dump = append(dump, *c)
	}
	sort.Slice(dump, func(i, j int) bool { return dump[i].ChatID < dump[j].ChatID })

	out, err := yaml.Marshal(dump)
	if err != nil {
		return errors.Wrap(err, "marshal yaml")
	}
	fmt.Print(string(out))

	if len(dump) == 0 {
		fmt.Println("# чатов не видно: бот получает апдейты только после первого сообщения")
	}
	return nil
}

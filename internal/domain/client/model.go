package client

import (
	"fmt"
	"strings"
	"time"
)

// Client is a Telegram user taking part in lotteries.
type Client struct {
	ID               string
	TelegramID       int64
	FirstName        string
	LastName         string
	TelegramUserName string
	IsBot            bool
	IsPremium        bool
	Image            string
	AuthenticatedAt  time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c Client) Name() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

func (c Client) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("client id is required")
	}
	if c.TelegramID <= 0 {
		return fmt.Errorf("client telegram id must be > 0")
	}

	return nil
}

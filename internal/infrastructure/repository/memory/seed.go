package memory

import (
	"time"

	"github.com/riskibarqy/tonttery/internal/domain/client"
)

// SeedClients returns the clients available when the service runs without a
// database.
func SeedClients() []client.Client {
	joined := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	return []client.Client{
		{
			ID:               "7b0f3a52-5d8f-4a55-9d0b-0c3f1f3b1a01",
			TelegramID:       100000001,
			FirstName:        "Alice",
			LastName:         "Ton",
			TelegramUserName: "alice_ton",
			IsPremium:        true,
			AuthenticatedAt:  joined,
			CreatedAt:        joined,
			UpdatedAt:        joined,
		},
		{
			ID:               "7b0f3a52-5d8f-4a55-9d0b-0c3f1f3b1a02",
			TelegramID:       100000002,
			FirstName:        "Bob",
			TelegramUserName: "bob",
			AuthenticatedAt:  joined,
			CreatedAt:        joined,
			UpdatedAt:        joined,
		},
		{
			ID:               "7b0f3a52-5d8f-4a55-9d0b-0c3f1f3b1a03",
			TelegramID:       100000003,
			FirstName:        "Carol",
			LastName:         "Wallet",
			TelegramUserName: "carol_w",
			AuthenticatedAt:  joined,
			CreatedAt:        joined,
			UpdatedAt:        joined,
		},
	}
}

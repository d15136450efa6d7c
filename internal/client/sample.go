package client

import (
	"context"
	"time"
)

// SampleSource serves the built-in demo record set.
type SampleSource struct{}

// ListClients returns a fresh copy of the sample clients.
func (SampleSource) ListClients(ctx context.Context) ([]Client, error) {
	return SampleClients(), nil
}

func at(year int, month time.Month, day, hour, min int) time.Time {
	return time.Date(year, month, day, hour, min, 0, 0, time.Local)
}

// SampleClients returns the eight demo clients used when no database source is configured.
func SampleClients() []Client {
	return []Client{
		{
			ID:        "20",
			Name:      "John Doe",
			Category:  Individual,
			Email:     "johndoe@email.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 15, 10, 30),
			UpdatedAt: at(2024, time.January, 20, 14, 45),
			UpdatedBy: "hello world",
		},
		{
			ID:        "21",
			Name:      "Test Test",
			Category:  Individual,
			Email:     "test@test.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 10, 9, 15),
			UpdatedAt: at(2024, time.January, 18, 16, 20),
			UpdatedBy: "hello world",
		},
		{
			ID:        "22",
			Name:      "Alice Johnson",
			Category:  Company,
			Email:     "alice@company.com",
			Status:    Inactive,
			CreatedAt: at(2024, time.January, 5, 8, 0),
			UpdatedAt: at(2024, time.January, 25, 11, 30),
			UpdatedBy: "admin user",
		},
		{
			ID:        "23",
			Name:      "Bob Smith",
			Category:  Individual,
			Email:     "bob@email.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 20, 13, 45),
			UpdatedAt: at(2024, time.January, 22, 9, 10),
			UpdatedBy: "system",
		},
		{
			ID:        "24",
			Name:      "Corporate Inc",
			Category:  Company,
			Email:     "contact@corporate.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 12, 11, 20),
			UpdatedAt: at(2024, time.January, 24, 15, 55),
			UpdatedBy: "manager",
		},
		{
			ID:        "25",
			Name:      "Sarah Wilson",
			Category:  Individual,
			Email:     "sarah@email.com",
			Status:    Inactive,
			CreatedAt: at(2024, time.January, 8, 14, 30),
			UpdatedAt: at(2024, time.January, 15, 10, 25),
			UpdatedBy: "admin",
		},
		{
			ID:        "26",
			Name:      "Tech Solutions Ltd",
			Category:  Company,
			Email:     "info@techsolutions.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 25, 16, 0),
			UpdatedAt: at(2024, time.January, 26, 12, 40),
			UpdatedBy: "system",
		},
		{
			ID:        "27",
			Name:      "Mike Brown",
			Category:  Individual,
			Email:     "mike@email.com",
			Status:    Active,
			CreatedAt: at(2024, time.January, 3, 7, 45),
			UpdatedAt: at(2024, time.January, 28, 18, 15),
			UpdatedBy: "hello world",
		},
	}
}

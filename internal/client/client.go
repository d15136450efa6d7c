package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidCategory is returned when a category value is not Individual or Company.
	ErrInvalidCategory = errors.New("invalid client category")
	// ErrInvalidStatus is returned when a status value is not active or inactive.
	ErrInvalidStatus = errors.New("invalid client status")
)

// Category is the coarse client type shown as tabs.
type Category string

const (
	Individual Category = "Individual"
	Company    Category = "Company"
)

// Categories lists every category in display order.
var Categories = []Category{Individual, Company}

// ParseCategory parses a category case-insensitively.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "individual":
		return Individual, nil
	case "company":
		return Company, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

// Status is the client lifecycle state.
type Status string

const (
	Active   Status = "active"
	Inactive Status = "inactive"
)

// Statuses lists every status in display order.
var Statuses = []Status{Active, Inactive}

// ParseStatus parses a status case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return Active, nil
	case "inactive":
		return Inactive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Client represents a client record
type Client struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"type"`
	Email     string    `json:"email"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

// Validate checks the closed enumerations and the identity field.
func (c Client) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return errors.New("client id is required")
	}
	if _, err := ParseCategory(string(c.Category)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(c.Status)); err != nil {
		return err
	}
	return nil
}

// Normalize returns a copy with canonical enum spelling.
func (c Client) Normalize() (Client, error) {
	cat, err := ParseCategory(string(c.Category))
	if err != nil {
		return c, err
	}
	st, err := ParseStatus(string(c.Status))
	if err != nil {
		return c, err
	}
	c.Category = cat
	c.Status = st
	c.ID = strings.TrimSpace(c.ID)
	if c.ID == "" {
		return c, errors.New("client id is required")
	}
	return c, nil
}

// Source provides the record set shown by the console.
type Source interface {
	ListClients(ctx context.Context) ([]Client, error)
}

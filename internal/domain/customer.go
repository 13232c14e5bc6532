package domain

import (
	"strings"
	"time"
)

type Customer struct {
	ID         string
	FirstName  string `validate:"required"`
	LastName   string
	Email      string `validate:"omitempty,email"`
	Phone      string
	Address    string
	City       string
	PostalCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Job is created from an accepted estimate.
type Job struct {
	ID         string
	EstimateID string
	Title      string
	Status     JobStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

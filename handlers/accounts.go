// Package handlers provides HTTP handlers for different services across the application.
package handlers

import (
	"net/http"

	"github.com/hydraulics-labs/account-registry-api/accounts"
)

// Accounts is a HTTP server for account management.
// It provides create, update and stats APIs.
// It uses an account service to interface with data.
type Accounts struct {
	service accounts.Service
}

// NewAccounts initiates a new accounts server.
func NewAccounts(service accounts.Service) *Accounts {
	return &Accounts{service}
}

func (s *Accounts) Create() http.Handler {
	return http.HandlerFunc(s.CreateFunc)
}

func (s *Accounts) Update() http.Handler {
	return http.HandlerFunc(s.UpdateFunc)
}

func (s *Accounts) Stats() http.Handler {
	return http.HandlerFunc(s.StatsFunc)
}

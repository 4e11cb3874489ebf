// Package main provides the entry point for the PlayOps-Admin back office.
// It initializes and runs a web server using the Fiber framework that lets
// operator staff manage players, review KYC submissions, handle support
// tickets, run bonus campaigns, and administer roles through a REST API.
// The application uses gorm for data persistence and a cookie session
// backed by a pluggable storage layer for authentication state.
package main

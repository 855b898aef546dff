// Package clock abstracts the system clock behind a tiny interface.
//
// Time-sensitive code (TOTP verification, token expiry) takes a Clocker so
// tests can pin time instead of sleeping.
package clock

// Package models contains GORM persistence models that map domain entities
// to database tables. Each model provides ToDomain/FromDomain conversions so
// the domain layer stays free of persistence concerns.
package models

// Package models contains GORM persistence models for the contract engine.
// Domain entities stay free of ORM tags; repositories map between the two.
//
// Tables:
//   - blocks, lots, customers, sales: sale snapshot owned by the sales module (read only here)
//   - contracts: one generated contract per sale
package models

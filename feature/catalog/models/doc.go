// Package models defines the GORM models of the local catalog: customers,
// product types and product orders.
package models

// Package database opens the local relational store.
//
// It wraps GORM and supports MySQL (production) and SQLite (single-node
// deployments and tests). The inspector helpers read table columns so that
// callers can verify that the schema they reconcile into is complete.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//
//	missing, err := database.MissingColumns(db, "customers", []string{"name", "cnpj"})
package database

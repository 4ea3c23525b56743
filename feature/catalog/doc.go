// Package catalog is the local store of ERP data: customers, product types and
// product orders.
//
// Store implements reconcile.Store over GORM, so the sync engine can snapshot,
// insert and update catalog rows. Order writes find-or-create the referenced
// customer and product type, filling their empty CNPJ, description or family
// when the order carries them. Service and Handler expose read routes, manual
// edits of product types and orders, and the assembly status of orders
// (mount, test, ship, activate).
//
// # Endpoints
//
//	GET    /customers
//	GET    /customers/:id
//	GET    /product-types
//	POST   /product-types
//	GET    /product-types/:id
//	PUT    /product-types/:id
//	DELETE /product-types/:id
//	GET    /orders?customer_id=&product_type_id=&created_from=&created_to=
//	POST   /orders
//	GET    /orders/:id
//	DELETE /orders/:id
//	PUT    /orders/:id/:status
package catalog

// Package omie is the ERP side of synchronization.
//
// Client talks to the Omie JSON API: every call is a POST of
// {call, app_key, app_secret, param} to a resource path, listings are paged
// with pagina/registros_por_pagina and report total_de_paginas. A fault body
// is returned as FaultError, except the "no records" fault which ends the
// listing. Requests are throttled with a token bucket.
//
// Source adapts the client to reconcile.Source. Orders are flattened to one
// record each, with customer and product details resolved from the customer
// and product listings.
package omie

// Package utils provides conversion helpers for loosely typed ERP payloads,
// where the same field may arrive as a number or a string.
package utils

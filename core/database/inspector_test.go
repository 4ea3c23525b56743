package database

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns_SQLite(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE customers (id INTEGER PRIMARY KEY, name TEXT, cnpj TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "customers")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}
	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["cnpj"])

	// PRAGMA table_info returns an empty result for a missing table
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestMissingColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE product_types (id INTEGER PRIMARY KEY, name TEXT)").Error)

	missing, err := MissingColumns(db, "product_types", []string{"id", "name", "description", "family"})
	require.NoError(t, err)
	assert.Equal(t, []string{"description", "family"}, missing)

	missing, err = MissingColumns(db, "absent", []string{"id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, missing)
}

func TestGetTableColumns_MySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT column_name").
		WithArgs("customers").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type"}).
			AddRow("ID", "BIGINT UNSIGNED").
			AddRow("name", "varchar(191)"))

	columns, err := GetTableColumns(db, "customers")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, ColumnInfo{Field: "id", Type: "bigint unsigned"}, columns[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

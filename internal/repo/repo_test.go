package repo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"salesdesk/internal/domain"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var profileCols = []string{"id", "full_name", "email", "role", "active", "phone", "created_at"}

func TestProfileRepo_FindByID_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("u-1", "A B", "a@x.com", "sales", true, "555", created))

	p, err := repo.FindByID(context.Background(), "u-1")

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "A B", p.FullName)
	assert.Equal(t, "sales", p.Role)
	assert.True(t, p.Active)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "555", *p.Phone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_FindByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(profileCols))

	p, err := repo.FindByID(context.Background(), "missing")

	require.NoError(t, err)
	assert.Nil(t, p)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_FindByID_DBError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles"`).WillReturnError(errors.New("conn reset"))

	p, err := repo.FindByID(context.Background(), "u-1")

	assert.Nil(t, p)
	assert.EqualError(t, err, "conn reset")
}

func TestProfileRepo_Insert(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec(`INSERT INTO "profiles"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Insert(context.Background(), &domain.Profile{
		ID: "u-1", FullName: "A B", Email: "a@x.com", Role: "sales", Active: true,
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Update_WritesFalse(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec(`UPDATE "profiles" SET "active"=\$1 WHERE id = \$2`).
		WithArgs(false, "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	off := false
	n, err := repo.Update(context.Background(), "u-1", domain.ProfilePatch{Active: &off})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Update_EmptyPatchIsNoop(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	n, err := repo.Update(context.Background(), "u-1", domain.ProfilePatch{})

	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepo_Delete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectExec(`DELETE FROM "profiles" WHERE id = \$1`).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Delete(context.Background(), "u-1")

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleResolver_ResolveRole(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewRoleResolver(db)

	mock.ExpectQuery(`SELECT .*role.*active.* FROM "profiles" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "active"}).AddRow("admin", true))

	info, found, err := r.ResolveRole(context.Background(), "u-1")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.RoleInfo{Role: "admin", Active: true}, info)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleResolver_ResolveRole_Missing(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewRoleResolver(db)

	mock.ExpectQuery(`FROM "profiles"`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "active"}))

	_, found, err := r.ResolveRole(context.Background(), "ghost")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestProductRepo_SetActive(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProductRepo(db)

	mock.ExpectExec(`UPDATE "products" SET "active"=\$1 WHERE id = \$2`).
		WithArgs(true, "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.SetActive(context.Background(), "p-1", true)

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepo_List_ActiveOnly(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE active = \$1 ORDER BY name ASC`).
		WithArgs(true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "active", "features"}).
			AddRow("p-1", "Chair", 10.5, true, `[{"label":"Color","value":"Black"}]`))

	ps, err := repo.List(context.Background(), domain.ProductFilter{ActiveOnly: true})

	require.NoError(t, err)
	require.Len(t, ps, 1)
	assert.Equal(t, "Chair", ps[0].Name)
	assert.Equal(t, []domain.ProductSpec{{Label: "Color", Value: "Black"}}, ps[0].Specs)
	require.NoError(t, mock.ExpectationsWereMet())
}

var badUUID = &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "nope"`}

func TestProfileRepo_MalformedIDMatchesNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProfileRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "profiles" WHERE id = \$1`).WillReturnError(badUUID)
	mock.ExpectExec(`UPDATE "profiles"`).WillReturnError(badUUID)
	mock.ExpectExec(`DELETE FROM "profiles"`).WillReturnError(badUUID)

	p, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)

	active := false
	n, err := repo.Update(context.Background(), "nope", domain.ProfilePatch{Active: &active})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoleResolver_MalformedIDIsMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	r := NewRoleResolver(db)

	mock.ExpectQuery(`FROM "profiles"`).WillReturnError(badUUID)

	_, found, err := r.ResolveRole(context.Background(), "nope")

	require.NoError(t, err)
	assert.False(t, found)
}

func TestProductRepo_MalformedIDMatchesNothing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewProductRepo(db)

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).WillReturnError(badUUID)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN`).WillReturnError(badUUID)
	mock.ExpectExec(`DELETE FROM "products"`).WillReturnError(badUUID)

	p, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)

	ps, err := repo.FindByIDs(context.Background(), []string{"nope"})
	require.NoError(t, err)
	assert.Empty(t, ps)

	n, err := repo.Delete(context.Background(), "nope")
	require.NoError(t, err)
	assert.Zero(t, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

// 两种方言下都必须能建表：id 列统一为 varchar(36)，不出现方言专有类型
func TestModels_ColumnTypesPortable(t *testing.T) {
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	pg, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	my, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	for _, db := range []*gorm.DB{pg, my} {
		for _, m := range Models() {
			stmt := &gorm.Statement{DB: db}
			require.NoError(t, stmt.Parse(m))
			for _, f := range stmt.Schema.Fields {
				if f.DBName == "" {
					continue
				}
				typ := strings.ToLower(db.Migrator().FullDataTypeOf(f).SQL)
				assert.NotContains(t, typ, "uuid", "%s %s.%s", db.Dialector.Name(), stmt.Schema.Table, f.DBName)
				if f.DBName == "id" || f.DBName == "created_by" {
					assert.True(t, strings.HasPrefix(typ, "varchar(36)"), "%s %s.%s: %s", db.Dialector.Name(), stmt.Schema.Table, f.DBName, typ)
				}
			}
		}
	}
}

package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/techbridge-api/internal/models"
)

func TestConnectSQLiteMigratesAndTranslatesDuplicates(t *testing.T) {
	db, err := Connect("file:database_migrate?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	first := models.Enrollment{StudentID: 1, CourseID: 2, Status: models.EnrollmentStatusEnrolled}
	require.NoError(t, db.Create(&first).Error)

	duplicate := models.Enrollment{StudentID: 1, CourseID: 2, Status: models.EnrollmentStatusEnrolled}
	err = db.Create(&duplicate).Error
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestConnectRejectsEmptyDSN(t *testing.T) {
	_, err := ConnectSQLite("")
	require.Error(t, err)

	_, err = ConnectPostgres("")
	require.Error(t, err)
}

func TestConnectNATSDisabledWithoutURL(t *testing.T) {
	conn, err := ConnectNATS("", "test")
	require.NoError(t, err)
	require.Nil(t, conn)
}

package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursehub-api/internal/models"
)

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("mysql", "root@/db")
	require.Error(t, err)

	_, err = Connect("postgres", "")
	require.Error(t, err)
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := Connect("sqlite", "file:migrate_test?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []any{&models.User{}, &models.Course{}, &models.StudyPlan{}, &models.Assignment{}, &models.Submission{}, &models.Notification{}} {
		require.True(t, db.Migrator().HasTable(table))
	}
	require.True(t, db.Migrator().HasTable("course_educators"))
	require.True(t, db.Migrator().HasTable("course_enrollments"))
	require.True(t, db.Migrator().HasIndex(&models.Submission{}, "idx_submission_assignment_student"))
}

func TestConnectRedisRequiresURL(t *testing.T) {
	_, err := ConnectRedis("")
	require.Error(t, err)
}

package postgres

import (
	"database/sql"
	"fmt"
	"os"

	db2 "github.com/alnifu/orgsync-web-sub000/db"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/postgresql"

	_ "github.com/lib/pq"
)

// SupabaseDB talks to the hosted Postgres backend through one upper/db
// session shared by the per-area stores.
type SupabaseDB struct {
	*PostDB
	*InteractionDB
	*OrgDB
	*UserDB
	sess  db.Session
	sqlDB *sql.DB
}

func GetDatabase() (db2.Database, error) {
	sqlDB, err := sql.Open("postgres",
		fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=require",
			os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
			os.Getenv("DB_PASS"), os.Getenv("DB_NAME")))
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := postgresql.New(sqlDB)
	if err != nil {
		return nil, err
	}

	return &SupabaseDB{
		PostDB:        getPostDB(sess),
		InteractionDB: getInteractionDB(sess),
		OrgDB:         getOrgDB(sess),
		UserDB:        getUserDB(sess),
		sess:          sess,
		sqlDB:         sqlDB,
	}, nil
}

func (sdb *SupabaseDB) GetSQLDB() *sql.DB {
	return sdb.sqlDB
}

func (sdb *SupabaseDB) Close() error {
	return sdb.sess.Close()
}

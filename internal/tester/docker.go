package tester

import (
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"
)

// SetupDocker starts the postgres, redis and minio containers used by
// integration runs against the full stack.
func SetupDocker() (func(), error) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		logrus.Fatalf("Could not construct pool: %s", err)
	}

	// uses pool to try to connect to Docker
	err = pool.Client.Ping()
	if err != nil {
		logrus.Fatalf("Could not connect to Docker: %s", err)
	}

	// run database
	db, err := pool.Run("postgres", "16", []string{
		"POSTGRES_USER=archive",
		"POSTGRES_PASSWORD=archive",
		"POSTGRES_DB=archive",
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	// run redis
	redis, err := pool.Run("redis", "7", nil)
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	// run minio
	minio, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "minio/minio",
		Tag:        "latest",
		Cmd:        []string{"server", "/data"},
		Env: []string{
			"MINIO_ROOT_USER=archive",
			"MINIO_ROOT_PASSWORD=archive-secret",
		},
		ExposedPorts: []string{
			"9000",
		},
	})
	if err != nil {
		logrus.Fatalf("Could not start resource: %s", err)
	}

	purge := func() {
		if err := pool.Purge(db); err != nil {
			logrus.Fatalf("Could not purge resource: %s", err)
		}

		if err := pool.Purge(redis); err != nil {
			logrus.Fatalf("Could not purge resource: %s", err)
		}

		if err := pool.Purge(minio); err != nil {
			logrus.Fatalf("Could not purge resource: %s", err)
		}
	}

	return purge, nil
}

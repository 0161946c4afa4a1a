package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/xelth-com/eckodoo/internal/config"
)

func TestIsEmbedded(t *testing.T) {
	assert.True(t, isEmbedded(config.DatabaseConfig{Host: "localhost"}))
	assert.False(t, isEmbedded(config.DatabaseConfig{Host: "localhost", Password: "pw"}))
	assert.False(t, isEmbedded(config.DatabaseConfig{Host: "db.internal"}))
}

func TestBuildDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     "5432",
		Username: "odoo_mirror",
		Database: "mirror",
	}

	assert.Equal(t,
		"host=db.internal port=5432 user=odoo_mirror password=pw dbname=mirror sslmode=disable",
		buildDSN(cfg, "pw"),
	)
}

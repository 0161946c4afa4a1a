package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xelth-com/eckodoo/internal/config"
	"github.com/xelth-com/eckodoo/internal/database"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/models"
	"gorm.io/gorm"
)

type modelStats struct {
	Model         string
	Records       int64
	LastWriteDate string
	LastSyncedAt  string
}

// latestPartners returns the most recently changed mirrored partners.
func latestPartners(db *gorm.DB, limit int) ([]models.OdooRecord, error) {
	var partners []models.OdooRecord
	err := db.Where("model = ?", models.PartnerModel).
		Order("write_date DESC").
		Limit(limit).
		Find(&partners).Error
	return partners, err
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.Database, logger.Nop())
	if err != nil {
		fmt.Printf("❌ Failed to connect: %v\n", err)
		fmt.Println("\n💡 Make sure PG_* points at the mirror database")
		os.Exit(1)
	}
	defer db.Close()

	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║          📊 eckodoo Mirror Report                         ║")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var stats []modelStats
	err = db.Model(&models.OdooRecord{}).
		Select("model, COUNT(*) AS records, MAX(write_date) AS last_write_date, MAX(synced_at)::text AS last_synced_at").
		Group("model").
		Order("model").
		Scan(&stats).Error
	if err != nil {
		fmt.Printf("❌ Query failed: %v\n", err)
		os.Exit(1)
	}

	if len(stats) == 0 {
		fmt.Println("  Mirror is empty. Set ODOO_SYNC_MODELS and start cmd/api.")
		return
	}

	fmt.Println("📈 MIRRORED MODELS")
	fmt.Println("──────────────────────────────────────────────────────────")
	for _, s := range stats {
		fmt.Printf("  %-24s %6d records  last change %s  synced %s\n", s.Model, s.Records, s.LastWriteDate, s.LastSyncedAt)
	}
	fmt.Println()

	partners, err := latestPartners(db.DB, 10)
	if err != nil {
		fmt.Printf("❌ Partner query failed: %v\n", err)
		os.Exit(1)
	}
	if len(partners) == 0 {
		return
	}

	fmt.Println("👥 LATEST PARTNERS")
	fmt.Println("──────────────────────────────────────────────────────────")
	for _, rec := range partners {
		var p models.ResPartner
		if err := json.Unmarshal(rec.Data, &p); err != nil {
			fmt.Printf("  [%d] <unreadable: %v>\n", rec.OdooID, err)
			continue
		}
		fmt.Printf("  [%d] %s\n", rec.OdooID, p.Name)
		if p.Email != "" || p.City != "" {
			fmt.Printf("      └─ %s %s\n", p.Email, p.City)
		}
		if p.CountryID.Valid() {
			fmt.Printf("      └─ Country: %s\n", p.CountryID.Name)
		}
	}
}

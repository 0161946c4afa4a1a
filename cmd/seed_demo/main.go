package main

import (
	"fmt"
	"os"

	"github.com/xelth-com/eckodoo/internal/config"
	"github.com/xelth-com/eckodoo/internal/logger"
	"github.com/xelth-com/eckodoo/internal/models"
	"github.com/xelth-com/eckodoo/internal/services/odoo"
)

// demoPartners are created once; a partner whose name already exists is
// left alone.
var demoPartners = []models.ResPartner{
	{Name: "Azure Interior", CompanyType: "company", IsCompany: true, Street: "4557 De Silva St", City: "Fremont", Zip: "94538", Email: "azure.interior24@example.com"},
	{Name: "Deco Addict", CompanyType: "company", IsCompany: true, Street: "77 Santa Barbara Rd", City: "Pleasant Hill", Zip: "94523", Email: "deco.addict82@example.com"},
	{Name: "Gemini Furniture", CompanyType: "company", IsCompany: true, Street: "317 Fairchild Dr", City: "Fairfield", Zip: "94535", Email: "gemini.furniture39@example.com"},
	{Name: "Brandon Freeman", CompanyType: "person", City: "Fremont", Email: "brandon.freeman55@example.com", Phone: "(355)-687-3262"},
	{Name: "Colleen Diaz", CompanyType: "person", City: "Pleasant Hill", Email: "colleen.diaz83@example.com", Phone: "(255)-595-8393"},
}

func main() {
	fmt.Println("🌱 eckodoo Demo Partner Seeder")
	fmt.Println("==============================================================")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	client, err := odoo.NewClient(append(cfg.Odoo.ClientOptions(), odoo.WithLogger(logger.NewConsole("seed", cfg.LogLevel)))...)
	if err != nil {
		fmt.Printf("❌ Invalid Odoo settings: %v\n", err)
		os.Exit(1)
	}

	uid, err := client.Connect()
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Connected to %s as uid %d\n\n", client.Config().BaseURL(), uid)

	created, skipped := 0, 0
	for _, p := range demoPartners {
		ids, err := client.Search(models.PartnerModel, odoo.Filter{"name": string(p.Name)}, odoo.Limit(1))
		if err != nil {
			fmt.Printf("   ⚠️  Lookup of %s failed: %v\n", p.Name, err)
			continue
		}
		if len(ids) > 0 {
			fmt.Printf("   • %s already exists (id %d)\n", p.Name, ids[0])
			skipped++
			continue
		}

		id, err := client.Create(models.PartnerModel, p.Values())
		if err != nil {
			fmt.Printf("   ⚠️  Failed to create %s: %v\n", p.Name, err)
			continue
		}
		fmt.Printf("   ✓ Created partner: [%d] %s\n", id, p.Name)
		created++
	}

	fmt.Println()
	fmt.Printf("✅ Created %d partners, %d already present\n", created, skipped)
}

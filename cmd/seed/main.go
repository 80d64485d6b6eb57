package main

import (
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/jchoi/storefront-backend/config"
	"github.com/jchoi/storefront-backend/internal/app/model"
	"github.com/jchoi/storefront-backend/internal/app/repository"
	"github.com/jchoi/storefront-backend/internal/db"
	"github.com/jchoi/storefront-backend/pkg/logger"
	"github.com/jchoi/storefront-backend/pkg/util"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the catalog from an XLSX workbook and optionally creates an
// admin account. Expected sheet layout, first row is the header:
//
//	Title | Description | Price | Stock | Category | Images | Variants
//
// Images is a semicolon-separated list, Variants a raw JSON string.
func main() {
	var (
		file          = flag.String("file", "products.xlsx", "path to the catalog workbook")
		sheet         = flag.String("sheet", "", "sheet name (defaults to the first sheet)")
		adminEmail    = flag.String("admin-email", "", "create an admin account with this email")
		adminPassword = flag.String("admin-password", "", "password for the admin account")
	)
	flag.Parse()

	logger.Initialize(logger.Config{
		Level:       "info",
		Format:      "console",
		Output:      os.Stdout,
		EnableColor: true,
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}
	defer db.Close(database)

	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run database migrations", err)
	}

	if *adminEmail != "" {
		if *adminPassword == "" {
			logger.Fatal("Admin password is required when an admin email is given", nil)
		}
		createAdmin(database, *adminEmail, *adminPassword)
	}

	imported, skipped := importCatalog(database, *file, *sheet)
	logger.Info("Catalog import finished", map[string]interface{}{
		"imported": imported,
		"skipped":  skipped,
	})
}

func createAdmin(database *gorm.DB, email, password string) {
	userRepo := repository.NewUserRepository(database)

	if _, err := userRepo.FindByEmail(email); err == nil {
		logger.Info("Admin account already exists", map[string]interface{}{
			"email": email,
		})
		return
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		logger.Fatal("Failed to hash admin password", err)
	}

	admin := &model.User{
		Name:         "Administrator",
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		logger.Fatal("Failed to create admin account", err)
	}

	logger.Info("Admin account created", map[string]interface{}{
		"email": admin.Email,
	})
}

func importCatalog(database *gorm.DB, file, sheet string) (imported, skipped int) {
	workbook, err := excelize.OpenFile(file)
	if err != nil {
		logger.Fatal("Failed to open catalog workbook", err, map[string]interface{}{
			"file": file,
		})
	}
	defer workbook.Close()

	if sheet == "" {
		sheet = workbook.GetSheetName(0)
	}

	rows, err := workbook.GetRows(sheet)
	if err != nil {
		logger.Fatal("Failed to read catalog sheet", err, map[string]interface{}{
			"sheet": sheet,
		})
	}
	if len(rows) < 2 {
		logger.Warn("Catalog sheet has no data rows", map[string]interface{}{
			"sheet": sheet,
		})
		return 0, 0
	}

	productRepo := repository.NewProductRepository(database)

	for i, row := range rows[1:] {
		product, ok := parseRow(row)
		if !ok {
			logger.Warn("Skipping malformed catalog row", map[string]interface{}{
				"row": i + 2,
			})
			skipped++
			continue
		}

		if err := productRepo.Create(product); err != nil {
			logger.Warn("Skipping catalog row that failed to insert", map[string]interface{}{
				"row":   i + 2,
				"title": product.Title,
			})
			skipped++
			continue
		}
		imported++
	}
	return imported, skipped
}

func parseRow(row []string) (*model.Product, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	title := cell(0)
	if title == "" {
		return nil, false
	}

	price, err := strconv.ParseFloat(cell(2), 64)
	if err != nil || price <= 0 {
		return nil, false
	}

	stock := 0
	if s := cell(3); s != "" {
		stock, err = strconv.Atoi(s)
		if err != nil || stock < 0 {
			return nil, false
		}
	}

	var images model.StringList
	if raw := cell(5); raw != "" {
		for _, img := range strings.Split(raw, ";") {
			if img = strings.TrimSpace(img); img != "" {
				images = append(images, img)
			}
		}
	}

	return &model.Product{
		Title:       title,
		Description: cell(1),
		Price:       price,
		Stock:       stock,
		Category:    cell(4),
		Images:      images,
		Variants:    cell(6),
	}, true
}

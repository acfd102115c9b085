// 开发环境数据初始化：创建默认账号、分类与示例商品。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	catalogdomain "github.com/wyfcoding/medsupply/internal/catalog/domain"
	catalogmysql "github.com/wyfcoding/medsupply/internal/catalog/infrastructure/persistence/mysql"
	orderdomain "github.com/wyfcoding/medsupply/internal/order/domain"
	settingsdomain "github.com/wyfcoding/medsupply/internal/settings/domain"
	settingsmysql "github.com/wyfcoding/medsupply/internal/settings/infrastructure/persistence/mysql"
	userapp "github.com/wyfcoding/medsupply/internal/user/application"
	userdomain "github.com/wyfcoding/medsupply/internal/user/domain"
	usermysql "github.com/wyfcoding/medsupply/internal/user/infrastructure/persistence/mysql"
	"github.com/wyfcoding/medsupply/pkg/config"
	"github.com/wyfcoding/medsupply/pkg/db"
	"github.com/wyfcoding/medsupply/pkg/logger"
)

func main() {
	configPath := flag.String("config", "configs/portal/config.toml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{Level: "info", Format: "text", Output: "stdout"}); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.Init(db.Config{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to init database", "error", err)
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&userdomain.User{},
		&catalogdomain.Category{},
		&catalogdomain.Product{},
		&catalogdomain.UserProductAssignment{},
		&orderdomain.Order{},
		&orderdomain.OrderItem{},
		&settingsdomain.Setting{},
	); err != nil {
		logger.Fatal(ctx, "Failed to migrate database", "error", err)
	}

	userRepo := usermysql.NewUserRepository(database.DB)
	categoryRepo := catalogmysql.NewCategoryRepository(database.DB)
	productRepo := catalogmysql.NewProductRepository(database.DB)
	settingRepo := settingsmysql.NewSettingRepository(database.DB)

	if err := seed(ctx, userRepo, categoryRepo, productRepo, settingRepo); err != nil {
		logger.Fatal(ctx, "Seed failed", "error", err)
	}
	logger.Info(ctx, "Seed completed")
}

// seed 幂等初始化：账号按邮箱跳过，分类按名称复用，
// 商品按参考号跳过，设置走 upsert。重复执行不产生重复行。
func seed(
	ctx context.Context,
	userRepo userdomain.UserRepository,
	categoryRepo catalogdomain.CategoryRepository,
	productRepo catalogdomain.ProductRepository,
	settingRepo settingsdomain.SettingRepository,
) error {
	userService := userapp.NewUserApplicationService(userRepo)

	// 默认账号，邮箱已存在时跳过
	accounts := []struct {
		email    string
		name     string
		password string
		role     userdomain.Role
	}{
		{"admin@medsupply.local", "Administrateur", "admin1234", userdomain.RoleAdmin},
		{"infirmier@medsupply.local", "Infirmier", "user1234", userdomain.RoleUser},
	}
	for _, a := range accounts {
		if _, err := userService.CreateUser(ctx, a.email, a.name, a.password, a.role); err != nil {
			if errors.Is(err, userdomain.ErrEmailTaken) {
				logger.Info(ctx, "User already exists, skipping", "email", a.email)
				continue
			}
			return fmt.Errorf("failed to create user %s: %w", a.email, err)
		}
		logger.Info(ctx, "User created", "email", a.email, "role", a.role)
	}

	products := []struct {
		category string
		name     string
		ref      string
		price    string
		stock    int
	}{
		{"Gants", "Gants nitrile taille M", "GNT-M-100", "8.50", 200},
		{"Gants", "Gants nitrile taille L", "GNT-L-100", "8.50", 150},
		{"Seringues", "Seringue 5 ml", "SER-5ML", "0.35", 500},
		{"Seringues", "Seringue 10 ml", "SER-10ML", "0.45", 400},
		{"Pansements", "Compresses stériles 10x10", "CMP-1010", "3.20", 300},
		{"Pansements", "Sparadrap microporeux", "SPD-MIC", "1.80", 250},
		{"Désinfection", "Solution hydroalcoolique 500 ml", "SHA-500", "4.90", 120},
	}

	categories := make(map[string]*catalogdomain.Category)
	for _, p := range products {
		if _, ok := categories[p.category]; ok {
			continue
		}
		category := &catalogdomain.Category{Name: p.category}
		if err := categoryRepo.Save(ctx, category); err != nil {
			if errors.Is(err, catalogdomain.ErrCategoryNameTaken) {
				existing, lookupErr := findCategory(ctx, categoryRepo, p.category)
				if lookupErr != nil {
					return lookupErr
				}
				categories[p.category] = existing
				continue
			}
			return fmt.Errorf("failed to create category %s: %w", p.category, err)
		}
		categories[p.category] = category
		logger.Info(ctx, "Category created", "name", p.category)
	}

	for _, p := range products {
		exists, err := productExists(ctx, productRepo, p.ref)
		if err != nil {
			return err
		}
		if exists {
			logger.Info(ctx, "Product already exists, skipping", "reference", p.ref)
			continue
		}

		price, err := decimal.NewFromString(p.price)
		if err != nil {
			return fmt.Errorf("invalid price for %s: %w", p.name, err)
		}
		ref := p.ref
		product := &catalogdomain.Product{
			Name:       p.name,
			Reference:  &ref,
			Price:      price,
			Stock:      p.stock,
			CategoryID: categories[p.category].ID,
		}
		if err := productRepo.Save(ctx, product); err != nil {
			return fmt.Errorf("failed to create product %s: %w", p.name, err)
		}
		logger.Info(ctx, "Product created", "name", p.name, "stock", p.stock)
	}

	if _, err := settingRepo.Upsert(ctx, settingsdomain.KeyEmailNotifications, "true"); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	return nil
}

// productExists 按参考号精确匹配判断商品是否已存在
func productExists(ctx context.Context, repo catalogdomain.ProductRepository, ref string) (bool, error) {
	candidates, err := repo.List(ctx, catalogdomain.ProductFilter{Search: ref})
	if err != nil {
		return false, fmt.Errorf("failed to look up product %s: %w", ref, err)
	}
	for _, c := range candidates {
		if c.Reference != nil && *c.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func findCategory(ctx context.Context, repo catalogdomain.CategoryRepository, name string) (*catalogdomain.Category, error) {
	all, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("category %s not found after conflict", name)
}

package seed

import (
	"fmt"
	"log"

	"laurel/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	ShouldClean bool
	SkipBcrypt  bool
	DryRun      bool
}

// levelLadders maps each career path to its ordered level names. Demo
// templates are generated between adjacent levels.
var levelLadders = map[models.CareerPath][]string{
	models.CareerPathTechnical:  {"engineer-1", "engineer-2", "engineer-3", "staff-engineer"},
	models.CareerPathFinancial:  {"analyst-1", "analyst-2", "senior-analyst"},
	models.CareerPathManagement: {"team-lead", "manager", "director"},
}

// demoRules are the badge requirements used for every generated template.
// Two specific-category badges plus one badge of any category keeps demo
// promotions non-trivial without being tedious to satisfy.
func demoRules(path models.CareerPath) models.TemplateRules {
	category := models.RuleCategoryTechnical
	switch path {
	case models.CareerPathFinancial:
		category = models.RuleCategoryOrganizational
	case models.CareerPathManagement:
		category = models.RuleCategorySoftskilled
	}
	return models.TemplateRules{
		{Category: category, Level: models.BadgeLevelGold, Count: 2},
		{Category: models.RuleCategoryAny, Level: models.BadgeLevelSilver, Count: 1},
	}
}

// Seed populates the database with demo data: an admin, regular users on
// every career path, an active badge catalog, promotion templates between
// adjacent levels, and a spread of accepted badge applications ready to be
// pledged.
func Seed(db *gorm.DB, opts Options) error {
	log.Printf("Starting database seeding with %d users...", opts.NumUsers)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			log.Println("Warning: could not clear all existing data, continuing anyway...")
		}
	}

	factory := NewFactory(db, opts)

	admin, err := factory.CreateUser(func(u *models.User) {
		u.Username = "root-admin"
		u.Email = "admin@example.com"
		u.IsAdmin = true
		u.Path = ""
		u.CurrentLevel = ""
	})
	if err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}
	log.Printf("Created admin %q", admin.Username)

	users, err := createUsers(factory, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	catalog, err := createCatalog(factory)
	if err != nil {
		return fmt.Errorf("failed to create catalog: %w", err)
	}
	log.Printf("Created %d catalog badges", len(catalog))

	templates, err := createTemplates(factory)
	if err != nil {
		return fmt.Errorf("failed to create templates: %w", err)
	}
	log.Printf("Created %d templates", len(templates))

	applications, err := createApplications(factory, users, catalog)
	if err != nil {
		return fmt.Errorf("failed to create badge applications: %w", err)
	}
	log.Printf("Created %d accepted badge applications", applications)

	log.Println("Database seeding completed successfully")
	return nil
}

func clearData(db *gorm.DB) error {
	log.Println("Clearing existing data...")
	sql := `TRUNCATE TABLE promotion_badges, promotions, badge_applications, promotion_templates, catalog_badges, users RESTART IDENTITY CASCADE;`
	return db.Exec(sql).Error
}

func createUsers(factory *Factory, count int) ([]*models.User, error) {
	paths := []models.CareerPath{
		models.CareerPathTechnical,
		models.CareerPathFinancial,
		models.CareerPathManagement,
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		path := paths[i%len(paths)]
		ladder := levelLadders[path]
		// never seed users at the top of their ladder; they need a template
		// to promote against
		level := ladder[gofakeit.Number(0, len(ladder)-2)]

		user, err := factory.CreateUser(func(u *models.User) {
			u.Path = path
			u.CurrentLevel = level
		})
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// createCatalog creates one active badge per category/level pair.
func createCatalog(factory *Factory) ([]*models.CatalogBadge, error) {
	categories := []models.BadgeCategory{
		models.BadgeCategoryTechnical,
		models.BadgeCategoryOrganizational,
		models.BadgeCategorySoftskilled,
	}
	levels := []models.BadgeLevel{
		models.BadgeLevelGold,
		models.BadgeLevelSilver,
		models.BadgeLevelBronze,
	}

	badges := make([]*models.CatalogBadge, 0, len(categories)*len(levels))
	for _, category := range categories {
		for _, level := range levels {
			badge, err := factory.CreateCatalogBadge(category, level)
			if err != nil {
				return nil, err
			}
			badges = append(badges, badge)
		}
	}
	return badges, nil
}

func createTemplates(factory *Factory) ([]*models.PromotionTemplate, error) {
	var templates []*models.PromotionTemplate
	for path, ladder := range levelLadders {
		for i := 0; i < len(ladder)-1; i++ {
			template, err := factory.CreateTemplate(path, ladder[i], ladder[i+1], demoRules(path))
			if err != nil {
				return nil, err
			}
			templates = append(templates, template)
		}
	}
	return templates, nil
}

// createApplications gives every user a handful of accepted badges spread
// across the catalog so demo promotions have something to pledge.
func createApplications(factory *Factory, users []*models.User, catalog []*models.CatalogBadge) (int, error) {
	count := 0
	for _, user := range users {
		numBadges := gofakeit.Number(2, 5)
		for i := 0; i < numBadges; i++ {
			badge := catalog[gofakeit.Number(0, len(catalog)-1)]
			if _, err := factory.CreateBadgeApplication(user, badge); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

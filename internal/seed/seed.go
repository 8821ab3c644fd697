package seed

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	locationdomain "github.com/resaleops/stockroom/internal/location/domain"
	"gorm.io/gorm"
)

// EnsureDefaultLocation seeds the configured intake location so item creation
// works before any location has been registered by hand. An empty code means
// no default is configured and nothing is seeded.
func EnsureDefaultLocation(db *gorm.DB, code string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing locationdomain.Location
		err := tx.WithContext(ctx).Where("code = ?", code).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		location := locationdomain.Location{
			ID:          node.Generate(),
			Code:        code,
			Type:        locationdomain.TypeStoreFloor,
			Description: "Default intake location",
			Active:      true,
		}
		return tx.WithContext(ctx).Create(&location).Error
	})
}

package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// Seeds the platform-wide default fee items that apply to every tier
// unless an organization overrides them at a lower level.
func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("fee_items")
		if err != nil {
			return err
		}

		defaults := []struct {
			label  string
			kind   string
			amount int64
			order  int
		}{
			{"service", "percentage", 250, 0}, // 2.5%
			{"processing", "flat", 99, 1},     // $0.99 per ticket
		}

		for _, def := range defaults {
			record := core.NewRecord(collection)
			record.Set("label", def.label)
			record.Set("kind", def.kind)
			record.Set("amount", def.amount)
			record.Set("level", "platform")
			record.Set("sort_order", def.order)
			record.Set("is_active", true)
			if err := app.Save(record); err != nil {
				return err
			}
		}

		return nil
	}, func(app core.App) error {
		records, err := app.FindRecordsByFilter("fee_items", "level = 'platform'", "", 0, 0)
		if err != nil {
			return err
		}
		for _, record := range records {
			if err := app.Delete(record); err != nil {
				return err
			}
		}
		return nil
	})
}

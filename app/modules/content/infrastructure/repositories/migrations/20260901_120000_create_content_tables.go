package migrations

import (
	"context"
	"fmt"

	contentdb "github.com/Black-And-White-Club/club-cms/app/modules/content/infrastructure/repositories"
	"github.com/uptrace/bun"
)

var contentModels = []any{
	(*contentdb.Sponsor)(nil),
	(*contentdb.ClubValue)(nil),
	(*contentdb.Professor)(nil),
	(*contentdb.TeamMember)(nil),
	(*contentdb.MenuItem)(nil),
	(*contentdb.MenuItemRow)(nil),
	(*contentdb.Render)(nil),
	(*contentdb.AboutPage)(nil),
	(*contentdb.TeamPage)(nil),
	(*contentdb.PricingPage)(nil),
	(*contentdb.NavigationBar)(nil),
	(*contentdb.HomePage)(nil),
	(*contentdb.NavigationItem)(nil),
	(*contentdb.PageRender)(nil),
	(*contentdb.AuditEntry)(nil),
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating content tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for _, model := range contentModels {
					if _, err := tx.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
						return fmt.Errorf("failed to create table for %T: %w", model, err)
					}
				}

				if _, err := tx.NewCreateTable().
					Model((*contentdb.NavigationEdge)(nil)).
					IfNotExists().
					ForeignKey(`(parent_id) REFERENCES navigation_items (id) ON DELETE CASCADE`).
					ForeignKey(`(child_id) REFERENCES navigation_items (id) ON DELETE CASCADE`).
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to create navigation_item_children: %w", err)
				}

				if _, err := tx.ExecContext(ctx, `
					CREATE UNIQUE INDEX IF NOT EXISTS idx_page_renders_slot ON page_renders (page_type, page_id, slot);
					CREATE INDEX IF NOT EXISTS idx_page_renders_render_id ON page_renders (render_id);
					CREATE INDEX IF NOT EXISTS idx_navigation_items_render_id ON navigation_items (nav_bar_render_id);
				`); err != nil {
					return fmt.Errorf("failed to create content indexes: %w", err)
				}

				// Join tables carry a copy of the member's display order so uniqueness
				// inside a container can be checked by Postgres at commit.
				for _, assoc := range contentdb.AllAssociations {
					if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
						CREATE TABLE IF NOT EXISTS %[1]s (
							%[2]s UUID NOT NULL REFERENCES %[4]s (id) ON DELETE CASCADE,
							%[3]s UUID NOT NULL REFERENCES %[5]s (id) ON DELETE CASCADE,
							display_order INTEGER NOT NULL,
							PRIMARY KEY (%[2]s, %[3]s),
							CONSTRAINT %[1]s_order_key UNIQUE (%[2]s, display_order) DEFERRABLE INITIALLY DEFERRED
						);
						CREATE INDEX IF NOT EXISTS idx_%[1]s_%[3]s ON %[1]s (%[3]s);
					`, assoc.Name, assoc.ContainerColumn, assoc.EntityColumn,
						assoc.ContainerType.Table(), assoc.EntityType.Table())); err != nil {
						return fmt.Errorf("failed to create join table %s: %w", assoc, err)
					}
				}

				fmt.Println("Content tables created successfully!")
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping content tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				for _, assoc := range contentdb.AllAssociations {
					if _, err := tx.NewDropTable().Table(assoc.Name).IfExists().Cascade().Exec(ctx); err != nil {
						return fmt.Errorf("failed to drop join table %s: %w", assoc, err)
					}
				}
				if _, err := tx.NewDropTable().Model((*contentdb.NavigationEdge)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
				for i := len(contentModels) - 1; i >= 0; i-- {
					if _, err := tx.NewDropTable().Model(contentModels[i]).IfExists().Cascade().Exec(ctx); err != nil {
						return fmt.Errorf("failed to drop table for %T: %w", contentModels[i], err)
					}
				}
				return nil
			})
		},
	)
}
